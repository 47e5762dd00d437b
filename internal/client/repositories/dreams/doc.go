// Package dreams persists locally recorded dreams, one row per record.
//
// Each row keeps the full record as a JSON payload next to a few indexed
// columns used for ordering. Writes are single-row upserts and deletes, so
// concurrent edits to different dreams never overwrite each other.
//
// The sync flag and last sync error are not part of the payload; they are
// derived from the sync_status table when rows are read.
//
//	repo := dreams.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, &d)
//	one, err := repo.Get(ctx, id) // common.ErrNotFound when absent
//	pending, _ := repo.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
package dreams
