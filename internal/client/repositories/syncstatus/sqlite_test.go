package syncstatus

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dreamtracer/internal/client/migrations"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(context.Background(), db))
	return db
}

func TestSetGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	ts := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Set(ctx, "d1", models.SyncState{Status: models.SyncFailed, Error: "timeout", UpdatedAt: ts}))

	got, err := r.Get(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.SyncFailed, got.Status)
	assert.Equal(t, "timeout", got.Error)
	assert.True(t, ts.Equal(got.UpdatedAt))

	require.NoError(t, r.Set(ctx, "d1", models.SyncState{Status: models.SyncSynced, UpdatedAt: ts}))
	got, err = r.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, got.Status)
	assert.Empty(t, got.Error)
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	got, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListDeleteClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Set(ctx, "a", models.SyncState{Status: models.SyncPending, UpdatedAt: now}))
	require.NoError(t, r.Set(ctx, "b", models.SyncState{Status: models.SyncFailed, UpdatedAt: now}))
	require.NoError(t, r.Set(ctx, "c", models.SyncState{Status: models.SyncSynced, UpdatedAt: now}))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, models.SyncFailed, all["b"].Status)

	require.NoError(t, r.Delete(ctx, "a"))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotContains(t, all, "a")

	require.NoError(t, r.Clear(ctx))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPruneOrphans(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	now := time.Now()

	_, err := db.Exec(`INSERT INTO dreams_local (id, dream_date, payload, created_at, updated_at) VALUES ('kept', '2026-10-01', '{}', ?, ?)`,
		now.UTC().Format(time.RFC3339Nano), now.UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)

	require.NoError(t, r.Set(ctx, "kept", models.SyncState{Status: models.SyncPending, UpdatedAt: now}))
	require.NoError(t, r.Set(ctx, "orphan", models.SyncState{Status: models.SyncPending, UpdatedAt: now}))

	n, err := r.PruneOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, "kept")
}

func TestReset(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Set(ctx, "a", models.SyncState{Status: models.SyncSyncing, UpdatedAt: now}))
	require.NoError(t, r.Set(ctx, "b", models.SyncState{Status: models.SyncSyncing, Error: "old", UpdatedAt: now}))
	require.NoError(t, r.Set(ctx, "c", models.SyncState{Status: models.SyncSynced, UpdatedAt: now}))

	n, err := r.Reset(ctx, models.SyncSyncing, models.SyncPending)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, all["a"].Status)
	assert.Equal(t, models.SyncPending, all["b"].Status)
	assert.Empty(t, all["b"].Error)
	assert.Equal(t, models.SyncSynced, all["c"].Status)
}

func TestPruneOrphans_DBErrorWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("locked")
	mock.ExpectExec("DELETE FROM sync_status").WillReturnError(boom)

	_, err = NewSQLiteRepository(db).PruneOrphans(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to prune sync statuses")
}

func TestSet_DBErrorWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("locked")
	mock.ExpectExec("INSERT INTO sync_status").WillReturnError(boom)

	err = NewSQLiteRepository(db).Set(context.Background(), "d1", models.SyncState{Status: models.SyncPending})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to set sync status[d1]")
}
