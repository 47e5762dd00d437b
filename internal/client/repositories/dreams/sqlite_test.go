package dreams

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dreamtracer/internal/client/migrations"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/google/go-cmp/cmp"
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

func sampleDream(id, date string) *models.Dream {
	ts := time.Date(2026, 10, 1, 7, 30, 0, 0, time.UTC)
	lucidity := 3
	return &models.Dream{
		ID:            id,
		UserID:        "u1",
		DreamDate:     date,
		Title:         "title " + id,
		BodyText:      "private body " + id,
		LucidityLevel: &lucidity,
		EmotionTags:   []string{"happy", "calm"},
		Characters:    []string{"mother"},
		Symbols:       []string{"water"},
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

func setStatus(t *testing.T, db *sql.DB, id string, s models.SyncStatus, msg string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO sync_status (dream_id, status, error, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(dream_id) DO UPDATE SET status = excluded.status, error = excluded.error`,
		id, string(s), msg, time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)
}

func TestUpsert_ThenGet_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	in := sampleDream("d1", "2026-10-01")
	require.NoError(t, r.Upsert(ctx, in))

	got, err := r.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(in, got))
	assert.False(t, got.IsSynced)
}

func TestUpsert_ReplacesById(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := sampleDream("d1", "2026-10-01")
	require.NoError(t, r.Upsert(ctx, d))
	d.Title = "changed"
	require.NoError(t, r.Upsert(ctx, d))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "changed", all[0].Title)
}

func TestUpsert_DoesNotPersistDerivedFields(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	d := sampleDream("d1", "2026-10-01")
	d.IsSynced = true
	d.SyncError = "stale"
	require.NoError(t, r.Upsert(ctx, d))

	got, err := r.Get(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, got.IsSynced)
	assert.Empty(t, got.SyncError)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_DerivesSyncFieldsFromStatus(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDream("a", "2026-10-01")))
	require.NoError(t, r.Upsert(ctx, sampleDream("b", "2026-10-02")))
	setStatus(t, db, "a", models.SyncSynced, "")
	setStatus(t, db, "b", models.SyncFailed, "boom")

	a, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, a.IsSynced)

	b, err := r.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, b.IsSynced)
	assert.Equal(t, "boom", b.SyncError)
}

func TestList_OrderedByDreamDateDesc(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDream("old", "2026-09-01")))
	require.NoError(t, r.Upsert(ctx, sampleDream("new", "2026-10-05")))
	require.NoError(t, r.Upsert(ctx, sampleDream("mid", "2026-09-20")))

	all, err := r.List(ctx)
	require.NoError(t, err)
	ids := []string{all[0].ID, all[1].ID, all[2].ID}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	all, err := r.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestListByStatus(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, id := range []string{"p", "f", "s", "c"} {
		require.NoError(t, r.Upsert(ctx, sampleDream(id, "2026-10-01")))
	}
	setStatus(t, db, "p", models.SyncPending, "")
	setStatus(t, db, "f", models.SyncFailed, "x")
	setStatus(t, db, "s", models.SyncSynced, "")
	setStatus(t, db, "c", models.SyncConflict, "")

	got, err := r.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, d := range got {
		ids[d.ID] = true
	}
	assert.Equal(t, map[string]bool{"p": true, "f": true}, ids)

	none, err := r.ListByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCountByStatus_IgnoresOrphanStatusRows(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDream("p", "2026-10-01")))
	setStatus(t, db, "p", models.SyncPending, "")
	setStatus(t, db, "gone", models.SyncPending, "")
	setStatus(t, db, "gone-too", models.SyncFailed, "x")

	n, err := r.CountByStatus(ctx, models.SyncPending, models.SyncFailed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	listed, err := r.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	require.NoError(t, err)
	assert.Len(t, listed, n)

	n, err = r.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDream("d1", "2026-10-01")))
	require.NoError(t, r.Delete(ctx, "d1"))
	require.NoError(t, r.Delete(ctx, "d1"))

	_, err := r.Get(ctx, "d1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleDream("a", "2026-10-01")))
	require.NoError(t, r.Upsert(ctx, sampleDream("b", "2026-10-01")))
	require.NoError(t, r.Clear(ctx))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestList_CorruptPayload(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO dreams_local (id, dream_date, payload, created_at, updated_at) VALUES ('bad', '2026-10-01', 'not json', '', '')`)
	require.NoError(t, err)

	_, err = r.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload")
}

func newRepoWithMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestSQLErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk I/O error")
	ctx := context.Background()

	t.Run("upsert", func(t *testing.T) {
		r, mock := newRepoWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO dreams_local`)).WillReturnError(boom)

		err := r.Upsert(ctx, sampleDream("d1", "2026-10-01"))
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to upsert dream d1")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		r, mock := newRepoWithMock(t)
		mock.ExpectQuery(`SELECT d.payload`).WillReturnError(boom)

		_, err := r.List(ctx)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to select dreams")
	})

	t.Run("get", func(t *testing.T) {
		r, mock := newRepoWithMock(t)
		mock.ExpectQuery(`SELECT d.payload`).WithArgs("d1").WillReturnError(boom)

		_, err := r.Get(ctx, "d1")
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r, mock := newRepoWithMock(t)
		mock.ExpectExec(`DELETE FROM dreams_local`).WithArgs("d1").WillReturnError(boom)

		err := r.Delete(ctx, "d1")
		require.ErrorIs(t, err, boom)
	})
}
