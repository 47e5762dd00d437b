package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorageService {
	t.Helper()
	return NewLocalStorageService(openDB(t), logging.Nop())
}

func localDream(id, date string) *models.Dream {
	created := time.Date(2026, 10, 17, 7, 30, 0, 0, time.UTC)
	return &models.Dream{
		ID:            id,
		UserID:        "u1",
		DreamDate:     date,
		Title:         "dream " + id,
		BodyText:      "private text",
		AudioFilePath: "/tmp/" + id + ".m4a",
		LucidityLevel: intPtr(2),
		EmotionTags:   []string{"calm"},
		Characters:    []string{},
		Symbols:       []string{"door"},
		CreatedAt:     created,
		UpdatedAt:     created,
		IsSynced:      true,
		SyncError:     "stale",
	}
}

func TestSaveThenGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	in := localDream("d1", "2026-10-17")
	require.NoError(t, s.SaveDreamLocally(ctx, in))

	got := s.GetLocalDream(ctx, "d1")
	require.NotNil(t, got)
	assert.False(t, got.IsSynced)
	assert.Empty(t, got.SyncError)

	want := *in
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("dream mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveDreamLocally_RequiresID(t *testing.T) {
	s := newLocal(t)
	err := s.SaveDreamLocally(context.Background(), &models.Dream{})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDeleteLocalDream(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	require.NoError(t, s.SaveDreamLocally(ctx, localDream("d1", "2026-10-17")))
	require.NoError(t, s.DeleteLocalDream(ctx, "d1"))

	assert.Nil(t, s.GetLocalDream(ctx, "d1"))
	statuses, err := s.GetSyncStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)

	// deleting again is fine
	require.NoError(t, s.DeleteLocalDream(ctx, "d1"))
}

func TestGetLocalDreams_OrderAndFailSoft(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s := NewLocalStorageService(db, logging.Nop())

	require.NoError(t, s.SaveDreamLocally(ctx, localDream("a", "2026-10-01")))
	require.NoError(t, s.SaveDreamLocally(ctx, localDream("b", "2026-10-05")))

	list := s.GetLocalDreams(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	_, err := db.Exec(`UPDATE dreams_local SET payload = 'not json' WHERE id = 'a'`)
	require.NoError(t, err)

	assert.Equal(t, []models.Dream{}, s.GetLocalDreams(ctx))
	assert.Nil(t, s.GetLocalDream(ctx, "a"))
}

func TestPendingSet_FollowsLastStatus(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.SaveDreamLocally(ctx, localDream(id, "2026-10-02")))
	}

	require.NoError(t, s.UpdateSyncStatus(ctx, "a", models.SyncSynced, ""))
	require.NoError(t, s.UpdateSyncStatus(ctx, "b", models.SyncFailed, "boom"))
	require.NoError(t, s.UpdateSyncStatus(ctx, "c", models.SyncSyncing, ""))
	require.NoError(t, s.UpdateSyncStatus(ctx, "c", models.SyncSynced, ""))
	// re-saving a synced dream makes it pending again
	require.NoError(t, s.SaveDreamLocally(ctx, localDream("c", "2026-10-02")))

	ids := map[string]bool{}
	for _, d := range s.GetPendingSyncDreams(ctx) {
		ids[d.ID] = true
	}
	assert.Equal(t, map[string]bool{"b": true, "c": true, "d": true}, ids)

	n, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	b := s.GetLocalDream(ctx, "b")
	require.NotNil(t, b)
	assert.Equal(t, "boom", b.SyncError)
	assert.True(t, s.GetLocalDream(ctx, "a").IsSynced)
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{0, 3} {
		src := newLocal(t)
		for i := 0; i < n; i++ {
			require.NoError(t, src.SaveDreamLocally(ctx, localDream(string(rune('a'+i)), fmt.Sprintf("2026-10-1%d", i))))
		}
		require.NoError(t, src.UpdateSyncStatus(ctx, "a", models.SyncSynced, ""))

		data, err := src.ExportLocalData(ctx)
		require.NoError(t, err)

		var doc models.LocalExport
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, common.ExportFormatVersion, doc.Version)
		assert.Len(t, doc.Dreams, n)

		dst := newLocal(t)
		require.NoError(t, dst.ImportLocalData(ctx, data))

		if diff := cmp.Diff(src.GetLocalDreams(ctx), dst.GetLocalDreams(ctx)); diff != "" {
			t.Errorf("n=%d: dreams differ after import (-src +dst):\n%s", n, diff)
		}
	}
}

func TestImportLocalData_SectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)
	require.NoError(t, s.SaveDreamLocally(ctx, localDream("x", "2026-10-16")))

	doc := `{"dreams": "garbage", "syncStatuses": {"x": {"status": "failed", "error": "e", "updated_at": "2026-10-17T00:00:00Z"}}}`
	require.NoError(t, s.ImportLocalData(ctx, []byte(doc)))

	assert.NotNil(t, s.GetLocalDream(ctx, "x"))
	statuses, err := s.GetSyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, statuses["x"].Status)

	dreams := `[{"id": "x", "dream_date": "2026-10-16"}, {"id": "d1", "dream_date": "2026-10-17", "body_text": "x"}]`
	doc = `{"dreams": ` + dreams + `, "syncStatuses": 42}`
	require.NoError(t, s.ImportLocalData(ctx, []byte(doc)))

	assert.NotNil(t, s.GetLocalDream(ctx, "d1"))
	statuses, err = s.GetSyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, statuses["x"].Status)

	assert.ErrorIs(t, s.ImportLocalData(ctx, []byte("{nope")), common.ErrValidation)
}

func TestImportLocalData_DropsStatusesOfRemovedDreams(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)
	require.NoError(t, s.SaveDreamLocally(ctx, localDream("old", "2026-10-16")))

	require.NoError(t, s.ImportLocalData(ctx, []byte(`{"dreams": []}`)))

	n, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, s.GetPendingSyncDreams(ctx), n)

	statuses, err := s.GetSyncStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)

	// statuses naming unknown dreams are not imported either
	doc := `{"dreams": [{"id": "d1", "dream_date": "2026-10-17"}], "syncStatuses": {
		"d1": {"status": "pending", "updated_at": "2026-10-17T00:00:00Z"},
		"ghost": {"status": "failed", "error": "e", "updated_at": "2026-10-17T00:00:00Z"}}}`
	require.NoError(t, s.ImportLocalData(ctx, []byte(doc)))

	n, err = s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, s.GetPendingSyncDreams(ctx), n)
}

func TestFinishSync_OnlyAppliesToPushedVersion(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	d := localDream("d1", "2026-10-17")
	require.NoError(t, s.SaveDreamLocally(ctx, d))

	// not in flight
	applied, err := s.FinishSync(ctx, *d, models.SyncSynced, "")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, s.UpdateSyncStatus(ctx, "d1", models.SyncSyncing, ""))
	newer := *d
	newer.UpdatedAt = d.UpdatedAt.Add(time.Minute)
	applied, err = s.FinishSync(ctx, newer, models.SyncSynced, "")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = s.FinishSync(ctx, *d, models.SyncSynced, "")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, s.GetLocalDream(ctx, "d1").IsSynced)
}

func TestRecoverInterruptedSyncs(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	for _, id := range []string{"a", "b"} {
		require.NoError(t, s.SaveDreamLocally(ctx, localDream(id, "2026-10-17")))
	}
	require.NoError(t, s.UpdateSyncStatus(ctx, "a", models.SyncSyncing, ""))
	require.NoError(t, s.UpdateSyncStatus(ctx, "b", models.SyncSynced, ""))
	assert.Empty(t, s.GetPendingSyncDreams(ctx))

	n, err := s.RecoverInterruptedSyncs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending := s.GetPendingSyncDreams(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].ID)
}

func TestGetStorageUsage(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	empty, err := s.GetStorageUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, len("[]")+len("{}"), empty.Total)

	require.NoError(t, s.SaveDreamLocally(ctx, localDream("d1", "2026-10-17")))
	u, err := s.GetStorageUsage(ctx)
	require.NoError(t, err)
	assert.Greater(t, u.Dreams, 2)
	assert.Greater(t, u.SyncStatuses, 2)
	assert.Equal(t, u.Dreams+u.SyncStatuses, u.Total)
}

func TestClearLocalData(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	require.NoError(t, s.SaveDreamLocally(ctx, localDream("d1", "2026-10-17")))
	require.NoError(t, s.ClearLocalData(ctx))

	assert.Empty(t, s.GetLocalDreams(ctx))
	n, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLocal_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.SaveDreamLocally(ctx, localDream("d1", "2026-10-17")))
	require.NoError(t, s.UpdateSyncStatus(ctx, "d1", models.SyncFailed, "offline"))
	require.NoError(t, s.UpdateSyncStatus(ctx, "d1", models.SyncSynced, ""))

	want := []models.SyncEvent{
		{DreamID: "d1", Status: models.SyncPending, Pending: 1},
		{DreamID: "d1", Status: models.SyncFailed, Error: "offline", Pending: 1},
		{DreamID: "d1", Status: models.SyncSynced, Pending: 0},
	}
	for _, w := range want {
		select {
		case got := <-events:
			assert.Equal(t, w, got)
		case <-time.After(time.Second):
			t.Fatalf("missing event %+v", w)
		}
	}
}
