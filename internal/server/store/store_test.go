package store

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	s := New(models.PlanFree)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC) }
	u := s.UserForFirebaseToken("firebase-token")
	return s, u.ID
}

func TestUserForFirebaseToken_Stable(t *testing.T) {
	s, id := newStore(t)

	again := s.UserForFirebaseToken("firebase-token")
	other := s.UserForFirebaseToken("other-token")

	assert.Equal(t, id, again.ID)
	assert.NotEqual(t, id, other.ID)
	assert.Equal(t, models.PlanFree, s.Plan(id).Plan)
}

func TestCompleteOnboarding(t *testing.T) {
	s, id := newStore(t)

	u, err := s.CompleteOnboarding(id, map[string]any{"name": "Sam", "goal": "lucid"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", u.Name)
	assert.True(t, u.HasCompletedOnboarding)

	_, err = s.CompleteOnboarding("nobody", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDreams_CRUDAndScoping(t *testing.T) {
	s, id := newStore(t)
	other := s.UserForFirebaseToken("other").ID

	s.UpsertDream(id, models.ServerDream{ID: "d1", DreamDate: "2026-10-01", EmotionTags: []string{"happy"}, DreamType: "lucid"})
	s.UpsertDream(id, models.ServerDream{ID: "d2", DreamDate: "2026-10-03", EmotionTags: []string{"sad"}})
	s.UpsertDream(other, models.ServerDream{ID: "d3", DreamDate: "2026-10-02"})

	list := s.ListDreams(id, models.DreamFilter{})
	require.Len(t, list.Dreams, 2)
	assert.Equal(t, "d2", list.Dreams[0].ID)
	assert.Equal(t, models.AnalysisPending, list.Dreams[0].AnalysisStatus)

	assert.Len(t, s.ListDreams(id, models.DreamFilter{EmotionFilter: []string{"HAPPY"}}).Dreams, 1)
	assert.Len(t, s.ListDreams(id, models.DreamFilter{DreamType: "lucid"}).Dreams, 1)
	assert.Len(t, s.ListDreams(id, models.DreamFilter{StartDate: "2026-10-02"}).Dreams, 1)

	page := s.ListDreams(id, models.DreamFilter{Skip: 1, Limit: 1})
	assert.Equal(t, "d1", page.Dreams[0].ID)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)

	_, err := s.GetDream(id, "d3")
	assert.ErrorIs(t, err, common.ErrNotFound)

	title := "renamed"
	d, err := s.UpdateDream(id, "d1", models.DreamPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", d.Title)

	require.NoError(t, s.DeleteDream(id, "d1"))
	assert.ErrorIs(t, s.DeleteDream(id, "d1"), common.ErrNotFound)
}

func TestAnalyze(t *testing.T) {
	s, id := newStore(t)
	s.UpsertDream(id, models.ServerDream{ID: "d1", DreamDate: "2026-10-01", EmotionTags: []string{"fear"}, Symbols: []string{"water"}})

	task, err := s.Analyze(id, "d1")
	require.NoError(t, err)
	assert.True(t, task.Done())
	require.NotNil(t, task.Result)
	assert.Equal(t, []string{"fear", "water"}, task.Result.Keywords)

	got, err := s.Task(task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	r, err := s.Analysis(id, "d1")
	require.NoError(t, err)
	assert.Equal(t, task.Result.ID, r.ID)

	d, _ := s.GetDream(id, "d1")
	assert.Equal(t, models.AnalysisCompleted, d.AnalysisStatus)

	// a later sync keeps the analysis
	s.UpsertDream(id, models.ServerDream{ID: "d1", DreamDate: "2026-10-01"})
	d, _ = s.GetDream(id, "d1")
	assert.Equal(t, models.AnalysisCompleted, d.AnalysisStatus)
}

func TestPatternsAndNetwork(t *testing.T) {
	s, id := newStore(t)
	s.UpsertDream(id, models.ServerDream{ID: "d1", DreamDate: "2026-10-10", EmotionTags: []string{"happy"}})
	s.UpsertDream(id, models.ServerDream{ID: "d2", DreamDate: "2026-10-11", EmotionTags: []string{"happy", "sad"}})
	s.UpsertDream(id, models.ServerDream{ID: "d3", DreamDate: "2026-01-01", EmotionTags: []string{"fear"}})

	p := s.Patterns(id, 30)
	assert.Equal(t, 2, p.TotalDreams)
	assert.Equal(t, []models.NamedCount{{Name: "happy", Count: 2}, {Name: "sad", Count: 1}}, p.Emotions)

	n := s.Network(id, 0.3)
	require.Equal(t, 1, n.TotalConnections)
	assert.InDelta(t, 0.5, n.Network[0].Similarity, 1e-9)

	assert.Contains(t, s.DailyInsight(id).Pattern, "happy")
}

func TestVisualizations(t *testing.T) {
	s, id := newStore(t)
	s.UpsertDream(id, models.ServerDream{ID: "d1", DreamDate: "2026-10-10", Title: "Sea"})

	_, err := s.Visualize(id, "d1", "cubism")
	assert.ErrorIs(t, err, common.ErrValidation)

	v, err := s.Visualize(id, "d1", "surreal")
	require.NoError(t, err)
	assert.Equal(t, "Sea", v.DreamTitle)

	list, err := s.Visualizations(id, "d1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, s.Gallery(id, 0, 10).TotalCount)

	other := s.UserForFirebaseToken("other").ID
	assert.ErrorIs(t, s.DeleteVisualization(other, v.ID), common.ErrNotFound)
	require.NoError(t, s.DeleteVisualization(id, v.ID))
	assert.Equal(t, 0, s.Gallery(id, 0, 10).TotalCount)
}

func TestPostsAndUsage(t *testing.T) {
	s, id := newStore(t)
	s.UpsertDream(id, models.ServerDream{ID: "d1", DreamDate: "2026-10-10", EmotionTags: []string{"joy"}})

	_, err := s.CreatePost(id, models.ShareRequest{DreamID: "d1", SharedText: "first", IsAnonymous: true})
	require.NoError(t, err)
	p2, err := s.CreatePost(id, models.ShareRequest{SharedText: "second"})
	require.NoError(t, err)

	feed := s.Posts(0, 1)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, p2.ID, feed.Posts[0].ID)
	assert.True(t, feed.HasNext)
	assert.Equal(t, []string{"joy"}, s.Posts(1, 1).Posts[0].EmotionTags)

	d, _ := s.GetDream(id, "d1")
	assert.True(t, d.IsShared)

	plan, err := s.AddUsage(id, models.UsageUpdate{Feature: models.FeatureAIAnalyses, Increment: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.FeaturesUsed.AIAnalyses)

	_, err = s.AddUsage(id, models.UsageUpdate{Feature: "teleport", Increment: 1})
	assert.ErrorIs(t, err, common.ErrValidation)

	s.SetPlan(id, models.PlanPremium)
	assert.Equal(t, models.PlanPremium, s.Plan(id).Plan)
	assert.Equal(t, 2, s.Plan(id).FeaturesUsed.AIAnalyses)
}
