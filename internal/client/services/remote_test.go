package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisService_CachesResult(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := NewAnalysisService(env.api, logging.Nop())

	d, err := env.manager.CreateDream(ctx, sampleInput())
	require.NoError(t, err)

	task, err := svc.RequestAnalysis(ctx, d.ID)
	require.NoError(t, err)

	polled, err := svc.PollTask(ctx, task.TaskID, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, polled.Done())

	// served from cache while the server is down
	env.server.SetOnline(false)
	r, err := svc.GetAnalysis(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, r.DreamID)

	svc.ClearCache()
	_, err = svc.GetAnalysis(ctx, d.ID)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestAnalysisService_Aggregates(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := NewAnalysisService(env.api, logging.Nop())

	for range 2 {
		_, err := env.manager.CreateDream(ctx, sampleInput())
		require.NoError(t, err)
	}

	p, err := svc.Patterns(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalDreams)

	n, err := svc.Network(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n.TotalConnections)

	_, err = svc.DailyInsights(ctx)
	require.NoError(t, err)
}

func TestAnalysisService_PollCancelled(t *testing.T) {
	env := newEnv(t)
	svc := NewAnalysisService(env.api, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.PollTask(ctx, "missing", time.Millisecond)
	assert.Error(t, err)
}

func TestVisualizationService(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := NewVisualizationService(env.api)

	d, err := env.manager.CreateDream(ctx, sampleInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, d.ID, "cubist")
	assert.Error(t, err)

	v, err := svc.Create(ctx, d.ID, "watercolor")
	require.NoError(t, err)

	list, err := svc.ForDream(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	styles, err := svc.Styles(ctx)
	require.NoError(t, err)
	assert.Len(t, styles, len(styleNames))
	for _, s := range styles {
		assert.Equal(t, s.Name, StyleName(s.Key))
	}

	require.NoError(t, svc.Delete(ctx, v.ID))
	list, err = svc.ForDream(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImageURL(t *testing.T) {
	env := newEnv(t)
	svc := NewVisualizationService(env.api)
	base := env.api.BaseURL()

	assert.Equal(t, base+"/static/visualizations/a.png", svc.ImageURL("visualizations/a.png"))
	assert.Equal(t, base+"/static/visualizations/a.png", svc.ImageURL("/visualizations/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", svc.ImageURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "cubist", StyleName("cubist"))
}

func TestDreamService(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := NewDreamService(env.api)

	d, err := env.manager.CreateDream(ctx, sampleInput())
	require.NoError(t, err)

	list, err := svc.List(ctx, models.DreamFilter{Limit: -1})
	require.NoError(t, err)
	require.Len(t, list.Dreams, 1)
	assert.Equal(t, 20, list.PageSize)

	title := "renamed"
	sd, err := svc.Update(ctx, d.ID, models.DreamPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", sd.Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	up, err := svc.UploadAudio(ctx, "/tmp/night.M4A", strings.NewReader("audio bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("audio bytes")), up.FileSize)

	_, err = svc.UploadAudio(ctx, "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCommunityFeed(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := NewCommunityService(env.api)

	d, err := env.manager.CreateDream(ctx, sampleInput())
	require.NoError(t, err)

	_, err = env.manager.ShareDreamToCommunity(ctx, d.ID, "A very long first line of the dream\nsecond line", "")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, models.ShareRequest{DreamID: "other", SharedText: "short"})
	require.NoError(t, err)

	items, err := svc.Posts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "short", items[0].Title)
	assert.Equal(t, "Unknown", items[0].Author)

	assert.Equal(t, "Anonymous", items[1].Author)
	assert.Equal(t, "A very long first li...", items[1].Title)
	assert.Equal(t, []string{"joy", "awe", "sea"}, items[1].Tags)
}

func TestFeedTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "short"},
		{"exactly twenty chars", "exactly twenty chars"},
		{"twenty-one characters", "twenty-one character..."},
		{"line one\nline two", "line one"},
		{"сон о полёте над морем", "сон о полёте над мор..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FeedTitle(tt.in), tt.in)
	}
}
