package services

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/dmitrijs2005/dreamtracer/internal/validation"
	"github.com/oklog/ulid/v2"
)

// HybridDataManager is the local-first facade used by the UI. Writes are
// committed locally, then synced when the server is reachable; sync
// failures never fail the write.
type HybridDataManager struct {
	local    *LocalStorageService
	remote   *ServerSyncService
	api      client.Client
	limits   models.LimitTable
	validate *validation.Validator
	logger   logging.Logger
	now      func() time.Time

	idMu    sync.Mutex
	entropy io.Reader
}

type ManagerOption func(*HybridDataManager)

func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *HybridDataManager) { m.now = now }
}

func NewHybridDataManager(local *LocalStorageService, remote *ServerSyncService, api client.Client, limits models.LimitTable, logger logging.Logger, opts ...ManagerOption) *HybridDataManager {
	m := &HybridDataManager{
		local:    local,
		remote:   remote,
		api:      api,
		limits:   limits,
		validate: validation.New(),
		logger:   logger,
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *HybridDataManager) newID() string {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(m.now()), m.entropy).String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CreateDream validates in, stores it locally and tries to sync it.
func (m *HybridDataManager) CreateDream(ctx context.Context, in models.DreamInput) (*models.Dream, error) {
	if err := m.validate.Validate(in); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	d := &models.Dream{
		ID:            m.newID(),
		UserID:        in.UserID,
		DreamDate:     in.DreamDate,
		Title:         in.Title,
		BodyText:      in.BodyText,
		AudioFilePath: in.AudioFilePath,
		LucidityLevel: in.LucidityLevel,
		EmotionTags:   nonNil(in.EmotionTags),
		DreamType:     in.DreamType,
		SleepQuality:  in.SleepQuality,
		DreamDuration: in.DreamDuration,
		Location:      in.Location,
		Characters:    nonNil(in.Characters),
		Symbols:       nonNil(in.Symbols),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.local.SaveDreamLocally(ctx, d); err != nil {
		return nil, err
	}
	return m.syncAndReload(ctx, d), nil
}

// syncAndReload pushes d when online and returns the stored copy with its
// current sync flags.
func (m *HybridDataManager) syncAndReload(ctx context.Context, d *models.Dream) *models.Dream {
	if m.remote.IsNetworkAvailable(ctx) {
		if err := m.remote.SyncDreamToServer(ctx, *d); err != nil {
			m.logger.Warn(ctx, "background sync failed", "dream_id", d.ID, "error", err)
		}
	}
	if fresh := m.local.GetLocalDream(ctx, d.ID); fresh != nil {
		return fresh
	}
	return d
}

func (m *HybridDataManager) GetDream(ctx context.Context, id string) (*models.Dream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.local.GetLocalDream(ctx, id), nil
}

func (m *HybridDataManager) GetDreams(ctx context.Context) ([]models.Dream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.local.GetLocalDreams(ctx), nil
}

// UpdateDream applies patch to a local dream, marks it pending again and
// tries to sync it.
func (m *HybridDataManager) UpdateDream(ctx context.Context, id string, patch models.DreamPatch) (*models.Dream, error) {
	if err := m.validate.Validate(patch); err != nil {
		return nil, err
	}

	d := m.local.GetLocalDream(ctx, id)
	if d == nil {
		return nil, fmt.Errorf("dream %s: %w", id, common.ErrNotFound)
	}

	patch.Apply(d)
	d.EmotionTags = nonNil(d.EmotionTags)
	d.Characters = nonNil(d.Characters)
	d.Symbols = nonNil(d.Symbols)
	d.UpdatedAt = m.now().UTC()

	if err := m.local.SaveDreamLocally(ctx, d); err != nil {
		return nil, err
	}
	return m.syncAndReload(ctx, d), nil
}

// DeleteDream always deletes locally; the remote delete is best effort.
func (m *HybridDataManager) DeleteDream(ctx context.Context, id string) error {
	if err := m.local.DeleteLocalDream(ctx, id); err != nil {
		return err
	}
	if m.remote.IsNetworkAvailable(ctx) {
		if err := m.remote.DeleteRemoteDream(ctx, id); err != nil {
			m.logger.Warn(ctx, "remote delete failed", "dream_id", id, "error", err)
		}
	}
	return nil
}

func (m *HybridDataManager) ShareDreamToCommunity(ctx context.Context, dreamID, text, image string) (*models.CommunityPost, error) {
	return m.remote.ShareToCommunity(ctx, dreamID, text, image)
}

// RequestDreamAnalysis queues an AI analysis if the plan allows another one.
func (m *HybridDataManager) RequestDreamAnalysis(ctx context.Context, dreamID string) (*models.AnalysisTask, error) {
	if err := checkQuota(m.limits, m.remote.GetUserPlan(ctx), models.FeatureAIAnalyses); err != nil {
		return nil, err
	}

	task, err := m.api.RequestAnalysis(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("request analysis for %s: %w", dreamID, err)
	}

	m.remote.UpdateFeatureUsage(ctx, models.FeatureAIAnalyses, 1)
	return task, nil
}

// RequestDreamVisualization renders a dream image if the plan allows
// another one.
func (m *HybridDataManager) RequestDreamVisualization(ctx context.Context, dreamID, artStyle string) (*models.Visualization, error) {
	if err := checkQuota(m.limits, m.remote.GetUserPlan(ctx), models.FeatureVisualizations); err != nil {
		return nil, err
	}

	v, err := m.api.CreateVisualization(ctx, dreamID, artStyle)
	if err != nil {
		return nil, fmt.Errorf("visualize dream %s: %w", dreamID, err)
	}

	m.remote.UpdateFeatureUsage(ctx, models.FeatureVisualizations, 1)
	return v, nil
}

func (m *HybridDataManager) SaveAnalysisResult(ctx context.Context, dreamID string, result models.AnalysisResult) error {
	return m.remote.SaveAnalysisResult(ctx, dreamID, result)
}

// SyncPendingData pushes pending dreams. It returns common.ErrUnavailable
// without touching anything when the server is unreachable.
func (m *HybridDataManager) SyncPendingData(ctx context.Context) (models.SyncReport, error) {
	if !m.remote.IsNetworkAvailable(ctx) {
		return models.SyncReport{Failed: map[string]string{}}, common.ErrUnavailable
	}
	return m.remote.SyncPendingDreams(ctx), nil
}

func (m *HybridDataManager) GetPendingSyncDreams(ctx context.Context) []models.Dream {
	return m.local.GetPendingSyncDreams(ctx)
}

func (m *HybridDataManager) PendingCount(ctx context.Context) (int, error) {
	return m.local.PendingCount(ctx)
}

func (m *HybridDataManager) GetUserPlan(ctx context.Context) models.UserPlan {
	return m.remote.GetUserPlan(ctx)
}

func (m *HybridDataManager) ExportData(ctx context.Context) ([]byte, error) {
	return m.local.ExportLocalData(ctx)
}

func (m *HybridDataManager) ImportData(ctx context.Context, data []byte) error {
	return m.local.ImportLocalData(ctx, data)
}

func (m *HybridDataManager) GetStorageUsage(ctx context.Context) (models.StorageUsage, error) {
	return m.local.GetStorageUsage(ctx)
}

func (m *HybridDataManager) ClearLocalData(ctx context.Context) error {
	return m.local.ClearLocalData(ctx)
}

// Subscribe streams sync state changes, one event per status write.
func (m *HybridDataManager) Subscribe() (<-chan models.SyncEvent, func()) {
	return m.local.Subscribe()
}
