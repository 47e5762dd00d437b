package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/dmitrijs2005/dreamtracer/internal/validation"
)

const defaultHealthCheckTimeout = 5 * time.Second

// ServerSyncService pushes local records to the backend and wraps the
// quota endpoints.
type ServerSyncService struct {
	api           client.Client
	local         *LocalStorageService
	limits        models.LimitTable
	logger        logging.Logger
	healthTimeout time.Duration
	now           func() time.Time
}

type SyncOption func(*ServerSyncService)

func WithHealthCheckTimeout(d time.Duration) SyncOption {
	return func(s *ServerSyncService) {
		if d > 0 {
			s.healthTimeout = d
		}
	}
}

func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *ServerSyncService) { s.now = now }
}

func NewServerSyncService(api client.Client, local *LocalStorageService, limits models.LimitTable, logger logging.Logger, opts ...SyncOption) *ServerSyncService {
	s := &ServerSyncService{
		api:           api,
		local:         local,
		limits:        limits,
		logger:        logger,
		healthTimeout: defaultHealthCheckTimeout,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ServerSyncService) setStatus(ctx context.Context, id string, status models.SyncStatus, msg string) {
	if err := s.local.UpdateSyncStatus(ctx, id, status, msg); err != nil {
		s.logger.Warn(ctx, "record sync status", "dream_id", id, "status", status, "error", err)
	}
}

func (s *ServerSyncService) finish(ctx context.Context, d models.Dream, status models.SyncStatus, msg string) {
	applied, err := s.local.FinishSync(ctx, d, status, msg)
	if err != nil {
		s.logger.Warn(ctx, "record sync status", "dream_id", d.ID, "status", status, "error", err)
		return
	}
	if !applied {
		s.logger.Info(ctx, "sync outcome not recorded, dream left for the next pass", "dream_id", d.ID)
	}
}

// SyncDreamToServer mirrors d without its private fields. The local status
// is syncing while the request runs, then synced or failed unless the dream
// was edited meanwhile.
func (s *ServerSyncService) SyncDreamToServer(ctx context.Context, d models.Dream) error {
	s.setStatus(ctx, d.ID, models.SyncSyncing, "")

	err := s.api.SyncDream(ctx, models.ToServer(d))

	// the outcome must be recorded even when the request context is gone
	done := context.WithoutCancel(ctx)
	if err != nil {
		s.finish(done, d, models.SyncFailed, err.Error())
		return fmt.Errorf("sync dream %s: %w", d.ID, err)
	}
	s.finish(done, d, models.SyncSynced, "")
	return nil
}

func (s *ServerSyncService) SaveAnalysisResult(ctx context.Context, dreamID string, result models.AnalysisResult) error {
	if err := s.api.SaveAnalysis(ctx, dreamID, result); err != nil {
		return fmt.Errorf("save analysis for %s: %w", dreamID, err)
	}
	return nil
}

// ShareToCommunity posts a dream anonymously after checking the text length
// and image quota of the user's plan.
func (s *ServerSyncService) ShareToCommunity(ctx context.Context, dreamID, text, image string) (*models.CommunityPost, error) {
	plan := s.GetUserPlan(ctx)
	limits := s.limits.For(plan.Plan)

	if n := utf8.RuneCountInString(text); n > limits.CommunityTextLimit {
		return nil, &validation.Error{Fields: map[string]string{
			"shared_text": fmt.Sprintf("must be at most %d characters for the %s plan, got %d", limits.CommunityTextLimit, plan.Plan, n),
		}}
	}
	if image != "" {
		if err := checkQuota(s.limits, plan, models.FeatureImageUploads); err != nil {
			return nil, err
		}
	}

	post, err := s.api.CreatePost(ctx, models.ShareRequest{
		DreamID:     dreamID,
		SharedText:  text,
		SharedImage: image,
		IsAnonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("share dream %s: %w", dreamID, err)
	}

	s.UpdateFeatureUsage(ctx, models.FeatureCommunityPosts, 1)
	if image != "" {
		s.UpdateFeatureUsage(ctx, models.FeatureImageUploads, 1)
	}
	return post, nil
}

// GetUserPlan never fails. When the plan cannot be fetched it returns the
// free tier with zero usage and Unknown set.
func (s *ServerSyncService) GetUserPlan(ctx context.Context) models.UserPlan {
	plan, err := s.api.UserPlan(ctx)
	if err != nil || plan == nil {
		s.logger.Warn(ctx, "fetch user plan, using free tier", "error", err)
		p := models.DefaultPlan(s.now())
		p.Unknown = true
		return p
	}
	return *plan
}

// UpdateFeatureUsage is best effort; failures are only logged.
func (s *ServerSyncService) UpdateFeatureUsage(ctx context.Context, f models.Feature, delta int) {
	err := s.api.UpdateUsage(ctx, models.UsageUpdate{Feature: f, Increment: delta, Timestamp: s.now().UTC()})
	if err != nil {
		s.logger.Warn(ctx, "update feature usage", "feature", f, "error", err)
	}
}

// IsNetworkAvailable probes the health endpoint with a short timeout.
func (s *ServerSyncService) IsNetworkAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	if err := s.api.Ping(ctx); err != nil {
		s.logger.Debug(ctx, "server unreachable", "error", err)
		return false
	}
	return true
}

// SyncPendingDreams pushes every pending or failed dream in turn. A failed
// dream does not stop the pass.
func (s *ServerSyncService) SyncPendingDreams(ctx context.Context) models.SyncReport {
	report := models.SyncReport{Failed: map[string]string{}}

	for _, d := range s.local.GetPendingSyncDreams(ctx) {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++
		if err := s.SyncDreamToServer(ctx, d); err != nil {
			report.Failed[d.ID] = err.Error()
			continue
		}
		report.Synced++
	}

	s.logger.Info(ctx, "pending dreams synced", "attempted", report.Attempted, "synced", report.Synced, "failed", len(report.Failed))
	return report
}

func (s *ServerSyncService) DeleteRemoteDream(ctx context.Context, id string) error {
	if err := s.api.DeleteDream(ctx, id); err != nil {
		return fmt.Errorf("delete remote dream %s: %w", id, err)
	}
	return nil
}
