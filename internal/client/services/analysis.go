package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/cache"
	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
)

// AnalysisService reads AI analysis results and server-side aggregates.
// Results are cached per dream until replaced or cleared.
type AnalysisService struct {
	api    client.Client
	cache  *cache.Cache[string, models.AnalysisResult]
	logger logging.Logger
}

func NewAnalysisService(api client.Client, logger logging.Logger) *AnalysisService {
	return &AnalysisService{
		api:    api,
		cache:  cache.New[string, models.AnalysisResult](cache.NoExpiry{}),
		logger: logger,
	}
}

// RequestAnalysis queues an analysis without any quota check; use
// HybridDataManager.RequestDreamAnalysis for user actions.
func (s *AnalysisService) RequestAnalysis(ctx context.Context, dreamID string) (*models.AnalysisTask, error) {
	task, err := s.api.RequestAnalysis(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("request analysis: %w", err)
	}
	s.remember(task)
	return task, nil
}

func (s *AnalysisService) GetAnalysis(ctx context.Context, dreamID string) (*models.AnalysisResult, error) {
	if r, ok := s.cache.Get(dreamID); ok {
		return &r, nil
	}

	r, err := s.api.GetAnalysis(ctx, dreamID)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	s.cache.Set(dreamID, *r)
	return r, nil
}

func (s *AnalysisService) TaskStatus(ctx context.Context, taskID string) (*models.AnalysisTask, error) {
	task, err := s.api.TaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task status: %w", err)
	}
	s.remember(task)
	return task, nil
}

// PollTask checks the task every interval until it completes, fails, or
// ctx ends.
func (s *AnalysisService) PollTask(ctx context.Context, taskID string, interval time.Duration) (*models.AnalysisTask, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := s.TaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if task.Done() {
			return task, nil
		}
		s.logger.Debug(ctx, "analysis still running", "task_id", taskID, "status", task.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *AnalysisService) remember(task *models.AnalysisTask) {
	if task != nil && task.Result != nil && task.Result.DreamID != "" {
		s.cache.Set(task.Result.DreamID, *task.Result)
	}
}

func (s *AnalysisService) DailyInsights(ctx context.Context) (*models.DailyInsight, error) {
	return s.api.DailyInsights(ctx)
}

func (s *AnalysisService) Patterns(ctx context.Context, days int) (*models.ServerPatterns, error) {
	if days <= 0 {
		days = 30
	}
	return s.api.Patterns(ctx, days)
}

func (s *AnalysisService) Network(ctx context.Context) (*models.DreamNetwork, error) {
	return s.api.Network(ctx)
}

func (s *AnalysisService) ClearCache() {
	s.cache.Clear()
}
