package stores

import (
	"context"
	"maps"

	"github.com/dmitrijs2005/dreamtracer/internal/client/insights"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
)

// AnalysisSource is the server-side analysis API.
type AnalysisSource interface {
	GetAnalysis(ctx context.Context, dreamID string) (*models.AnalysisResult, error)
	DailyInsights(ctx context.Context) (*models.DailyInsight, error)
	Patterns(ctx context.Context, days int) (*models.ServerPatterns, error)
	Network(ctx context.Context) (*models.DreamNetwork, error)
}

// PatternSource computes patterns from the dreams on this device.
type PatternSource interface {
	Patterns(ctx context.Context) (insights.Patterns, error)
	Predict(ctx context.Context) (insights.Prediction, error)
	Network(ctx context.Context, minSimilarity float64) (models.DreamNetwork, error)
}

type AnalysisState struct {
	Analyses       map[string]models.AnalysisResult
	ServerPatterns *models.ServerPatterns
	LocalPatterns  *insights.Patterns
	Prediction     *insights.Prediction
	Network        *models.DreamNetwork
	Insight        *models.DailyInsight
}

type AnalysisStore struct {
	*Store[AnalysisState]
	remote AnalysisSource
	local  PatternSource
	logger logging.Logger
}

func NewAnalysisStore(remote AnalysisSource, local PatternSource, logger logging.Logger) *AnalysisStore {
	return &AnalysisStore{
		Store:  New(AnalysisState{Analyses: map[string]models.AnalysisResult{}}),
		remote: remote,
		local:  local,
		logger: logger,
	}
}

func (s *AnalysisStore) LoadAnalysis(ctx context.Context, dreamID string) (*models.AnalysisResult, error) {
	return Run(ctx, s.Store, "analysis:"+dreamID, func(ctx context.Context) (*models.AnalysisResult, error) {
		return s.remote.GetAnalysis(ctx, dreamID)
	}, func(st *AnalysisState, r *models.AnalysisResult) {
		next := maps.Clone(st.Analyses)
		next[dreamID] = *r
		st.Analyses = next
	})
}

func (s *AnalysisStore) LoadServerPatterns(ctx context.Context, days int) (*models.ServerPatterns, error) {
	return Run(ctx, s.Store, "server-patterns", func(ctx context.Context) (*models.ServerPatterns, error) {
		return s.remote.Patterns(ctx, days)
	}, func(st *AnalysisState, p *models.ServerPatterns) {
		st.ServerPatterns = p
	})
}

// LoadLocalPatterns computes patterns and the prediction from local dreams.
func (s *AnalysisStore) LoadLocalPatterns(ctx context.Context) (insights.Patterns, error) {
	type result struct {
		patterns   insights.Patterns
		prediction insights.Prediction
	}
	r, err := Run(ctx, s.Store, "local-patterns", func(ctx context.Context) (result, error) {
		p, err := s.local.Patterns(ctx)
		if err != nil {
			return result{}, err
		}
		pred, err := s.local.Predict(ctx)
		return result{patterns: p, prediction: pred}, err
	}, func(st *AnalysisState, r result) {
		st.LocalPatterns = &r.patterns
		st.Prediction = &r.prediction
	})
	return r.patterns, err
}

// LoadNetwork prefers the server's network and falls back to the local
// computation when the server cannot be reached.
func (s *AnalysisStore) LoadNetwork(ctx context.Context, minSimilarity float64) (*models.DreamNetwork, error) {
	return Run(ctx, s.Store, "network", func(ctx context.Context) (*models.DreamNetwork, error) {
		n, err := s.remote.Network(ctx)
		if err == nil {
			return n, nil
		}
		s.logger.Warn(ctx, "server network unavailable, computing locally", "error", err)
		local, lerr := s.local.Network(ctx, minSimilarity)
		if lerr != nil {
			return nil, lerr
		}
		return &local, nil
	}, func(st *AnalysisState, n *models.DreamNetwork) {
		st.Network = n
	})
}

func (s *AnalysisStore) LoadInsight(ctx context.Context) (*models.DailyInsight, error) {
	return Run(ctx, s.Store, "insight", s.remote.DailyInsights, func(st *AnalysisState, in *models.DailyInsight) {
		st.Insight = in
	})
}
