package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/cache"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

var ErrNoDreams = errors.New("no dreams to analyze")

// DreamSource lists the dreams to aggregate.
type DreamSource interface {
	GetDreams(ctx context.Context) ([]models.Dream, error)
	GetDream(ctx context.Context, id string) (*models.Dream, error)
}

const patternsKey = "patterns"

// PatternService computes Patterns over all local dreams and caches the
// result for ttl.
type PatternService struct {
	source DreamSource
	cache  *cache.Cache[string, Patterns]
}

func NewPatternService(source DreamSource, ttl time.Duration, opts ...cache.Option[string, Patterns]) *PatternService {
	return &PatternService{
		source: source,
		cache:  cache.New[string, Patterns](cache.TTL(ttl), opts...),
	}
}

func (s *PatternService) Patterns(ctx context.Context) (Patterns, error) {
	if p, ok := s.cache.Get(patternsKey); ok {
		return p, nil
	}

	dreams, err := s.source.GetDreams(ctx)
	if err != nil {
		return Patterns{}, fmt.Errorf("load dreams: %w", err)
	}
	if len(dreams) == 0 {
		return Patterns{}, ErrNoDreams
	}

	p := Analyze(dreams)
	s.cache.Set(patternsKey, p)
	return p, nil
}

func (s *PatternService) Predict(ctx context.Context) (Prediction, error) {
	p, err := s.Patterns(ctx)
	if err != nil {
		return Prediction{}, err
	}
	return Predict(p), nil
}

// Network is not cached; it depends on the threshold.
func (s *PatternService) Network(ctx context.Context, minSimilarity float64) (models.DreamNetwork, error) {
	dreams, err := s.source.GetDreams(ctx)
	if err != nil {
		return models.DreamNetwork{}, fmt.Errorf("load dreams: %w", err)
	}
	return Network(dreams, minSimilarity), nil
}

// Compare loads the given dreams, skipping unknown ids.
func (s *PatternService) Compare(ctx context.Context, ids []string) (Comparison, error) {
	var dreams []models.Dream
	for _, id := range ids {
		d, err := s.source.GetDream(ctx, id)
		if err != nil {
			return Comparison{}, fmt.Errorf("load dream %s: %w", id, err)
		}
		if d != nil {
			dreams = append(dreams, *d)
		}
	}
	return Compare(dreams)
}

// Invalidate drops the cached patterns.
func (s *PatternService) Invalidate() {
	s.cache.Clear()
}
