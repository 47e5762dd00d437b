package store

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dreamtracer/internal/client/insights"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/google/uuid"
)

// Analyze produces a canned interpretation from the dream's tags. The task
// completes immediately.
func (s *Store) Analyze(userID, dreamID string) (models.AnalysisTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dream(userID, dreamID)
	if err != nil {
		return models.AnalysisTask{}, err
	}

	result := interpret(d)
	result.ID = uuid.NewString()
	result.CreatedAt = s.now().UTC()

	d.AnalysisStatus = models.AnalysisCompleted
	d.AnalysisResult = &result
	s.dreams[dreamID] = d
	s.analyses[dreamID] = result

	task := models.AnalysisTask{
		TaskID:  uuid.NewString(),
		Status:  models.AnalysisCompleted,
		Message: "analysis completed",
		Result:  &result,
	}
	s.tasks[task.TaskID] = task
	return task, nil
}

func interpret(d models.ServerDream) models.AnalysisResult {
	keywords := append(append([]string{}, d.EmotionTags...), d.Symbols...)

	symbols := map[string]string{}
	for _, sym := range d.Symbols {
		symbols[sym] = fmt.Sprintf("%s points to something you are processing while awake", sym)
	}

	summary := "A dream without recorded tags"
	if len(keywords) > 0 {
		summary = "A dream about " + strings.Join(keywords, ", ")
	}

	flow := "calm throughout"
	if len(d.EmotionTags) > 0 {
		flow = "moves through " + strings.Join(d.EmotionTags, " then ")
	}

	return models.AnalysisResult{
		DreamID:            d.ID,
		SummaryText:        summary,
		Keywords:           keywords,
		EmotionalFlowText:  flow,
		SymbolAnalysis:     symbols,
		ReflectiveQuestion: "What in your waking life feels like this dream?",
	}
}

func (s *Store) Task(id string) (models.AnalysisTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.AnalysisTask{}, fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}
	return t, nil
}

func (s *Store) Analysis(userID, dreamID string) (models.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.dream(userID, dreamID); err != nil {
		return models.AnalysisResult{}, err
	}
	r, ok := s.analyses[dreamID]
	if !ok {
		return models.AnalysisResult{}, fmt.Errorf("analysis for %s: %w", dreamID, common.ErrNotFound)
	}
	return r, nil
}

// SaveAnalysis stores a client-provided result for one of the user's dreams.
func (s *Store) SaveAnalysis(userID, dreamID string, r models.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dream(userID, dreamID)
	if err != nil {
		return err
	}
	r.DreamID = dreamID
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	d.AnalysisStatus = models.AnalysisCompleted
	d.AnalysisResult = &r
	s.dreams[dreamID] = d
	s.analyses[dreamID] = r
	return nil
}

// Patterns aggregates the user's dreams dated within the last days.
func (s *Store) Patterns(userID string, days int) models.ServerPatterns {
	s.mu.RLock()
	all := s.userDreams(userID)
	now := s.now()
	s.mu.RUnlock()

	from := now.AddDate(0, 0, -days).Format(models.DateLayout)
	var recent []models.Dream
	for _, d := range all {
		if d.DreamDate >= from {
			recent = append(recent, toDream(d))
		}
	}

	p := insights.Analyze(recent)
	return models.ServerPatterns{
		AnalysisPeriod:  fmt.Sprintf("%d days", days),
		TotalDreams:     p.TotalDreams,
		Emotions:        named(p.Emotions),
		Symbols:         named(p.Symbols),
		Characters:      named(p.Characters),
		DreamTypes:      named(insights.CountDreamTypes(recent)),
		AverageLucidity: p.Lucidity.Average,
	}
}

func named(counts []insights.Count) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, models.NamedCount{Name: c.Name, Count: c.Count})
	}
	return out
}

// Network links the user's similar dreams.
func (s *Store) Network(userID string, minSimilarity float64) models.DreamNetwork {
	s.mu.RLock()
	all := s.userDreams(userID)
	s.mu.RUnlock()
	return insights.Network(toDreams(all), minSimilarity)
}

// DailyInsight summarizes the user's dominant emotion.
func (s *Store) DailyInsight(userID string) models.DailyInsight {
	s.mu.RLock()
	all := toDreams(s.userDreams(userID))
	s.mu.RUnlock()

	if len(all) == 0 {
		return models.DailyInsight{
			Insight:        "Record a dream to get your first insight.",
			Pattern:        "no dreams yet",
			Recommendation: "Keep a notebook next to your bed.",
		}
	}

	top := insights.Dominant(insights.CountEmotions(all), 1)
	pattern := "no recurring emotion"
	if len(top) == 1 {
		pattern = fmt.Sprintf("%s appears in %d of your dreams", top[0].Name, top[0].Count)
	}
	return models.DailyInsight{
		Insight:        fmt.Sprintf("You have recorded %d dreams.", len(all)),
		Pattern:        pattern,
		Recommendation: "Write the dream down right after waking up.",
	}
}
