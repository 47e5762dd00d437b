package insights

import (
	"sort"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// recentWindow is how many of the latest scores a trend keeps.
const recentWindow = 10

// trendThreshold is the minimum change of the mean between the older and
// newer half of the window to count as a trend.
const trendThreshold = 0.5

type ScoreTrend struct {
	Average      float64 `json:"average"`
	Trend        Trend   `json:"trend"`
	RecentScores []int   `json:"recent_scores"`
}

type TypeShare struct {
	Type       string  `json:"type"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// Patterns is the aggregate view over a set of dreams.
type Patterns struct {
	TotalDreams     int         `json:"total_dreams"`
	RecurringThemes []string    `json:"recurring_themes"`
	Emotions        []Count     `json:"emotions"`
	Symbols         []Count     `json:"symbols"`
	Characters      []Count     `json:"characters"`
	DreamTypes      []TypeShare `json:"dream_types"`
	Lucidity        ScoreTrend  `json:"lucidity"`
	SleepQuality    ScoreTrend  `json:"sleep_quality"`
}

// Analyze computes Patterns over dreams in one pass per dimension.
// Recurring themes are emotions and symbols seen more than once.
func Analyze(dreams []models.Dream) Patterns {
	chrono := chronological(dreams)

	p := Patterns{
		TotalDreams: len(dreams),
		Emotions:    CountEmotions(chrono),
		Symbols:     CountSymbols(chrono),
		Characters:  CountCharacters(chrono),
		DreamTypes:  []TypeShare{},
	}

	p.RecurringThemes = []string{}
	for _, list := range [][]Count{p.Emotions, p.Symbols} {
		for _, c := range list {
			if c.Count > 1 {
				p.RecurringThemes = append(p.RecurringThemes, c.Name)
			}
		}
	}

	for _, c := range CountDreamTypes(chrono) {
		p.DreamTypes = append(p.DreamTypes, TypeShare{
			Type:       c.Name,
			Frequency:  c.Count,
			Percentage: float64(c.Count) / float64(len(dreams)) * 100,
		})
	}

	p.Lucidity = scoreTrend(scores(chrono, func(d models.Dream) *int { return d.LucidityLevel }))
	p.SleepQuality = scoreTrend(scores(chrono, func(d models.Dream) *int { return d.SleepQuality }))
	return p
}

// chronological returns a copy of dreams ordered oldest first.
func chronological(dreams []models.Dream) []models.Dream {
	out := make([]models.Dream, len(dreams))
	copy(out, dreams)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DreamDate != out[j].DreamDate {
			return out[i].DreamDate < out[j].DreamDate
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func scoreTrend(all []int) ScoreTrend {
	recent := all
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	recent = append([]int{}, recent...)

	t := ScoreTrend{Average: mean(all), Trend: TrendStable, RecentScores: recent}
	if len(recent) < 4 {
		return t
	}

	half := len(recent) / 2
	delta := mean(recent[half:]) - mean(recent[:half])
	switch {
	case delta >= trendThreshold:
		t.Trend = TrendIncreasing
	case delta <= -trendThreshold:
		t.Trend = TrendDecreasing
	}
	return t
}

// Prediction extrapolates the next dreams from observed patterns.
type Prediction struct {
	Themes          []string `json:"predicted_themes"`
	Emotions        []string `json:"predicted_emotions"`
	Lucidity        float64  `json:"predicted_lucidity"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
}

// Predict takes the top recurring themes and emotions as the likely
// content of upcoming dreams. Confidence grows with the number of dreams
// observed and approaches 1.
func Predict(p Patterns) Prediction {
	themes := p.RecurringThemes
	if len(themes) > 3 {
		themes = themes[:3]
	}

	emotions := []string{}
	for _, c := range Dominant(p.Emotions, 3) {
		emotions = append(emotions, c.Name)
	}

	recs := []string{"keep writing your dream journal every morning"}
	if p.SleepQuality.Average > 0 && p.SleepQuality.Average < 3 {
		recs = append(recs, "keep a regular sleep schedule")
	}
	if p.Lucidity.Average > 0 && p.Lucidity.Average < 2 {
		recs = append(recs, "try reality checks during the day to raise lucidity")
	}

	return Prediction{
		Themes:          append([]string{}, themes...),
		Emotions:        emotions,
		Lucidity:        p.Lucidity.Average,
		Confidence:      float64(p.TotalDreams) / float64(p.TotalDreams+10),
		Recommendations: recs,
	}
}
