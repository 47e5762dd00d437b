package insights

import (
	"sort"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

// Count is the number of occurrences of one tag.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func tally(dreams []models.Dream, extract func(models.Dream) []string) []Count {
	index := map[string]int{}
	counts := []Count{}

	for _, d := range dreams {
		for _, tag := range extract(d) {
			if tag == "" {
				continue
			}
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, Count{Name: tag, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func CountEmotions(dreams []models.Dream) []Count {
	return tally(dreams, func(d models.Dream) []string { return d.EmotionTags })
}

func CountSymbols(dreams []models.Dream) []Count {
	return tally(dreams, func(d models.Dream) []string { return d.Symbols })
}

func CountCharacters(dreams []models.Dream) []Count {
	return tally(dreams, func(d models.Dream) []string { return d.Characters })
}

func CountDreamTypes(dreams []models.Dream) []Count {
	return tally(dreams, func(d models.Dream) []string { return []string{d.DreamType} })
}

// Dominant returns the first n entries of an ordered count list.
func Dominant(counts []Count, n int) []Count {
	if n < 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}

// AverageLucidity is the mean over dreams that have a lucidity level; 0
// when none do.
func AverageLucidity(dreams []models.Dream) float64 {
	return mean(scores(dreams, func(d models.Dream) *int { return d.LucidityLevel }))
}

// AverageSleepQuality is the mean over dreams that have a sleep score; 0
// when none do.
func AverageSleepQuality(dreams []models.Dream) float64 {
	return mean(scores(dreams, func(d models.Dream) *int { return d.SleepQuality }))
}

func scores(dreams []models.Dream, pick func(models.Dream) *int) []int {
	out := []int{}
	for _, d := range dreams {
		if v := pick(d); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Share is a tag's portion of all tags, as a rounded percentage.
type Share struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// EmotionDistribution returns the n most frequent emotions with their
// share of all emotion tags.
func EmotionDistribution(dreams []models.Dream, n int) []Share {
	counts := CountEmotions(dreams)
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	out := []Share{}
	for _, c := range Dominant(counts, n) {
		pct := 0
		if total > 0 {
			pct = int(float64(c.Count)/float64(total)*100 + 0.5)
		}
		out = append(out, Share{Name: c.Name, Count: c.Count, Percentage: pct})
	}
	return out
}
