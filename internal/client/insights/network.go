package insights

import (
	"errors"
	"sort"
	"strings"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

var ErrTooFewDreams = errors.New("at least two dreams are required")

// features is the tag set compared between dreams. Tags are namespaced so
// an emotion and a symbol with the same word stay distinct.
func features(d models.Dream) map[string]struct{} {
	set := map[string]struct{}{}
	add := func(kind string, values ...string) {
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				set[kind+":"+v] = struct{}{}
			}
		}
	}
	add("emotion", d.EmotionTags...)
	add("symbol", d.Symbols...)
	add("character", d.Characters...)
	add("type", d.DreamType)
	return set
}

// Jaccard is |a ∩ b| / |a ∪ b|, and 0 for two empty sets.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Similarity compares two dreams by their emotions, symbols, characters
// and dream type.
func Similarity(a, b models.Dream) float64 {
	return Jaccard(features(a), features(b))
}

// Network links every pair of dreams whose similarity is at least
// minSimilarity and above zero. Links are ordered by similarity, strongest
// first.
func Network(dreams []models.Dream, minSimilarity float64) models.DreamNetwork {
	sets := make([]map[string]struct{}, len(dreams))
	for i, d := range dreams {
		sets[i] = features(d)
	}

	links := []models.DreamLink{}
	for i := 0; i < len(dreams); i++ {
		for j := i + 1; j < len(dreams); j++ {
			s := Jaccard(sets[i], sets[j])
			if s <= 0 || s < minSimilarity {
				continue
			}
			links = append(links, models.DreamLink{
				Dream1:     ref(dreams[i]),
				Dream2:     ref(dreams[j]),
				Similarity: s,
			})
		}
	}

	sort.SliceStable(links, func(i, j int) bool { return links[i].Similarity > links[j].Similarity })
	return models.DreamNetwork{Network: links, TotalConnections: len(links)}
}

func ref(d models.Dream) models.DreamRef {
	return models.DreamRef{ID: d.ID, Title: d.Title, Date: d.DreamDate}
}

type UniqueElements struct {
	DreamID  string   `json:"dream_id"`
	Elements []string `json:"elements"`
}

type Comparison struct {
	CommonThemes   []string         `json:"common_themes"`
	UniqueElements []UniqueElements `json:"unique_elements"`
	Similarity     float64          `json:"average_similarity"`
}

// Compare finds tags shared by more than one of the dreams, the tags only
// one dream has, and the mean pairwise similarity.
func Compare(dreams []models.Dream) (Comparison, error) {
	if len(dreams) < 2 {
		return Comparison{}, ErrTooFewDreams
	}

	owners := map[string]int{}
	order := []string{}
	perDream := make([][]string, len(dreams))
	for i, d := range dreams {
		seen := map[string]bool{}
		for _, tag := range concat(d.EmotionTags, d.Symbols, d.Characters) {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			perDream[i] = append(perDream[i], tag)
			if owners[tag] == 0 {
				order = append(order, tag)
			}
			owners[tag]++
		}
	}

	cmp := Comparison{CommonThemes: []string{}, UniqueElements: []UniqueElements{}}
	for _, tag := range order {
		if owners[tag] > 1 {
			cmp.CommonThemes = append(cmp.CommonThemes, tag)
		}
	}
	for i, d := range dreams {
		u := UniqueElements{DreamID: d.ID, Elements: []string{}}
		for _, tag := range perDream[i] {
			if owners[tag] == 1 {
				u.Elements = append(u.Elements, tag)
			}
		}
		cmp.UniqueElements = append(cmp.UniqueElements, u)
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(dreams); i++ {
		for j := i + 1; j < len(dreams); j++ {
			sum += Similarity(dreams[i], dreams[j])
			pairs++
		}
	}
	cmp.Similarity = sum / float64(pairs)
	return cmp, nil
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
