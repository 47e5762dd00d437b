package store

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/google/uuid"
)

// Styles is the catalogue of supported art styles.
var Styles = []models.VisualizationStyle{
	{Key: "realistic", Name: "Realistic"},
	{Key: "impressionist", Name: "Impressionist"},
	{Key: "surreal", Name: "Surreal"},
	{Key: "watercolor", Name: "Watercolor"},
	{Key: "oil_painting", Name: "Oil painting"},
	{Key: "digital_art", Name: "Digital art"},
	{Key: "anime", Name: "Anime"},
	{Key: "fantasy", Name: "Fantasy"},
	{Key: "minimalist", Name: "Minimalist"},
	{Key: "abstract", Name: "Abstract"},
}

func knownStyle(key string) bool {
	for _, s := range Styles {
		if s.Key == key {
			return true
		}
	}
	return false
}

func (s *Store) Visualize(userID, dreamID, style string) (models.Visualization, error) {
	if !knownStyle(style) {
		return models.Visualization{}, fmt.Errorf("%w: unknown art style %q", common.ErrValidation, style)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dream(userID, dreamID)
	if err != nil {
		return models.Visualization{}, err
	}
	id := uuid.NewString()
	v := models.Visualization{
		ID:         id,
		DreamID:    dreamID,
		DreamTitle: d.Title,
		ImagePath:  fmt.Sprintf("visualizations/%s.png", id),
		ArtStyle:   style,
		CreatedAt:  s.now().UTC(),
	}
	s.visualizations[id] = v
	return v, nil
}

func (s *Store) Visualizations(userID, dreamID string) ([]models.Visualization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.dream(userID, dreamID); err != nil {
		return nil, err
	}
	out := []models.Visualization{}
	for _, v := range s.visualizations {
		if v.DreamID == dreamID {
			out = append(out, v)
		}
	}
	sortVisualizations(out)
	return out, nil
}

func (s *Store) owns(userID string, v models.Visualization) bool {
	d, ok := s.dreams[v.DreamID]
	return ok && d.UserID == userID
}

func (s *Store) DeleteVisualization(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visualizations[id]
	if !ok || !s.owns(userID, v) {
		return fmt.Errorf("visualization %s: %w", id, common.ErrNotFound)
	}
	delete(s.visualizations, id)
	return nil
}

func (s *Store) Gallery(userID string, skip, limit int) models.VisualizationGallery {
	s.mu.RLock()
	var all []models.Visualization
	for _, v := range s.visualizations {
		if s.owns(userID, v) {
			all = append(all, v)
		}
	}
	s.mu.RUnlock()

	sortVisualizations(all)
	if limit <= 0 {
		limit = 20
	}
	start := min(max(skip, 0), len(all))
	end := min(start+limit, len(all))
	return models.VisualizationGallery{
		Visualizations: append([]models.Visualization{}, all[start:end]...),
		TotalCount:     len(all),
		Page:           start/limit + 1,
		PageSize:       limit,
	}
}

func sortVisualizations(list []models.Visualization) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// CreatePost shares a dream. Tags are copied from the dream when it is
// known to the server.
func (s *Store) CreatePost(userID string, req models.ShareRequest) (models.CommunityPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p := models.CommunityPost{
		ID:          uuid.NewString(),
		UserID:      userID,
		DreamID:     req.DreamID,
		SharedText:  req.SharedText,
		SharedImage: req.SharedImage,
		EmotionTags: []string{},
		Symbols:     []string{},
		IsAnonymous: req.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d, err := s.dream(userID, req.DreamID); err == nil {
		p.EmotionTags = append(p.EmotionTags, d.EmotionTags...)
		p.Symbols = append(p.Symbols, d.Symbols...)
		d.IsShared = true
		d.CommunitySharedText = req.SharedText
		d.CommunitySharedImage = req.SharedImage
		s.dreams[d.ID] = d
	}
	if u, ok := s.users[userID]; ok && !req.IsAnonymous {
		p.AuthorName = u.Name
	}

	s.posts = append(s.posts, p)
	return p, nil
}

// Posts pages the feed, newest first.
func (s *Store) Posts(skip, limit int) models.PostList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	n := len(s.posts)
	start := min(max(skip, 0), n)
	end := min(start+limit, n)

	out := make([]models.CommunityPost, 0, end-start)
	for i := n - 1 - start; i > n-1-end; i-- {
		out = append(out, s.posts[i])
	}
	return models.PostList{Posts: out, TotalCount: n, HasNext: end < n}
}

func (s *Store) Plan(userID string) models.UserPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.plans[userID]; ok {
		return p
	}
	return models.UserPlan{Plan: s.defaultPlan, MonthlyResetDate: nextMonth(s.now())}
}

// SetPlan changes the user's tier, keeping its usage counters.
func (s *Store) SetPlan(userID string, plan models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[userID]
	if !ok {
		p = models.UserPlan{MonthlyResetDate: nextMonth(s.now())}
	}
	p.Plan = plan
	s.plans[userID] = p
}

// AddUsage increments a usage counter. Unknown features are rejected.
func (s *Store) AddUsage(userID string, u models.UsageUpdate) (models.UserPlan, error) {
	switch u.Feature {
	case models.FeatureCommunityPosts, models.FeatureImageUploads, models.FeatureAIAnalyses, models.FeatureVisualizations:
	default:
		return models.UserPlan{}, fmt.Errorf("%w: unknown feature %q", common.ErrValidation, u.Feature)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[userID]
	if !ok {
		p = models.UserPlan{Plan: s.defaultPlan, MonthlyResetDate: nextMonth(s.now())}
	}
	p.FeaturesUsed.Add(u.Feature, u.Increment)
	s.plans[userID] = p
	return p, nil
}
