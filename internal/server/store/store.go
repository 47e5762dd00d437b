// Package store is the dev backend's in-memory state. Every record is
// scoped to a user id; lookups for another user's record report
// common.ErrNotFound.
package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	defaultPlan models.Plan
	now         func() time.Time

	users          map[string]*models.User
	dreams         map[string]models.ServerDream
	analyses       map[string]models.AnalysisResult
	tasks          map[string]models.AnalysisTask
	visualizations map[string]models.Visualization
	posts          []models.CommunityPost
	plans          map[string]models.UserPlan
}

func New(defaultPlan models.Plan) *Store {
	return &Store{
		defaultPlan:    defaultPlan,
		now:            time.Now,
		users:          map[string]*models.User{},
		dreams:         map[string]models.ServerDream{},
		analyses:       map[string]models.AnalysisResult{},
		tasks:          map[string]models.AnalysisTask{},
		visualizations: map[string]models.Visualization{},
		plans:          map[string]models.UserPlan{},
	}
}

// UserForFirebaseToken returns the user bound to a Firebase token, creating
// it on first sight. The id is derived from the token so repeated sign-ins
// map to the same user.
func (s *Store) UserForFirebaseToken(token string) models.User {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(token)).String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return *u
	}
	now := s.now().UTC()
	u := &models.User{
		ID:               id,
		AuthProvider:     "firebase",
		SubscriptionPlan: s.defaultPlan,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.users[id] = u
	s.plans[id] = models.UserPlan{Plan: s.defaultPlan, MonthlyResetDate: nextMonth(now)}
	return *u
}

// CompleteOnboarding stores the onboarding answers on the user.
func (s *Store) CompleteOnboarding(userID string, payload map[string]any) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	if name, ok := payload["name"].(string); ok {
		u.Name = name
	}
	if email, ok := payload["email"].(string); ok {
		u.Email = email
	}
	u.NotificationSettings = payload
	u.HasCompletedOnboarding = true
	u.UpdatedAt = s.now().UTC()
	return *u, nil
}

// UpsertDream stores d for userID, keeping analysis state of an existing
// copy.
func (s *Store) UpsertDream(userID string, d models.ServerDream) models.ServerDream {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.UserID = userID
	now := s.now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	if old, ok := s.dreams[d.ID]; ok && old.UserID == userID {
		d.AnalysisStatus = old.AnalysisStatus
		d.AnalysisResult = old.AnalysisResult
		d.IsShared = old.IsShared
	}
	if d.AnalysisStatus == "" {
		d.AnalysisStatus = models.AnalysisPending
	}
	s.dreams[d.ID] = d
	return d
}

func (s *Store) dream(userID, id string) (models.ServerDream, error) {
	d, ok := s.dreams[id]
	if !ok || d.UserID != userID {
		return models.ServerDream{}, fmt.Errorf("dream %s: %w", id, common.ErrNotFound)
	}
	return d, nil
}

func (s *Store) GetDream(userID, id string) (models.ServerDream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dream(userID, id)
}

// ListDreams filters and pages the user's dreams, newest dream date first.
func (s *Store) ListDreams(userID string, f models.DreamFilter) models.DreamList {
	s.mu.RLock()
	var all []models.ServerDream
	for _, d := range s.dreams {
		if d.UserID == userID && matches(d, f) {
			all = append(all, d)
		}
	}
	s.mu.RUnlock()

	sortDreams(all)

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	start := min(max(f.Skip, 0), len(all))
	end := min(start+limit, len(all))

	return models.DreamList{
		Dreams:      append([]models.ServerDream{}, all[start:end]...),
		TotalCount:  len(all),
		Page:        start/limit + 1,
		PageSize:    limit,
		HasNext:     end < len(all),
		HasPrevious: start > 0,
	}
}

func matches(d models.ServerDream, f models.DreamFilter) bool {
	if f.StartDate != "" && d.DreamDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && d.DreamDate > f.EndDate {
		return false
	}
	if f.DreamType != "" && d.DreamType != f.DreamType {
		return false
	}
	if len(f.EmotionFilter) > 0 {
		for _, want := range f.EmotionFilter {
			for _, have := range d.EmotionTags {
				if strings.EqualFold(want, have) {
					return true
				}
			}
		}
		return false
	}
	return true
}

func sortDreams(list []models.ServerDream) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].DreamDate != list[j].DreamDate {
			return list[i].DreamDate > list[j].DreamDate
		}
		return list[i].ID > list[j].ID
	})
}

func (s *Store) UpdateDream(userID, id string, patch models.DreamPatch) (models.ServerDream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dream(userID, id)
	if err != nil {
		return models.ServerDream{}, err
	}
	if patch.DreamDate != nil {
		d.DreamDate = *patch.DreamDate
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.LucidityLevel != nil {
		d.LucidityLevel = patch.LucidityLevel
	}
	if patch.EmotionTags != nil {
		d.EmotionTags = *patch.EmotionTags
	}
	if patch.DreamType != nil {
		d.DreamType = *patch.DreamType
	}
	if patch.SleepQuality != nil {
		d.SleepQuality = patch.SleepQuality
	}
	if patch.DreamDuration != nil {
		d.DreamDuration = patch.DreamDuration
	}
	if patch.Location != nil {
		d.Location = *patch.Location
	}
	if patch.Characters != nil {
		d.Characters = *patch.Characters
	}
	if patch.Symbols != nil {
		d.Symbols = *patch.Symbols
	}
	d.UpdatedAt = s.now().UTC()
	s.dreams[id] = d
	return d, nil
}

// DeleteDream removes the dream with its analysis and visualizations.
func (s *Store) DeleteDream(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.dream(userID, id); err != nil {
		return err
	}
	delete(s.dreams, id)
	delete(s.analyses, id)
	for vid, v := range s.visualizations {
		if v.DreamID == id {
			delete(s.visualizations, vid)
		}
	}
	return nil
}

func (s *Store) userDreams(userID string) []models.ServerDream {
	var out []models.ServerDream
	for _, d := range s.dreams {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sortDreams(out)
	return out
}

func nextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// toDream widens a server copy for the shared aggregation code.
func toDream(d models.ServerDream) models.Dream {
	return models.Dream{
		ID:            d.ID,
		UserID:        d.UserID,
		DreamDate:     d.DreamDate,
		Title:         d.Title,
		LucidityLevel: d.LucidityLevel,
		EmotionTags:   d.EmotionTags,
		DreamType:     d.DreamType,
		SleepQuality:  d.SleepQuality,
		Characters:    d.Characters,
		Symbols:       d.Symbols,
		CreatedAt:     d.CreatedAt,
	}
}

func toDreams(list []models.ServerDream) []models.Dream {
	out := make([]models.Dream, 0, len(list))
	for _, d := range list {
		out = append(out, toDream(d))
	}
	return out
}
