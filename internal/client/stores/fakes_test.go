package stores

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/dreamtracer/internal/client/insights"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
)

type fakeManager struct {
	mu      sync.Mutex
	dreams  map[string]models.Dream
	order   []string
	pending int
	syncErr error
	events  chan models.SyncEvent
}

func newFakeManager() *fakeManager {
	return &fakeManager{dreams: map[string]models.Dream{}, events: make(chan models.SyncEvent, 8)}
}

func (m *fakeManager) CreateDream(_ context.Context, in models.DreamInput) (*models.Dream, error) {
	if in.BodyText == "" {
		return nil, common.ErrValidation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := models.Dream{ID: in.Title, DreamDate: in.DreamDate, Title: in.Title, BodyText: in.BodyText}
	m.dreams[d.ID] = d
	m.order = append(m.order, d.ID)
	m.pending++
	return &d, nil
}

func (m *fakeManager) GetDream(_ context.Context, id string) (*models.Dream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dreams[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *fakeManager) GetDreams(context.Context) ([]models.Dream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Dream{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if d, ok := m.dreams[m.order[i]]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *fakeManager) UpdateDream(_ context.Context, id string, patch models.DreamPatch) (*models.Dream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dreams[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	patch.Apply(&d)
	m.dreams[id] = d
	return &d, nil
}

func (m *fakeManager) DeleteDream(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dreams, id)
	return nil
}

func (m *fakeManager) SyncPendingData(context.Context) (models.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncErr != nil {
		return models.SyncReport{}, m.syncErr
	}
	n := m.pending
	m.pending = 0
	for id, d := range m.dreams {
		d.IsSynced = true
		m.dreams[id] = d
	}
	return models.SyncReport{Attempted: n, Synced: n, Failed: map[string]string{}}, nil
}

func (m *fakeManager) PendingCount(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, nil
}

func (m *fakeManager) Subscribe() (<-chan models.SyncEvent, func()) {
	return m.events, func() {}
}

type fakeAuth struct {
	user      *models.User
	failLogin error
}

func (a *fakeAuth) FirebaseAuth(_ context.Context, token string) (*models.User, error) {
	if a.failLogin != nil {
		return nil, a.failLogin
	}
	a.user = &models.User{ID: "u-" + token, AuthProvider: "firebase"}
	return a.user, nil
}

func (a *fakeAuth) CompleteOnboarding(_ context.Context, steps ...map[string]any) (*models.User, error) {
	if a.user == nil {
		return nil, common.ErrNotAuthenticated
	}
	u := *a.user
	for _, s := range steps {
		if name, ok := s["name"].(string); ok {
			u.Name = name
		}
	}
	u.HasCompletedOnboarding = true
	a.user = &u
	return a.user, nil
}

func (a *fakeAuth) User(context.Context) (*models.User, error) {
	if a.user == nil {
		return nil, common.ErrNotAuthenticated
	}
	return a.user, nil
}

func (a *fakeAuth) IsAuthenticated(context.Context) bool { return a.user != nil }

func (a *fakeAuth) Logout(context.Context) error {
	a.user = nil
	return nil
}

type fakeAnalysis struct {
	networkErr error
}

func (f *fakeAnalysis) GetAnalysis(_ context.Context, dreamID string) (*models.AnalysisResult, error) {
	if dreamID == "missing" {
		return nil, common.ErrNotFound
	}
	return &models.AnalysisResult{DreamID: dreamID, SummaryText: "summary of " + dreamID}, nil
}

func (f *fakeAnalysis) DailyInsights(context.Context) (*models.DailyInsight, error) {
	return &models.DailyInsight{Insight: "sleep more"}, nil
}

func (f *fakeAnalysis) Patterns(_ context.Context, days int) (*models.ServerPatterns, error) {
	return &models.ServerPatterns{TotalDreams: days}, nil
}

func (f *fakeAnalysis) Network(context.Context) (*models.DreamNetwork, error) {
	if f.networkErr != nil {
		return nil, f.networkErr
	}
	return &models.DreamNetwork{TotalConnections: 1}, nil
}

type fakePatterns struct{}

func (fakePatterns) Patterns(context.Context) (insights.Patterns, error) {
	return insights.Patterns{TotalDreams: 3}, nil
}

func (fakePatterns) Predict(context.Context) (insights.Prediction, error) {
	return insights.Prediction{Confidence: 0.25}, nil
}

func (fakePatterns) Network(context.Context, float64) (models.DreamNetwork, error) {
	return models.DreamNetwork{TotalConnections: 4}, nil
}
