package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

// Client is the backend API used by the services layer.
type Client interface {
	Ping(ctx context.Context) error

	FirebaseAuth(ctx context.Context, firebaseToken string) (*models.AuthToken, error)
	CompleteOnboarding(ctx context.Context, payload map[string]any) (*models.User, error)

	SyncDream(ctx context.Context, d models.ServerDream) error
	ListDreams(ctx context.Context, f models.DreamFilter) (*models.DreamList, error)
	GetDream(ctx context.Context, id string) (*models.ServerDream, error)
	UpdateDream(ctx context.Context, id string, patch models.DreamPatch) (*models.ServerDream, error)
	DeleteDream(ctx context.Context, id string) error
	UploadAudio(ctx context.Context, filename string, r io.Reader) (*models.AudioUpload, error)

	RequestAnalysis(ctx context.Context, dreamID string) (*models.AnalysisTask, error)
	GetAnalysis(ctx context.Context, dreamID string) (*models.AnalysisResult, error)
	SaveAnalysis(ctx context.Context, dreamID string, result models.AnalysisResult) error
	TaskStatus(ctx context.Context, taskID string) (*models.AnalysisTask, error)
	DailyInsights(ctx context.Context) (*models.DailyInsight, error)
	Patterns(ctx context.Context, days int) (*models.ServerPatterns, error)
	Network(ctx context.Context) (*models.DreamNetwork, error)

	CreateVisualization(ctx context.Context, dreamID, artStyle string) (*models.Visualization, error)
	Visualizations(ctx context.Context, dreamID string) ([]models.Visualization, error)
	DeleteVisualization(ctx context.Context, id string) error
	Gallery(ctx context.Context, skip, limit int) (*models.VisualizationGallery, error)
	VisualizationStyles(ctx context.Context) ([]models.VisualizationStyle, error)

	CreatePost(ctx context.Context, req models.ShareRequest) (*models.CommunityPost, error)
	Posts(ctx context.Context, skip, limit int) (*models.PostList, error)

	UserPlan(ctx context.Context) (*models.UserPlan, error)
	UpdateUsage(ctx context.Context, u models.UsageUpdate) error

	// BaseURL is the API root, used to build static asset URLs.
	BaseURL() string
}

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }
