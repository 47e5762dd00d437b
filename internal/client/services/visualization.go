package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

var styleNames = map[string]string{
	"realistic":     "Realistic",
	"impressionist": "Impressionist",
	"surreal":       "Surreal",
	"watercolor":    "Watercolor",
	"oil_painting":  "Oil painting",
	"digital_art":   "Digital art",
	"anime":         "Anime",
	"fantasy":       "Fantasy",
	"minimalist":    "Minimalist",
	"abstract":      "Abstract",
}

type VisualizationService struct {
	api client.Client
}

func NewVisualizationService(api client.Client) *VisualizationService {
	return &VisualizationService{api: api}
}

// Create renders a dream image without any quota check; use
// HybridDataManager.RequestDreamVisualization for user actions.
func (s *VisualizationService) Create(ctx context.Context, dreamID, artStyle string) (*models.Visualization, error) {
	if _, ok := styleNames[artStyle]; !ok {
		return nil, fmt.Errorf("unknown art style %q", artStyle)
	}
	return s.api.CreateVisualization(ctx, dreamID, artStyle)
}

func (s *VisualizationService) ForDream(ctx context.Context, dreamID string) ([]models.Visualization, error) {
	return s.api.Visualizations(ctx, dreamID)
}

func (s *VisualizationService) Delete(ctx context.Context, id string) error {
	return s.api.DeleteVisualization(ctx, id)
}

func (s *VisualizationService) Gallery(ctx context.Context, skip, limit int) (*models.VisualizationGallery, error) {
	return s.api.Gallery(ctx, skip, limit)
}

func (s *VisualizationService) Styles(ctx context.Context) ([]models.VisualizationStyle, error) {
	return s.api.VisualizationStyles(ctx)
}

// ImageURL resolves a stored image path against the API's static root.
// Absolute URLs are returned as is.
func (s *VisualizationService) ImageURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(s.api.BaseURL(), "/") + "/static/" + strings.TrimLeft(path, "/")
}

// StyleName is the display name of an art style key.
func StyleName(key string) string {
	if n, ok := styleNames[key]; ok {
		return n
	}
	return key
}
