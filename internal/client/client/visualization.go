package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

func (c *HTTPClient) CreateVisualization(ctx context.Context, dreamID, artStyle string) (*models.Visualization, error) {
	q := url.Values{}
	q.Set("art_style", artStyle)

	var out struct {
		Visualization models.Visualization `json:"visualization"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/dreams/" + url.PathEscape(dreamID) + "/visualize", query: q, auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Visualization, nil
}

func (c *HTTPClient) Visualizations(ctx context.Context, dreamID string) ([]models.Visualization, error) {
	var out struct {
		Visualizations []models.Visualization `json:"visualizations"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/dreams/" + url.PathEscape(dreamID) + "/visualizations", auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return out.Visualizations, nil
}

func (c *HTTPClient) DeleteVisualization(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/visualizations/" + url.PathEscape(id), auth: true}, nil)
}

func (c *HTTPClient) Gallery(ctx context.Context, skip, limit int) (*models.VisualizationGallery, error) {
	var out models.VisualizationGallery
	if err := c.do(ctx, request{method: http.MethodGet, path: "/visualizations/gallery", query: pageQuery(skip, limit), auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) VisualizationStyles(ctx context.Context) ([]models.VisualizationStyle, error) {
	var out struct {
		Styles []models.VisualizationStyle `json:"styles"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/visualization/styles"}, &out); err != nil {
		return nil, err
	}
	return out.Styles, nil
}
