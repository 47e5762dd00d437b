package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

func (c *HTTPClient) RequestAnalysis(ctx context.Context, dreamID string) (*models.AnalysisTask, error) {
	var out models.AnalysisTask
	err := c.do(ctx, request{method: http.MethodPost, path: "/dreams/" + url.PathEscape(dreamID) + "/analyze", auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetAnalysis(ctx context.Context, dreamID string) (*models.AnalysisResult, error) {
	var out models.AnalysisResult
	err := c.do(ctx, request{method: http.MethodGet, path: "/dreams/" + url.PathEscape(dreamID) + "/analysis", auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SaveAnalysis(ctx context.Context, dreamID string, result models.AnalysisResult) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/dreams/" + url.PathEscape(dreamID) + "/analysis", body: result, auth: true}, nil)
}

func (c *HTTPClient) TaskStatus(ctx context.Context, taskID string) (*models.AnalysisTask, error) {
	var out models.AnalysisTask
	if err := c.do(ctx, request{method: http.MethodGet, path: "/analysis/task/" + url.PathEscape(taskID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DailyInsights(ctx context.Context) (*models.DailyInsight, error) {
	var out models.DailyInsight
	if err := c.do(ctx, request{method: http.MethodGet, path: "/analysis/insights/daily", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Patterns(ctx context.Context, days int) (*models.ServerPatterns, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out models.ServerPatterns
	if err := c.do(ctx, request{method: http.MethodGet, path: "/analysis/patterns", query: q, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Network(ctx context.Context) (*models.DreamNetwork, error) {
	var out models.DreamNetwork
	if err := c.do(ctx, request{method: http.MethodGet, path: "/analysis/network", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
