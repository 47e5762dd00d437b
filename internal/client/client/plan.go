package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

func (c *HTTPClient) UserPlan(ctx context.Context) (*models.UserPlan, error) {
	var out models.UserPlan
	if err := c.do(ctx, request{method: http.MethodGet, path: "/user/plan", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateUsage(ctx context.Context, u models.UsageUpdate) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/user/usage", body: u, auth: true}, nil)
}
