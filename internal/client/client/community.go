package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

func (c *HTTPClient) CreatePost(ctx context.Context, req models.ShareRequest) (*models.CommunityPost, error) {
	var out models.CommunityPost
	if err := c.do(ctx, request{method: http.MethodPost, path: "/community/posts", body: req, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Posts(ctx context.Context, skip, limit int) (*models.PostList, error) {
	var out models.PostList
	if err := c.do(ctx, request{method: http.MethodGet, path: "/community/posts", query: pageQuery(skip, limit), auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
