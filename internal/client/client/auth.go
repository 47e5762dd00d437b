package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

func (c *HTTPClient) FirebaseAuth(ctx context.Context, firebaseToken string) (*models.AuthToken, error) {
	var out models.AuthToken
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/firebase-auth",
		body:   map[string]string{"firebase_token": firebaseToken},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CompleteOnboarding(ctx context.Context, payload map[string]any) (*models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/onboarding/complete",
		body:   payload,
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
