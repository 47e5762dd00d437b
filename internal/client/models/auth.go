package models

import "time"

type User struct {
	ID                     string         `json:"id"`
	Email                  string         `json:"email,omitempty"`
	Name                   string         `json:"name,omitempty"`
	AuthProvider           string         `json:"auth_provider"`
	SubscriptionPlan       Plan           `json:"subscription_plan"`
	SubscriptionExpiresAt  *time.Time     `json:"subscription_expires_at,omitempty"`
	NotificationSettings   map[string]any `json:"notification_settings,omitempty"`
	HasCompletedOnboarding bool           `json:"hasCompletedOnboarding,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// AuthToken is the response of a successful sign-in.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}
