package stores

import (
	"context"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
)

// Authenticator is the session API used by AuthStore.
type Authenticator interface {
	FirebaseAuth(ctx context.Context, firebaseToken string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, steps ...map[string]any) (*models.User, error)
	User(ctx context.Context) (*models.User, error)
	IsAuthenticated(ctx context.Context) bool
	Logout(ctx context.Context) error
}

type AuthState struct {
	User          *models.User
	Authenticated bool
}

type AuthStore struct {
	*Store[AuthState]
	auth   Authenticator
	logger logging.Logger
}

func NewAuthStore(auth Authenticator, logger logging.Logger) *AuthStore {
	return &AuthStore{Store: New(AuthState{}), auth: auth, logger: logger}
}

// Restore loads a previously saved session, if any.
func (s *AuthStore) Restore(ctx context.Context) error {
	_, err := Run(ctx, s.Store, "session", func(ctx context.Context) (*models.User, error) {
		if !s.auth.IsAuthenticated(ctx) {
			return nil, nil
		}
		return s.auth.User(ctx)
	}, func(st *AuthState, u *models.User) {
		st.User = u
		st.Authenticated = u != nil
	})
	return err
}

func (s *AuthStore) Login(ctx context.Context, firebaseToken string) (*models.User, error) {
	u, err := Run(ctx, s.Store, "session", func(ctx context.Context) (*models.User, error) {
		return s.auth.FirebaseAuth(ctx, firebaseToken)
	}, func(st *AuthState, u *models.User) {
		st.User = u
		st.Authenticated = true
	})
	if err != nil {
		s.logger.Error(ctx, "sign in failed", "error", err)
	}
	return u, err
}

func (s *AuthStore) CompleteOnboarding(ctx context.Context, steps ...map[string]any) (*models.User, error) {
	return Run(ctx, s.Store, "onboarding", func(ctx context.Context) (*models.User, error) {
		return s.auth.CompleteOnboarding(ctx, steps...)
	}, func(st *AuthState, u *models.User) {
		st.User = u
	})
}

func (s *AuthStore) Logout(ctx context.Context) error {
	return Exec(ctx, s.Store, "session", s.auth.Logout, func(st *AuthState) {
		*st = AuthState{}
	})
}
