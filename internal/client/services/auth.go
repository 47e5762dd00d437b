package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/dbx"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService signs the user in through the backend's Firebase exchange
// and keeps the session in the metadata table. It is the token source of
// the API client.
type AuthService struct {
	api    client.Client
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *models.User
}

func NewAuthService(api client.Client, db *sql.DB, logger logging.Logger) *AuthService {
	return &AuthService{api: api, db: db, logger: logger, now: time.Now}
}

func (a *AuthService) metadataRepo(q dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(q)
}

// FirebaseAuth exchanges a Firebase ID token for a backend session.
func (a *AuthService) FirebaseAuth(ctx context.Context, firebaseToken string) (*models.User, error) {
	if firebaseToken == "" {
		return nil, fmt.Errorf("%w: firebase token is empty", common.ErrValidation)
	}

	tok, err := a.api.FirebaseAuth(ctx, firebaseToken)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.metadataRepo(tx)
		if err := repo.Set(ctx, common.MetadataKeyAuthToken, []byte(tok.AccessToken)); err != nil {
			return err
		}
		return metadata.SetJSON(ctx, repo, common.MetadataKeyUserData, tok.User)
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	user := tok.User
	a.mu.Lock()
	a.token = tok.AccessToken
	a.user = &user
	a.mu.Unlock()

	a.logger.Info(ctx, "signed in", "user_id", user.ID)
	return &user, nil
}

// CompleteOnboarding merges the step payloads, later steps winning on
// duplicate keys, and submits them.
func (a *AuthService) CompleteOnboarding(ctx context.Context, steps ...map[string]any) (*models.User, error) {
	merged := map[string]any{}
	for _, s := range steps {
		maps.Copy(merged, s)
	}

	user, err := a.api.CompleteOnboarding(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}

	if err := metadata.SetJSON(ctx, a.metadataRepo(a.db), common.MetadataKeyUserData, user); err != nil {
		a.logger.Warn(ctx, "cache user profile", "error", err)
	}
	a.mu.Lock()
	a.user = user
	a.mu.Unlock()
	return user, nil
}

// Token returns the stored access token. An expired JWT yields
// common.ErrTokenExpired; no session yields common.ErrNotAuthenticated.
func (a *AuthService) Token(ctx context.Context) (string, error) {
	a.mu.RLock()
	tok := a.token
	a.mu.RUnlock()

	if tok == "" {
		raw, err := a.metadataRepo(a.db).Get(ctx, common.MetadataKeyAuthToken)
		if err != nil {
			return "", fmt.Errorf("load token: %w", err)
		}
		if len(raw) == 0 {
			return "", common.ErrNotAuthenticated
		}
		tok = string(raw)
		a.mu.Lock()
		a.token = tok
		a.mu.Unlock()
	}

	if err := checkExpiry(tok, a.now()); err != nil {
		return "", err
	}
	return tok, nil
}

// checkExpiry reads the exp claim without verifying the signature; the
// client does not hold the signing key.
func checkExpiry(token string, now time.Time) error {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return common.ErrTokenExpired
	}
	return nil
}

// User returns the cached profile of the signed-in user.
func (a *AuthService) User(ctx context.Context) (*models.User, error) {
	a.mu.RLock()
	u := a.user
	a.mu.RUnlock()
	if u != nil {
		cp := *u
		return &cp, nil
	}

	var user models.User
	ok, err := metadata.GetJSON(ctx, a.metadataRepo(a.db), common.MetadataKeyUserData, &user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNotAuthenticated
	}

	a.mu.Lock()
	a.user = &user
	a.mu.Unlock()
	cp := user
	return &cp, nil
}

func (a *AuthService) IsAuthenticated(ctx context.Context) bool {
	_, err := a.Token(ctx)
	return err == nil
}

// Ping proxies a liveness check to the underlying client.
func (a *AuthService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}

// Logout forgets the session in memory and on disk.
func (a *AuthService) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.token = ""
	a.user = nil
	a.mu.Unlock()

	err := a.metadataRepo(a.db).Delete(ctx, common.MetadataKeyAuthToken, common.MetadataKeyUserData)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
