package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/cryptox"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/google/uuid"
)

// DataPort exports and imports the local store.
type DataPort interface {
	ExportData(ctx context.Context) ([]byte, error)
	ImportData(ctx context.Context, data []byte) error
}

// UserSource identifies the signed-in user; backups are filed per user.
type UserSource interface {
	User(ctx context.Context) (*models.User, error)
}

type Service struct {
	store  ObjectStore
	data   DataPort
	users  UserSource
	logger logging.Logger
	now    func() time.Time
}

func NewService(store ObjectStore, data DataPort, users UserSource, logger logging.Logger) *Service {
	return &Service{store: store, data: data, users: users, logger: logger, now: time.Now}
}

func (s *Service) prefix(ctx context.Context) (string, error) {
	u, err := s.users.User(ctx)
	if err != nil {
		return "", fmt.Errorf("backup owner: %w", err)
	}
	return "backups/" + u.ID + "/", nil
}

// Push seals the current export with passphrase, uploads it and returns
// its key.
func (s *Service) Push(ctx context.Context, passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("%w: passphrase is empty", common.ErrValidation)
	}
	prefix, err := s.prefix(ctx)
	if err != nil {
		return "", err
	}

	plain, err := s.data.ExportData(ctx)
	if err != nil {
		return "", err
	}
	sealed, err := cryptox.SealBackup(plain, []byte(passphrase))
	if err != nil {
		return "", fmt.Errorf("seal backup: %w", err)
	}

	key := fmt.Sprintf("%s%s/%s.bin", prefix, s.now().UTC().Format(models.DateLayout), uuid.New())
	if err := s.store.Put(ctx, key, sealed); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "backup pushed", "key", key, "bytes", len(sealed))
	return key, nil
}

// Pull downloads key, opens it with passphrase and replaces local data
// with its content. Keys of other users are rejected.
func (s *Service) Pull(ctx context.Context, key, passphrase string) error {
	prefix, err := s.prefix(ctx)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(key, prefix) {
		return fmt.Errorf("%w: backup %s belongs to another user", common.ErrValidation, key)
	}

	sealed, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	plain, err := cryptox.OpenBackup(sealed, []byte(passphrase))
	if err != nil {
		if errors.Is(err, cryptox.ErrWrongPassword) {
			return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
		}
		return err
	}

	if err := s.data.ImportData(ctx, plain); err != nil {
		return err
	}
	s.logger.Info(ctx, "backup restored", "key", key)
	return nil
}

// List returns the user's backup keys ordered by date.
func (s *Service) List(ctx context.Context) ([]string, error) {
	prefix, err := s.prefix(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, prefix)
}
