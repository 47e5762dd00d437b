package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/client/repositories/dreams"
	"github.com/dmitrijs2005/dreamtracer/internal/client/repositories/syncstatus"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/dbx"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
)

// LocalStorageService is the on-device dream store. Reads fail soft: a
// broken row or a storage error yields an empty result and a log line.
// Writes are serialized and run in one transaction each.
type LocalStorageService struct {
	db     *sql.DB
	writer *dbx.Writer
	events *Broadcaster
	logger logging.Logger
	now    func() time.Time
}

type LocalOption func(*LocalStorageService)

// WithLocalClock overrides time.Now for status timestamps.
func WithLocalClock(now func() time.Time) LocalOption {
	return func(s *LocalStorageService) { s.now = now }
}

func NewLocalStorageService(db *sql.DB, logger logging.Logger, opts ...LocalOption) *LocalStorageService {
	s := &LocalStorageService{
		db:     db,
		writer: dbx.NewWriter(db),
		events: NewBroadcaster(),
		logger: logger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *LocalStorageService) dreamRepo(q dbx.DBTX) dreams.Repository {
	return dreams.NewSQLiteRepository(q)
}

func (s *LocalStorageService) statusRepo(q dbx.DBTX) syncstatus.Repository {
	return syncstatus.NewSQLiteRepository(q)
}

// Subscribe returns a channel of sync state changes.
func (s *LocalStorageService) Subscribe() (<-chan models.SyncEvent, func()) {
	return s.events.Subscribe()
}

func (s *LocalStorageService) publish(ctx context.Context, id string, status models.SyncStatus, errMsg string) {
	pending, err := s.PendingCount(ctx)
	if err != nil {
		s.logger.Warn(ctx, "count pending dreams", "error", err)
	}
	ev := models.SyncEvent{DreamID: id, Status: status, Error: errMsg, Pending: pending}
	if dropped := s.events.Publish(ev); dropped > 0 {
		s.logger.Warn(ctx, "sync event dropped for slow subscribers", "dream_id", id, "dropped", dropped)
	}
}

// SaveDreamLocally upserts d and marks it pending in one transaction.
func (s *LocalStorageService) SaveDreamLocally(ctx context.Context, d *models.Dream) error {
	if d.ID == "" {
		return fmt.Errorf("%w: dream id is empty", common.ErrValidation)
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.dreamRepo(tx).Upsert(ctx, d); err != nil {
			return err
		}
		return s.statusRepo(tx).Set(ctx, d.ID, models.SyncState{Status: models.SyncPending, UpdatedAt: s.now()})
	})
	if err != nil {
		return fmt.Errorf("save dream locally: %w", err)
	}

	d.IsSynced = false
	d.SyncError = ""
	s.publish(ctx, d.ID, models.SyncPending, "")
	return nil
}

// GetLocalDreams lists all dreams, newest first.
func (s *LocalStorageService) GetLocalDreams(ctx context.Context) []models.Dream {
	list, err := s.dreamRepo(s.db).List(ctx)
	if err != nil {
		s.logger.Warn(ctx, "read local dreams", "error", err)
		return []models.Dream{}
	}
	return list
}

// GetLocalDream returns nil when the dream is absent or unreadable.
func (s *LocalStorageService) GetLocalDream(ctx context.Context, id string) *models.Dream {
	d, err := s.dreamRepo(s.db).Get(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "read local dream", "dream_id", id, "error", err)
		}
		return nil
	}
	return d
}

// DeleteLocalDream removes the dream and its sync bookkeeping.
func (s *LocalStorageService) DeleteLocalDream(ctx context.Context, id string) error {
	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.dreamRepo(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.statusRepo(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete local dream: %w", err)
	}
	s.publish(ctx, id, "", "")
	return nil
}

func (s *LocalStorageService) UpdateSyncStatus(ctx context.Context, id string, status models.SyncStatus, errMsg string) error {
	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.statusRepo(tx).Set(ctx, id, models.SyncState{Status: status, Error: errMsg, UpdatedAt: s.now()})
	})
	if err != nil {
		return fmt.Errorf("update sync status: %w", err)
	}
	s.publish(ctx, id, status, errMsg)
	return nil
}

// FinishSync records the outcome of pushing snapshot. The write only lands
// while the stored record is still the one that was pushed and its row is
// still syncing; an edit saved in the meantime keeps the record pending.
// The returned bool reports whether the outcome was recorded.
func (s *LocalStorageService) FinishSync(ctx context.Context, snapshot models.Dream, status models.SyncStatus, errMsg string) (bool, error) {
	applied := false
	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		st, err := s.statusRepo(tx).Get(ctx, snapshot.ID)
		if err != nil {
			return err
		}
		if st == nil || st.Status != models.SyncSyncing {
			return nil
		}

		cur, err := s.dreamRepo(tx).Get(ctx, snapshot.ID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !cur.UpdatedAt.Equal(snapshot.UpdatedAt) {
			return nil
		}

		applied = true
		return s.statusRepo(tx).Set(ctx, snapshot.ID, models.SyncState{Status: status, Error: errMsg, UpdatedAt: s.now()})
	})
	if err != nil {
		return false, fmt.Errorf("finish sync: %w", err)
	}
	if applied {
		s.publish(ctx, snapshot.ID, status, errMsg)
	}
	return applied, nil
}

// RecoverInterruptedSyncs returns rows left in syncing by a process that
// stopped mid-request to pending so the next sync retries them.
func (s *LocalStorageService) RecoverInterruptedSyncs(ctx context.Context) (int, error) {
	var n int
	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = s.statusRepo(tx).Reset(ctx, models.SyncSyncing, models.SyncPending)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("recover interrupted syncs: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "interrupted syncs returned to pending", "count", n)
		s.publish(ctx, "", "", "")
	}
	return n, nil
}

func (s *LocalStorageService) GetSyncStatuses(ctx context.Context) (map[string]models.SyncState, error) {
	return s.statusRepo(s.db).List(ctx)
}

// GetPendingSyncDreams lists dreams whose last status is pending or failed.
func (s *LocalStorageService) GetPendingSyncDreams(ctx context.Context) []models.Dream {
	list, err := s.dreamRepo(s.db).ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	if err != nil {
		s.logger.Warn(ctx, "read pending dreams", "error", err)
		return []models.Dream{}
	}
	return list
}

func (s *LocalStorageService) PendingCount(ctx context.Context) (int, error) {
	return s.dreamRepo(s.db).CountByStatus(ctx, models.SyncPending, models.SyncFailed)
}

// ExportLocalData serializes every dream and status row.
func (s *LocalStorageService) ExportLocalData(ctx context.Context) ([]byte, error) {
	list, err := s.dreamRepo(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export dreams: %w", err)
	}
	statuses, err := s.GetSyncStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("export sync statuses: %w", err)
	}

	return json.Marshal(models.LocalExport{
		Dreams:       list,
		SyncStatuses: statuses,
		ExportDate:   s.now().UTC(),
		Version:      common.ExportFormatVersion,
	})
}

// ImportLocalData replaces local data with an export document. The dreams
// and syncStatuses sections are applied independently: a malformed section
// is logged and skipped while the other one is still imported.
func (s *LocalStorageService) ImportLocalData(ctx context.Context, data []byte) error {
	var doc struct {
		Dreams       json.RawMessage `json:"dreams"`
		SyncStatuses json.RawMessage `json:"syncStatuses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parse export: %v", common.ErrValidation, err)
	}

	var (
		list     []models.Dream
		statuses map[string]models.SyncState
		haveList bool
		haveMap  bool
	)
	if len(doc.Dreams) > 0 {
		if err := json.Unmarshal(doc.Dreams, &list); err != nil {
			s.logger.Warn(ctx, "skip malformed dreams section", "error", err)
		} else {
			haveList = true
		}
	}
	if len(doc.SyncStatuses) > 0 {
		if err := json.Unmarshal(doc.SyncStatuses, &statuses); err != nil {
			s.logger.Warn(ctx, "skip malformed syncStatuses section", "error", err)
		} else {
			haveMap = true
		}
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if haveList {
			repo := s.dreamRepo(tx)
			if err := repo.Clear(ctx); err != nil {
				return err
			}
			for i := range list {
				if list[i].ID == "" {
					continue
				}
				if err := repo.Upsert(ctx, &list[i]); err != nil {
					return err
				}
			}
		}
		if haveMap {
			repo := s.statusRepo(tx)
			if err := repo.Clear(ctx); err != nil {
				return err
			}
			for id, st := range statuses {
				if err := repo.Set(ctx, id, st); err != nil {
					return err
				}
			}
		}
		n, err := s.statusRepo(tx).PruneOrphans(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info(ctx, "dropped sync statuses without a dream", "count", n)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import local data: %w", err)
	}

	s.publish(ctx, "", "", "")
	return nil
}

// GetStorageUsage measures the serialized size of the local data.
func (s *LocalStorageService) GetStorageUsage(ctx context.Context) (models.StorageUsage, error) {
	list, err := s.dreamRepo(s.db).List(ctx)
	if err != nil {
		return models.StorageUsage{}, fmt.Errorf("storage usage: %w", err)
	}
	statuses, err := s.GetSyncStatuses(ctx)
	if err != nil {
		return models.StorageUsage{}, fmt.Errorf("storage usage: %w", err)
	}

	d, err := json.Marshal(list)
	if err != nil {
		return models.StorageUsage{}, err
	}
	st, err := json.Marshal(statuses)
	if err != nil {
		return models.StorageUsage{}, err
	}
	return models.StorageUsage{Dreams: len(d), SyncStatuses: len(st), Total: len(d) + len(st)}, nil
}

// ClearLocalData wipes all dreams and sync rows.
func (s *LocalStorageService) ClearLocalData(ctx context.Context) error {
	err := s.writer.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.dreamRepo(tx).Clear(ctx); err != nil {
			return err
		}
		return s.statusRepo(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	s.publish(ctx, "", "", "")
	return nil
}
