package stores

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
)

// DreamManager is the local-first dream API used by DreamStore.
type DreamManager interface {
	CreateDream(ctx context.Context, in models.DreamInput) (*models.Dream, error)
	GetDream(ctx context.Context, id string) (*models.Dream, error)
	GetDreams(ctx context.Context) ([]models.Dream, error)
	UpdateDream(ctx context.Context, id string, patch models.DreamPatch) (*models.Dream, error)
	DeleteDream(ctx context.Context, id string) error
	SyncPendingData(ctx context.Context) (models.SyncReport, error)
	PendingCount(ctx context.Context) (int, error)
	Subscribe() (<-chan models.SyncEvent, func())
}

type DreamState struct {
	Dreams   []models.Dream
	Current  *models.Dream
	Pending  int
	LastSync *models.SyncReport
}

type DreamStore struct {
	*Store[DreamState]
	manager DreamManager
	logger  logging.Logger
	creates atomic.Uint64
}

func NewDreamStore(manager DreamManager, logger logging.Logger) *DreamStore {
	return &DreamStore{
		Store:   New(DreamState{Dreams: []models.Dream{}}),
		manager: manager,
		logger:  logger,
	}
}

func (s *DreamStore) Load(ctx context.Context) error {
	_, err := Run(ctx, s.Store, "list", s.manager.GetDreams, func(st *DreamState, list []models.Dream) {
		st.Dreams = list
	})
	return err
}

// Select loads one dream as Current; a missing dream clears it.
func (s *DreamStore) Select(ctx context.Context, id string) (*models.Dream, error) {
	return Run(ctx, s.Store, "current", func(ctx context.Context) (*models.Dream, error) {
		return s.manager.GetDream(ctx, id)
	}, func(st *DreamState, d *models.Dream) {
		st.Current = d
	})
}

func (s *DreamStore) Create(ctx context.Context, in models.DreamInput) (*models.Dream, error) {
	key := fmt.Sprintf("create#%d", s.creates.Add(1))
	d, err := Run(ctx, s.Store, key, func(ctx context.Context) (*models.Dream, error) {
		return s.manager.CreateDream(ctx, in)
	}, func(st *DreamState, d *models.Dream) {
		st.Dreams = upsert(st.Dreams, *d)
	})
	if err != nil {
		s.logger.Error(ctx, "create dream", "error", err)
	}
	return d, err
}

func (s *DreamStore) Update(ctx context.Context, id string, patch models.DreamPatch) (*models.Dream, error) {
	d, err := Run(ctx, s.Store, "dream:"+id, func(ctx context.Context) (*models.Dream, error) {
		return s.manager.UpdateDream(ctx, id, patch)
	}, func(st *DreamState, d *models.Dream) {
		st.Dreams = upsert(st.Dreams, *d)
		if st.Current != nil && st.Current.ID == d.ID {
			st.Current = d
		}
	})
	if err != nil {
		s.logger.Error(ctx, "update dream", "dream_id", id, "error", err)
	}
	return d, err
}

func (s *DreamStore) Delete(ctx context.Context, id string) error {
	err := Exec(ctx, s.Store, "dream:"+id, func(ctx context.Context) error {
		return s.manager.DeleteDream(ctx, id)
	}, func(st *DreamState) {
		st.Dreams = remove(st.Dreams, id)
		if st.Current != nil && st.Current.ID == id {
			st.Current = nil
		}
	})
	if err != nil {
		s.logger.Error(ctx, "delete dream", "dream_id", id, "error", err)
	}
	return err
}

// Sync pushes pending dreams and reloads the list from the local store.
func (s *DreamStore) Sync(ctx context.Context) (models.SyncReport, error) {
	type result struct {
		report models.SyncReport
		dreams []models.Dream
	}
	r, err := Run(ctx, s.Store, "sync", func(ctx context.Context) (result, error) {
		report, err := s.manager.SyncPendingData(ctx)
		if err != nil {
			return result{report: report}, err
		}
		list, err := s.manager.GetDreams(ctx)
		return result{report: report, dreams: list}, err
	}, func(st *DreamState, r result) {
		st.LastSync = &r.report
		st.Dreams = r.dreams
	})
	return r.report, err
}

func (s *DreamStore) RefreshPending(ctx context.Context) (int, error) {
	return Run(ctx, s.Store, "pending", s.manager.PendingCount, func(st *DreamState, n int) {
		st.Pending = n
	})
}

// Watch applies sync events from the manager until ctx ends. Dream flags
// and the pending count follow every status write.
func (s *DreamStore) Watch(ctx context.Context) {
	events, cancel := s.manager.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.apply(ev)
		}
	}
}

func (s *DreamStore) apply(ev models.SyncEvent) {
	s.Store.Update(func(st *DreamState) {
		st.Pending = ev.Pending
		if ev.DreamID == "" {
			return
		}
		if ev.Status == "" {
			st.Dreams = remove(st.Dreams, ev.DreamID)
			return
		}
		i := slices.IndexFunc(st.Dreams, func(d models.Dream) bool { return d.ID == ev.DreamID })
		if i < 0 {
			return
		}
		st.Dreams = slices.Clone(st.Dreams)
		st.Dreams[i].IsSynced = ev.Status == models.SyncSynced
		st.Dreams[i].SyncError = ev.Error
	})
}

// upsert replaces d in list or prepends it, returning a new slice.
func upsert(list []models.Dream, d models.Dream) []models.Dream {
	out := make([]models.Dream, 0, len(list)+1)
	found := false
	for _, x := range list {
		if x.ID == d.ID {
			out = append(out, d)
			found = true
			continue
		}
		out = append(out, x)
	}
	if !found {
		out = append([]models.Dream{d}, out...)
	}
	return out
}

func remove(list []models.Dream, id string) []models.Dream {
	return slices.DeleteFunc(slices.Clone(list), func(d models.Dream) bool { return d.ID == id })
}
