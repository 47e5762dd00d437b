// Package syncstatus stores the per-dream sync bookkeeping rows.
package syncstatus

import (
	"context"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

type Repository interface {
	Set(ctx context.Context, dreamID string, state models.SyncState) error
	// Get returns (nil, nil) when no row exists.
	Get(ctx context.Context, dreamID string) (*models.SyncState, error)
	List(ctx context.Context) (map[string]models.SyncState, error)
	Delete(ctx context.Context, dreamID string) error
	// PruneOrphans drops rows whose dream no longer exists locally.
	PruneOrphans(ctx context.Context) (int, error)
	// Reset moves every row in status from to status to and returns how many moved.
	Reset(ctx context.Context, from, to models.SyncStatus) (int, error)
	Clear(ctx context.Context) error
}
