package dreams

import (
	"context"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

type Repository interface {
	// Upsert inserts d or replaces the stored record with the same id.
	Upsert(ctx context.Context, d *models.Dream) error

	// Get returns common.ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (*models.Dream, error)

	// List returns all records, newest dream date first.
	List(ctx context.Context) ([]models.Dream, error)

	// ListByStatus returns records whose sync status is one of statuses.
	ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]models.Dream, error)

	// CountByStatus counts the records ListByStatus would return.
	CountByStatus(ctx context.Context, statuses ...models.SyncStatus) (int, error)

	// Delete is idempotent.
	Delete(ctx context.Context, id string) error

	Clear(ctx context.Context) error
}
