package syncstatus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Set(ctx context.Context, dreamID string, state models.SyncState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_status (dream_id, status, error, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(dream_id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		dreamID, string(state.Status), state.Error, state.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set sync status[%s]: %w", dreamID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, dreamID string) (*models.SyncState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT status, error, updated_at FROM sync_status WHERE dream_id = ?`, dreamID)

	state, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status[%s]: %w", dreamID, err)
	}
	return state, nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string]models.SyncState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dream_id, status, error, updated_at FROM sync_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync statuses: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.SyncState)
	for rows.Next() {
		var (
			id    string
			state models.SyncState
			ts    string
		)
		if err := rows.Scan(&id, &state.Status, &state.Error, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan sync status row: %w", err)
		}
		state.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		result[id] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync status rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, dreamID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_status WHERE dream_id = ?`, dreamID); err != nil {
		return fmt.Errorf("failed to delete sync status[%s]: %w", dreamID, err)
	}
	return nil
}

func (r *SQLiteRepository) PruneOrphans(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sync_status WHERE dream_id NOT IN (SELECT id FROM dreams_local)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sync statuses: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *SQLiteRepository) Reset(ctx context.Context, from, to models.SyncStatus) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_status SET status = ?, error = '', updated_at = ? WHERE status = ?`,
		string(to), time.Now().UTC().Format(time.RFC3339Nano), string(from))
	if err != nil {
		return 0, fmt.Errorf("failed to reset sync statuses[%s]: %w", from, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_status`); err != nil {
		return fmt.Errorf("failed to clear sync statuses: %w", err)
	}
	return nil
}

func scanState(row *sql.Row) (*models.SyncState, error) {
	var (
		state models.SyncState
		ts    string
	)
	if err := row.Scan(&state.Status, &state.Error, &ts); err != nil {
		return nil, err
	}
	state.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	return &state, nil
}
