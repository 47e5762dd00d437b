package dreams

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectDreams = `
	SELECT d.payload, COALESCE(s.status, ''), COALESCE(s.error, '')
	FROM dreams_local d
	LEFT JOIN sync_status s ON s.dream_id = d.id`

const orderDreams = ` ORDER BY d.dream_date DESC, d.created_at DESC, d.id DESC`

func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.Dream) error {
	payload, err := encode(d)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dreams_local (id, user_id, dream_date, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			dream_date = excluded.dream_date,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		d.ID, d.UserID, d.DreamDate, payload, formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert dream %s: %w", d.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Dream, error) {
	row := r.db.QueryRowContext(ctx, selectDreams+` WHERE d.id = ?`, id)

	d, err := scanDream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dream %s: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Dream, error) {
	return r.query(ctx, selectDreams+orderDreams)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]models.Dream, error) {
	if len(statuses) == 0 {
		return []models.Dream{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	return r.query(ctx, selectDreams+` WHERE s.status IN (`+placeholders+`)`+orderDreams, args...)
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, statuses ...models.SyncStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM dreams_local d
		JOIN sync_status s ON s.dream_id = d.id
		WHERE s.status IN (`+placeholders+`)`, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count dreams by status: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dreams_local WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete dream %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dreams_local`); err != nil {
		return fmt.Errorf("failed to clear dreams: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.Dream, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select dreams: %w", err)
	}
	defer rows.Close()

	result := []models.Dream{}
	for rows.Next() {
		d, err := scanDream(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read dream row: %w", err)
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dream rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDream(s scanner) (*models.Dream, error) {
	var (
		payload []byte
		status  string
		syncErr string
	)
	if err := s.Scan(&payload, &status, &syncErr); err != nil {
		return nil, err
	}

	var d models.Dream
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	d.IsSynced = models.SyncStatus(status) == models.SyncSynced
	d.SyncError = syncErr
	return &d, nil
}

func encode(d *models.Dream) ([]byte, error) {
	stored := *d
	stored.IsSynced = false
	stored.SyncError = ""
	b, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode dream %s: %w", d.ID, err)
	}
	return b, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
