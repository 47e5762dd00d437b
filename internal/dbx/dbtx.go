// Package dbx holds the small database abstractions shared by the local
// repositories: a DBTX interface satisfied by both *sql.DB and *sql.Tx,
// transaction helpers and a single-writer gate for SQLite.
package dbx

import (
	"context"
	"database/sql"
	"sync"
)

// DBTX is the subset of database/sql used by repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner is implemented by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic; panics are rethrown after rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// Writer serializes write transactions against one database. SQLite allows a
// single writer at a time; funnelling writes through one mutex keeps
// read-modify-write sequences from interleaving.
type Writer struct {
	mu sync.Mutex
	db TxBeginner
}

func NewWriter(db TxBeginner) *Writer {
	return &Writer{db: db}
}

// Do runs fn in a transaction while holding the write lock.
func (w *Writer) Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return WithTx(ctx, w.db, nil, fn)
}
