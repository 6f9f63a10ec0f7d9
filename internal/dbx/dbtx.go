// Package dbx holds the small database/sql abstractions the SQL repositories
// share: DBTX, satisfied by both *sql.DB and *sql.Tx, a transaction helper and
// a guard for conditional updates.
package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoRowsAffected is returned by ExecAffected when the statement matched
// nothing. Repositories translate it into their own not-found error.
var ErrNoRowsAffected = errors.New("no rows affected")

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with the transactional handle and
// commits when fn succeeds. Errors and panics roll back; panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
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

	err = fn(ctx, tx)
	return err
}

// ExecAffected runs a write statement and reports ErrNoRowsAffected when it
// matched zero rows. Used for compare-and-set style updates such as
// "blacklist only if not yet blacklisted".
func ExecAffected(ctx context.Context, db DBTX, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNoRowsAffected
	}
	return n, nil
}
