// Package refreshtokens provides a PostgreSQL-backed repository for managing
// refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements the refresh token store over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectToken = `SELECT id, user_id, token, type, expires_at, blacklisted, created_at FROM refresh_tokens`

// Create inserts a new refresh token row.
func (r *PostgresRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, type, expires_at, blacklisted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.Token, t.Type, t.ExpiresAt, t.Blacklisted, t.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// Find returns the refresh token row for the given token string.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.scanOne(ctx, selectToken+` WHERE token = $1`, token)
}

// FindActive returns the row only while it can still be used at now.
func (r *PostgresRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error) {
	return r.scanOne(ctx,
		selectToken+` WHERE token = $1 AND type = $2 AND blacklisted = FALSE AND expires_at > $3`,
		token, models.TokenTypeRefresh, now)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.UserID, &t.Token, &t.Type, &t.ExpiresAt, &t.Blacklisted, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Blacklist sets blacklisted only when it is currently false.
func (r *PostgresRepository) Blacklist(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET blacklisted = TRUE WHERE id = $1 AND blacklisted = FALSE`
	if _, err := dbx.ExecAffected(ctx, r.db, query, id); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) BlacklistAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `UPDATE refresh_tokens SET blacklisted = TRUE WHERE user_id = $1 AND blacklisted = FALSE`
	return r.execCount(ctx, query, userID)
}

// DeleteExpired removes rows whose expiry is at or before the given time.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return r.execCount(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, before)
}

func (r *PostgresRepository) execCount(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
