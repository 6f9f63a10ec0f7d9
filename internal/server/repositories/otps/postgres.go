package otps

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, email string, purpose models.OTPPurpose) error {
	query := `DELETE FROM one_time_codes WHERE email = $1 AND purpose = $2`
	if _, err := r.db.ExecContext(ctx, query, email, string(purpose)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, code *models.OneTimeCode) error {
	query :=
		`INSERT INTO one_time_codes (id, email, code, purpose, expires_at, is_used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		code.ID, code.Email, code.Code, string(code.Purpose), code.ExpiresAt, code.IsUsed, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, email string, purpose models.OTPPurpose, now time.Time) (*models.OneTimeCode, error) {
	query :=
		`SELECT id, email, code, purpose, expires_at, is_used, created_at
		 FROM one_time_codes
		 WHERE email = $1 AND purpose = $2 AND is_used = FALSE AND expires_at > $3
		 ORDER BY created_at DESC
		 LIMIT 1`

	code := &models.OneTimeCode{}
	var purposeStr string
	err := r.db.QueryRowContext(ctx, query, email, string(purpose), now).Scan(
		&code.ID, &code.Email, &code.Code, &purposeStr, &code.ExpiresAt, &code.IsUsed, &code.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	code.Purpose = models.OTPPurpose(purposeStr)
	return code, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE one_time_codes SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`
	if _, err := dbx.ExecAffected(ctx, r.db, query, id); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM one_time_codes WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
