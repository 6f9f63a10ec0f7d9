package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const selectUser = `SELECT id, email, COALESCE(username, ''), name, mobile_number, password_hash,
		is_email_verified, is_mobile_verified, created_at, updated_at
		FROM users`

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, email, username, name, mobile_number, password_hash,
			is_email_verified, is_mobile_verified, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.Name, user.MobileNumber, user.PasswordHash,
		user.IsEmailVerified, user.IsMobileVerified, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE username = $1`, username)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.Name, &user.MobileNumber, &user.PasswordHash,
		&user.IsEmailVerified, &user.IsMobileVerified, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Update overwrites the mutable columns. Email and created_at never change.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {

	query :=
		`UPDATE users SET username = NULLIF($2, ''), name = $3, mobile_number = $4, password_hash = $5,
			is_email_verified = $6, is_mobile_verified = $7, updated_at = $8
		 WHERE id = $1`

	_, err := dbx.ExecAffected(ctx, r.db, query,
		user.ID, user.Username, user.Name, user.MobileNumber, user.PasswordHash,
		user.IsEmailVerified, user.IsMobileVerified, user.UpdatedAt)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, dbx.ErrNoRowsAffected):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
