package otps

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestDeleteMany(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+one_time_codes\s+WHERE\s+email\s*=\s*\$1\s+AND\s+purpose\s*=\s*\$2$`).
		WithArgs("a@x.com", "verification").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteMany(context.Background(), "a@x.com", models.PurposeVerification))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	code := &models.OneTimeCode{
		ID: "c1", Email: "a@x.com", Code: "123456", Purpose: models.PurposeVerification,
		ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now,
	}
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+one_time_codes\b.*VALUES\s*\(\$1,.*\$7\)$`).
		WithArgs("c1", "a@x.com", "123456", "verification", code.ExpiresAt, false, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), code))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^INSERT`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.OneTimeCode{ID: "c1"})
	assert.ErrorContains(t, err, "db error: db down")
}

func TestFindActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^SELECT\s+id,.*FROM\s+one_time_codes\s+WHERE\s+email\s*=\s*\$1\s+AND\s+purpose\s*=\s*\$2\s+AND\s+is_used\s*=\s*FALSE\s+AND\s+expires_at\s*>\s*\$3\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+1$`
	rows := sqlmock.NewRows([]string{"id", "email", "code", "purpose", "expires_at", "is_used", "created_at"}).
		AddRow("c2", "a@x.com", "654321", "verification", now.Add(time.Minute), false, now)
	mock.ExpectQuery(q).WithArgs("a@x.com", "verification", now).WillReturnRows(rows)

	got, err := repo.FindActive(context.Background(), "a@x.com", models.PurposeVerification, now)
	require.NoError(t, err)
	assert.Equal(t, "c2", got.ID)
	assert.Equal(t, "654321", got.Code)
	assert.Equal(t, models.PurposeVerification, got.Purpose)
}

func TestFindActive_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT`).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActive(context.Background(), "a@x.com", models.PurposeVerification, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMarkUsed(t *testing.T) {
	q := `^UPDATE\s+one_time_codes\s+SET\s+is_used\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s+AND\s+is_used\s*=\s*FALSE$`

	t.Run("first use", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.MarkUsed(context.Background(), "c1"))
	})

	t.Run("already used", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.MarkUsed(context.Background(), "c1"), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("c1").WillReturnError(errors.New("boom"))
		assert.ErrorContains(t, repo.MarkUsed(context.Background(), "c1"), "db error: boom")
	})
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`^DELETE\s+FROM\s+one_time_codes\s+WHERE\s+expires_at\s*<=\s*\$1$`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
