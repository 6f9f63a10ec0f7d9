package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRepository runs the behaviour every backend must share.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	alice := &models.User{ID: "u-1", Email: "a@x.com", Username: "alice", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	bob := &models.User{ID: "u-2", Email: "b@x.com", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}

	_, err := repo.Create(ctx, alice)
	require.NoError(t, err)
	_, err = repo.Create(ctx, bob)
	require.NoError(t, err, "empty usernames do not clash")

	_, err = repo.Create(ctx, &models.User{ID: "u-3", Email: "a@x.com", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	_, err = repo.Create(ctx, &models.User{ID: "u-4", Email: "c@x.com", Username: "alice", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	got, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = repo.FindByUsername(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	bob.Username = "alice"
	assert.ErrorIs(t, repo.Update(ctx, bob), common.ErrorAlreadyExists)

	bob.Username = "bobby"
	bob.Name = "Bob"
	bob.IsEmailVerified = true
	require.NoError(t, repo.Update(ctx, bob))

	got, err = repo.FindByID(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, "bobby", got.Username)
	assert.Equal(t, "Bob", got.Name)
	assert.True(t, got.IsEmailVerified)

	assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: "ghost", Email: "g@x.com"}), common.ErrorNotFound)
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, &models.User{ID: "u-1", Email: "a@x.com"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	got.IsEmailVerified = true

	again, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, again.IsEmailVerified)
}

func TestMemoryRepository_UpdateKeepsEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, &models.User{ID: "u-1", Email: "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, &models.User{ID: "u-1", Email: "evil@x.com", Name: "N"}))

	got, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "N", got.Name)
}
