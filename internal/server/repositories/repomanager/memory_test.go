package repomanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryManager(t *testing.T) {
	var m RepositoryManager = NewMemoryRepositoryManager()
	ctx := context.Background()

	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	err := m.Atomic(ctx, func(ctx context.Context, repos Repositories) error {
		_, err := repos.Users().Create(ctx, &models.User{ID: "u1", Email: "a@x.com"})
		return err
	})
	require.NoError(t, err)

	u, err := m.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.Atomic(ctx, func(ctx context.Context, repos Repositories) error { return boom }), boom)
	assert.NoError(t, m.Close(ctx))
}

func TestMemoryRepositoryManager_AtomicRollsBack(t *testing.T) {
	m := NewMemoryRepositoryManager()
	ctx := context.Background()
	now := time.Now()

	_, err := m.Users().Create(ctx, &models.User{ID: "u1", Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, m.OneTimeCodes().Create(ctx, &models.OneTimeCode{
		ID: "c1", Email: "a@x.com", Code: "123456", Purpose: models.PurposeVerification, ExpiresAt: now.Add(time.Minute),
	}))
	require.NoError(t, m.RefreshTokens().Create(ctx, &models.RefreshToken{
		ID: "t1", UserID: "u1", Token: "tok", Type: models.TokenTypeRefresh, ExpiresAt: now.Add(time.Hour),
	}))

	boom := errors.New("boom")
	err = m.Atomic(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.OneTimeCodes().MarkUsed(ctx, "c1"); err != nil {
			return err
		}
		if err := repos.RefreshTokens().Blacklist(ctx, "t1"); err != nil {
			return err
		}
		if _, err := repos.Users().Create(ctx, &models.User{ID: "u2", Email: "b@x.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = m.OneTimeCodes().FindActive(ctx, "a@x.com", models.PurposeVerification, now)
	assert.NoError(t, err, "code must be unused again")

	_, err = m.RefreshTokens().FindActive(ctx, "tok", now)
	assert.NoError(t, err, "token must not stay blacklisted")

	_, err = m.Users().FindByID(ctx, "u2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
