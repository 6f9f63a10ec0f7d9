package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

func errInvalidRefreshToken() error {
	return common.NewError(common.ErrorInvalidRefreshToken, "invalid refresh token")
}

// issueTokenPair signs a new access/refresh pair and stores the refresh
// record before handing the pair out.
func (s *IdentityService) issueTokenPair(ctx context.Context, r repomanager.Repositories, user *models.User) (*TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, s.internal(ctx, "sign access token", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, s.internal(ctx, "sign refresh token", err)
	}

	err = r.RefreshTokens().Create(ctx, &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refresh,
		Type:      models.TokenTypeRefresh,
		ExpiresAt: refreshExp,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return nil, s.internal(ctx, "store refresh token", err)
	}

	return &TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// activeRefreshToken returns the usable stored record for token. Every reason
// for refusal maps to InvalidRefreshToken, the concrete one is logged.
func (s *IdentityService) activeRefreshToken(ctx context.Context, r repomanager.Repositories, token string) (*models.RefreshToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errInvalidRefreshToken()
	}

	rec, err := r.RefreshTokens().FindActive(ctx, token, s.clock.Now())
	if err == nil {
		return rec, nil
	}
	if !isNotFound(err) {
		return nil, s.internal(ctx, "find refresh token", err)
	}

	reason := "unknown"
	if stored, ferr := r.RefreshTokens().Find(ctx, token); ferr == nil {
		switch {
		case stored.Blacklisted:
			reason = "blacklisted"
		case stored.Type != models.TokenTypeRefresh:
			reason = "wrong type"
		default:
			reason = "expired"
		}
	}
	s.logger.Debug(ctx, "refresh token rejected", "reason", reason)
	return nil, errInvalidRefreshToken()
}

// Refresh rotates a refresh token: the presented token is blacklisted and a
// new pair is issued. Of two concurrent calls with the same token only one
// succeeds.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer s.observe(opRefresh, &err)

	if _, err := s.tokens.ParseRefreshToken(strings.TrimSpace(refreshToken)); err != nil {
		s.logger.Debug(ctx, "refresh token rejected", "reason", err.Error())
		return nil, errInvalidRefreshToken()
	}

	err = s.repos.Atomic(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		rec, err := s.activeRefreshToken(ctx, r, refreshToken)
		if err != nil {
			return err
		}

		user, err := r.Users().FindByID(ctx, rec.UserID)
		if err != nil {
			if isNotFound(err) {
				return errInvalidRefreshToken()
			}
			return s.internal(ctx, "find user by id", err)
		}

		if err := r.RefreshTokens().Blacklist(ctx, rec.ID); err != nil {
			if isNotFound(err) {
				return errInvalidRefreshToken()
			}
			return s.internal(ctx, "blacklist refresh token", err)
		}

		pair, err = s.issueTokenPair(ctx, r, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout blacklists a stored refresh token. A repeated logout fails.
func (s *IdentityService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer s.observe(opLogout, &err)

	rec, err := s.activeRefreshToken(ctx, s.repos, refreshToken)
	if err != nil {
		return err
	}
	if err := s.repos.RefreshTokens().Blacklist(ctx, rec.ID); err != nil {
		if isNotFound(err) {
			return errInvalidRefreshToken()
		}
		return s.internal(ctx, "blacklist refresh token", err)
	}

	s.logger.Info(ctx, "user logged out", "user_id", rec.UserID)
	return nil
}

// Authenticate resolves an access token to its user id.
func (s *IdentityService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	accessToken = strings.TrimSpace(strings.TrimPrefix(accessToken, common.BearerPrefix))
	if accessToken == "" {
		return "", common.NewError(common.ErrorUnauthorized, "missing access token")
	}
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		if err == common.ErrTokenExpired {
			return "", common.NewError(common.ErrorUnauthorized, "access token expired")
		}
		return "", common.NewError(common.ErrorUnauthorized, "invalid access token")
	}
	return claims.UserID, nil
}
