package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

type forgotInput struct {
	Email string `json:"email" validate:"required,email"`
}

type resetInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// RequestPasswordReset mails a password reset code. Unknown emails succeed
// silently so the endpoint cannot be used to enumerate accounts.
func (s *IdentityService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer s.observe(opRequestPasswordReset, &err)

	in := forgotInput{Email: normalizeEmail(email)}
	if err := s.check(in); err != nil {
		return err
	}

	if err := s.allowCode(ctx, in.Email, models.PurposePasswordReset); err != nil {
		return err
	}

	if _, err := s.repos.Users().FindByEmail(ctx, in.Email); err != nil {
		if isNotFound(err) {
			s.logger.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return s.internal(ctx, "find user by email", err)
	}

	if _, err := s.issueCode(ctx, in.Email, models.PurposePasswordReset); err != nil && !errors.Is(err, errDispatch) {
		return err
	}
	return nil
}

// ResetPassword consumes a reset code, stores the new password and revokes
// every refresh token of the user.
func (s *IdentityService) ResetPassword(ctx context.Context, email, code, newPassword string) (err error) {
	defer s.observe(opResetPassword, &err)

	in := resetInput{Email: normalizeEmail(email), Code: strings.TrimSpace(code), NewPassword: newPassword}
	if err := s.check(in); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}

	var revoked int64
	err = s.repos.Atomic(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		otp, err := s.findCode(ctx, r, in.Email, models.PurposePasswordReset, in.Code)
		if err != nil {
			return err
		}

		user, err := r.Users().FindByEmail(ctx, in.Email)
		if err != nil {
			if isNotFound(err) {
				return errInvalidCode()
			}
			return s.internal(ctx, "find user by email", err)
		}

		if err := s.consumeCode(ctx, r, otp); err != nil {
			return err
		}

		user.PasswordHash = hash
		user.UpdatedAt = s.clock.Now()
		if err := r.Users().Update(ctx, user); err != nil {
			return s.internal(ctx, "update password", err)
		}

		revoked, err = r.RefreshTokens().BlacklistAllForUser(ctx, user.ID)
		if err != nil {
			return s.internal(ctx, "revoke refresh tokens", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "revoked_tokens", revoked)
	return nil
}

