package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

type verifyInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type resendInput struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthResult struct {
	User   *models.PublicUser `json:"user"`
	Tokens *TokenPair         `json:"tokens"`
}

// VerifyEmail consumes the verification code, marks the email verified and
// signs the user in.
func (s *IdentityService) VerifyEmail(ctx context.Context, email, code string) (res *AuthResult, err error) {
	defer s.observe(opVerifyEmail, &err)

	in := verifyInput{Email: normalizeEmail(email), Code: strings.TrimSpace(code)}
	if err := s.check(in); err != nil {
		return nil, err
	}

	err = s.repos.Atomic(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		otp, err := s.findCode(ctx, r, in.Email, models.PurposeVerification, in.Code)
		if err != nil {
			return err
		}

		user, err := r.Users().FindByEmail(ctx, in.Email)
		if err != nil {
			if isNotFound(err) {
				return common.NewError(common.ErrorNotFound, "user not found")
			}
			return s.internal(ctx, "find user by email", err)
		}

		if err := s.consumeCode(ctx, r, otp); err != nil {
			return err
		}

		if !user.IsEmailVerified {
			user.IsEmailVerified = true
			user.UpdatedAt = s.clock.Now()
			if err := r.Users().Update(ctx, user); err != nil {
				return s.internal(ctx, "mark email verified", err)
			}
		}

		pair, err := s.issueTokenPair(ctx, r, user)
		if err != nil {
			return err
		}
		res = &AuthResult{User: user.Public(), Tokens: pair}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "email verified", "user_id", res.User.ID)
	return res, nil
}

// ResendVerification replaces the pending verification code of an unverified
// user. Mail failures are logged only.
func (s *IdentityService) ResendVerification(ctx context.Context, email string) (err error) {
	defer s.observe(opResendVerification, &err)

	in := resendInput{Email: normalizeEmail(email)}
	if err := s.check(in); err != nil {
		return err
	}

	user, err := s.repos.Users().FindByEmail(ctx, in.Email)
	if err != nil {
		if isNotFound(err) {
			return common.NewError(common.ErrorNotFound, "user not found")
		}
		return s.internal(ctx, "find user by email", err)
	}
	if user.IsEmailVerified {
		return common.NewError(common.ErrorAlreadyVerified, "email is already verified")
	}

	if err := s.allowCode(ctx, user.Email, models.PurposeVerification); err != nil {
		return err
	}
	if _, err := s.issueCode(ctx, user.Email, models.PurposeVerification); err != nil && !errors.Is(err, errDispatch) {
		return err
	}
	return nil
}
