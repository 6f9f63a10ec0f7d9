package services

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func errInvalidCredentials() error {
	return common.NewError(common.ErrorInvalidCredentials, "invalid email or password")
}

// Login checks the password and signs the user in. Unknown emails and wrong
// passwords are rejected identically. A correct password on an unverified
// account sends a fresh verification code.
func (s *IdentityService) Login(ctx context.Context, email, password string) (res *AuthResult, err error) {
	defer s.observe(opLogin, &err)

	in := loginInput{Email: normalizeEmail(email), Password: password}
	if err := s.check(in); err != nil {
		return nil, err
	}

	user, err := s.repos.Users().FindByEmail(ctx, in.Email)
	if err != nil {
		if !isNotFound(err) {
			return nil, s.internal(ctx, "find user by email", err)
		}
		// keep the timing of unknown emails close to a real comparison
		_, _ = auth.CheckPassword(s.dummyPasswordHash(), in.Password)
		return nil, errInvalidCredentials()
	}

	ok, err := auth.CheckPassword(user.PasswordHash, in.Password)
	if err != nil {
		return nil, s.internal(ctx, "compare password", err)
	}
	if !ok {
		return nil, errInvalidCredentials()
	}

	if !user.IsEmailVerified {
		if s.resendOnLogin(ctx, user.Email) {
			return nil, common.NewError(common.ErrorEmailNotVerified, "email is not verified, a new verification code has been sent")
		}
		return nil, common.NewError(common.ErrorEmailNotVerified, "email is not verified")
	}

	pair, err := s.issueTokenPair(ctx, s.repos, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user.Public(), Tokens: pair}, nil
}

// resendOnLogin issues a verification code for an unverified login and
// reports whether it was actually sent.
func (s *IdentityService) resendOnLogin(ctx context.Context, email string) bool {
	if err := s.allowCode(ctx, email, models.PurposeVerification); err != nil {
		return false
	}
	_, err := s.issueCode(ctx, email, models.PurposeVerification)
	return err == nil
}

func (s *IdentityService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("gophauth-dummy-password", s.cfg.BcryptCost)
	})
	return s.dummyHash
}
