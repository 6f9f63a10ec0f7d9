package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// errDispatch marks a code that was stored but whose email could not be sent.
var errDispatch = errors.New("mail dispatch failed")

// allowCode applies the per (purpose, email) issuance limit. Limiter outages
// fail open.
func (s *IdentityService) allowCode(ctx context.Context, email string, purpose models.OTPPurpose) error {
	allowed, retry, err := s.codeLimiter.Allow(ctx, string(purpose)+":"+email, s.clock.Now())
	if err != nil {
		s.logger.Warn(ctx, "code limiter unavailable", "error", err)
		return nil
	}
	if !allowed {
		return common.NewError(common.ErrorRateLimited, "too many codes requested, retry in %s", retry.Round(time.Second))
	}
	return nil
}

// issueCode replaces every code for (email, purpose) with a fresh one and
// mails it. A stored code whose mail failed yields errDispatch.
func (s *IdentityService) issueCode(ctx context.Context, email string, purpose models.OTPPurpose) (*notify.Delivery, error) {
	code, err := s.generateCode()
	if err != nil {
		return nil, s.internal(ctx, "generate code", err)
	}

	now := s.clock.Now()
	otp := &models.OneTimeCode{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.cfg.OTPValidity),
		CreatedAt: now,
	}

	err = s.repos.Atomic(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.OneTimeCodes().DeleteMany(ctx, email, purpose); err != nil {
			return err
		}
		return r.OneTimeCodes().Create(ctx, otp)
	})
	if err != nil {
		return nil, s.internal(ctx, "store code", err)
	}

	var msg notify.Message
	switch purpose {
	case models.PurposePasswordReset:
		msg = notify.PasswordResetMessage(email, code, s.cfg.OTPValidity)
	default:
		msg = notify.VerificationMessage(email, code, s.cfg.OTPValidity)
	}

	d, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.logger.Warn(ctx, "mail dispatch failed", "purpose", purpose, "error", err)
		return nil, errDispatch
	}
	if d == nil {
		d = &notify.Delivery{}
	}
	return d, nil
}

// findCode returns the active code for (email, purpose) if it equals
// submitted. Absent, expired, used and wrong codes are indistinguishable.
func (s *IdentityService) findCode(ctx context.Context, r repomanager.Repositories, email string, purpose models.OTPPurpose, submitted string) (*models.OneTimeCode, error) {
	otp, err := r.OneTimeCodes().FindActive(ctx, email, purpose, s.clock.Now())
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidCode()
		}
		return nil, s.internal(ctx, "find code", err)
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(submitted)) != 1 {
		return nil, errInvalidCode()
	}
	return otp, nil
}

// consumeCode marks otp used. Losing a race with another consumer counts as
// an invalid code.
func (s *IdentityService) consumeCode(ctx context.Context, r repomanager.Repositories, otp *models.OneTimeCode) error {
	if err := r.OneTimeCodes().MarkUsed(ctx, otp.ID); err != nil {
		if isNotFound(err) {
			return errInvalidCode()
		}
		return s.internal(ctx, "mark code used", err)
	}
	return nil
}

func errInvalidCode() error {
	return common.NewError(common.ErrorInvalidOrExpiredCode, "invalid or expired code")
}
