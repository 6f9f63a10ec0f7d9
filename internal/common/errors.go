// Package common defines shared constants and sentinel errors used across
// the client and server layers. Callers should use errors.Is to match these
// values; service-level rejections additionally carry a stable code and a
// human-readable message (see Error).
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorValidation           = errors.New("validation failed")
	ErrorInvalidCredentials   = errors.New("invalid credentials")
	ErrorInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrorInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrorEmailNotVerified     = errors.New("email not verified")
	ErrorAlreadyVerified      = errors.New("email already verified")
	ErrorRateLimited          = errors.New("rate limited")
	ErrorUnauthorized         = errors.New("unauthorized")
	ErrorInternal             = errors.New("internal error")

	// Access token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Codes exposed to API consumers. They never change once published.
const (
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInvalidOrExpiredCode = "INVALID_OR_EXPIRED_CODE"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	CodeAlreadyVerified      = "ALREADY_VERIFIED"
	CodeNotFound             = "NOT_FOUND"
	CodeRateLimited          = "RATE_LIMITED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
)

var kindCodes = []struct {
	kind error
	code string
}{
	{ErrorValidation, CodeValidationFailed},
	{ErrorAlreadyExists, CodeAlreadyExists},
	{ErrorInvalidCredentials, CodeInvalidCredentials},
	{ErrorInvalidOrExpiredCode, CodeInvalidOrExpiredCode},
	{ErrorInvalidRefreshToken, CodeInvalidRefreshToken},
	{ErrorEmailNotVerified, CodeEmailNotVerified},
	{ErrorAlreadyVerified, CodeAlreadyVerified},
	{ErrorNotFound, CodeNotFound},
	{ErrorRateLimited, CodeRateLimited},
	{ErrorUnauthorized, CodeUnauthorized},
	{ErrInvalidToken, CodeUnauthorized},
	{ErrTokenExpired, CodeUnauthorized},
}

// Error is a rejection returned across the service boundary. Kind is one of
// the sentinel errors above, Message is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an Error of the given kind. The message defaults to the
// kind's own text.
func NewError(kind error, format string, args ...any) *Error {
	msg := kind.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

// Code returns the stable machine-checkable code for err. Unknown errors are
// reported as internal.
func Code(err error) string {
	for _, kc := range kindCodes {
		if errors.Is(err, kc.kind) {
			return kc.code
		}
	}
	return CodeInternal
}

// Message returns the caller-facing message for err. Internal failures never
// leak their underlying text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if Code(err) == CodeInternal {
		return ErrorInternal.Error()
	}
	return err.Error()
}

// KindOf maps a published code back to its sentinel. Unknown codes map to
// ErrorInternal.
func KindOf(code string) error {
	for _, kc := range kindCodes {
		if kc.code == code {
			return kc.kind
		}
	}
	return ErrorInternal
}
