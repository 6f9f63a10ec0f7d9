// Package services contains server-side business logic. IdentityService runs
// registration, email verification, login, token rotation, logout, password
// reset and profile management over the repositories and a mail sender.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// Operation names used as the metrics label.
const (
	opRegister             = "register"
	opVerifyEmail          = "verify_email"
	opResendVerification   = "resend_verification"
	opLogin                = "login"
	opRefresh              = "refresh"
	opLogout               = "logout"
	opGetProfile           = "get_profile"
	opUpdateProfile        = "update_profile"
	opRequestPasswordReset = "request_password_reset"
	opResetPassword        = "reset_password"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// IdentityConfig carries the tunables of the service.
type IdentityConfig struct {
	OTPValidity time.Duration
	BcryptCost  int
	// ExposePreview returns sender preview links to callers. Off in production.
	ExposePreview bool
}

type IdentityService struct {
	repos        repomanager.RepositoryManager
	tokens       *auth.TokenIssuer
	sender       notify.Sender
	logger       logging.Logger
	cfg          IdentityConfig
	clock        Clock
	codeLimiter  ratelimit.Limiter
	metrics      *metrics.Metrics
	generateCode func() (string, error)
	validate     *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*IdentityService)

func WithClock(c Clock) Option {
	return func(s *IdentityService) { s.clock = c }
}

// WithCodeLimiter limits code issuance per (purpose, email).
func WithCodeLimiter(l ratelimit.Limiter) Option {
	return func(s *IdentityService) { s.codeLimiter = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *IdentityService) { s.metrics = m }
}

func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *IdentityService) { s.generateCode = fn }
}

func NewIdentityService(repos repomanager.RepositoryManager, tokens *auth.TokenIssuer, sender notify.Sender,
	logger logging.Logger, cfg IdentityConfig, opts ...Option) *IdentityService {

	if cfg.OTPValidity <= 0 {
		cfg.OTPValidity = 10 * time.Minute
	}

	s := &IdentityService{
		repos:        repos,
		tokens:       tokens,
		sender:       sender,
		logger:       logger.With("module", "identity"),
		cfg:          cfg,
		clock:        systemClock{},
		codeLimiter:  ratelimit.Unlimited{},
		generateCode: auth.GenerateCode,
		validate:     newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the backing store is reachable.
func (s *IdentityService) Ping(ctx context.Context) error {
	return s.repos.Ping(ctx)
}

func (s *IdentityService) observe(op string, errp *error) {
	outcome := metrics.OutcomeSuccess
	if *errp != nil {
		outcome = common.Code(*errp)
	}
	s.metrics.ObserveOperation(op, outcome)
}

// internal logs a store or infrastructure failure and hides it from callers.
func (s *IdentityService) internal(ctx context.Context, what string, err error) error {
	s.logger.Error(ctx, what, "error", err)
	return common.NewError(common.ErrorInternal, "")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

func isAlreadyExists(err error) bool {
	return errors.Is(err, common.ErrorAlreadyExists)
}
