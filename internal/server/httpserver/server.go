// Package httpserver exposes the identity service as a JSON API over gin.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/trace"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	apiPrefix       = "/api/v1/auth"
	shutdownTimeout = 5 * time.Second
	readyTimeout    = 2 * time.Second
)

// Identity is the part of the identity service the HTTP API calls.
type Identity interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*services.AuthResult, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Authenticate(ctx context.Context, accessToken string) (string, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Address      string
	ServiceName  string
	MetricsPath  string
	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
	LoginLimiter ratelimit.Limiter
	// Tracing enables the otel middleware.
	Tracing bool
}

type HTTPServer struct {
	address      string
	identity     Identity
	logger       logging.Logger
	metrics      *metrics.Metrics
	loginLimiter ratelimit.Limiter
	now          func() time.Time
	engine       *gin.Engine
}

func NewHTTPServer(identity Identity, logger logging.Logger, o Options) *HTTPServer {
	if o.LoginLimiter == nil {
		o.LoginLimiter = ratelimit.Unlimited{}
	}
	if o.MetricsPath == "" {
		o.MetricsPath = "/metrics"
	}

	s := &HTTPServer{
		address:      o.Address,
		identity:     identity,
		logger:       logger.With("module", "http_server"),
		metrics:      o.Metrics,
		loginLimiter: o.LoginLimiter,
		now:          time.Now,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(s.logger))
	if o.Tracing {
		r.Use(trace.Middleware(o.ServiceName))
	}
	r.Use(Logger(s.logger, s.metrics))

	r.GET("/healthz", s.healthz)
	r.GET("/readyz", s.readyz)
	if o.Registry != nil {
		r.GET(o.MetricsPath, gin.WrapH(metrics.Handler(o.Registry)))
	}

	api := r.Group(apiPrefix)
	api.POST("/register", s.register)
	api.POST("/verify-email", s.verifyEmail)
	api.POST("/resend-verification", s.resendVerification)
	api.POST("/login", s.login)
	api.POST("/refresh", s.refresh)
	api.POST("/logout", s.logout)
	api.POST("/forgot-password", s.forgotPassword)
	api.POST("/reset-password", s.resetPassword)

	profile := api.Group("/profile", Bearer(identity))
	profile.GET("", s.getProfile)
	profile.PATCH("", s.updateProfile)

	s.engine = r
	return s
}

// Handler returns the routed engine.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := s.identity.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
