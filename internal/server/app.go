// Package server wires the identity service: storage backend, mail
// transport, rate limiters, metrics and tracing, and runs the HTTP and gRPC
// endpoints plus the purge janitor until the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpserver"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	identity *services.IdentityService
	http     *httpserver.HTTPServer
	grpc     *gs.GRPCServer
	janitor  *services.Janitor

	// closers run in reverse order on Close
	closers []func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (_ *App, err error) {
	app := &App{config: c, logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
		}
	}()

	shutdownTracer, err := trace.InitTracer(ctx, c.ServiceName, c.Mode)
	if err != nil {
		return nil, fmt.Errorf("tracer init error: %w", err)
	}
	app.onClose(shutdownTracer)

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	app.repos = repos
	app.onClose(repos.Close)

	if err := repos.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sender, err := app.newSender(ctx)
	if err != nil {
		return nil, fmt.Errorf("mail transport init error: %w", err)
	}

	loginLimiter, codeLimiter := app.newLimiters()

	registry := prometheus.NewRegistry()
	m := metrics.New()
	m.Register(registry)

	lifetimes := c.Lifetimes()
	tokens := auth.NewTokenIssuer([]byte(c.SecretKey), lifetimes.Access, lifetimes.Refresh, nil)

	app.identity = services.NewIdentityService(repos, tokens, sender, logger,
		services.IdentityConfig{
			OTPValidity:   c.OTPValidityDuration,
			BcryptCost:    c.BcryptCost,
			ExposePreview: !c.IsProduction(),
		},
		services.WithCodeLimiter(codeLimiter),
		services.WithMetrics(m),
	)

	app.http = httpserver.NewHTTPServer(app.identity, logger, httpserver.Options{
		Address:      c.EndpointAddrHTTP,
		ServiceName:  c.ServiceName,
		MetricsPath:  c.MetricsPath,
		Metrics:      m,
		Registry:     registry,
		LoginLimiter: loginLimiter,
		Tracing:      true,
	})
	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, app.identity)
	app.janitor = services.NewJanitor(app.identity, c.PurgeInterval, logger)

	logger.Info(ctx, "App initialized",
		"mode", c.Mode,
		"storage", c.StorageBackend,
		"mail", c.MailTransport,
		"access_ttl", lifetimes.Access.String(),
	)
	return app, nil
}

var openRepositories = func(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StorageBackend {
	case config.StorageMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	case config.StorageMongo:
		return repomanager.OpenMongo(ctx, c.MongoURI, c.MongoDatabase)
	default:
		return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	}
}

func (app *App) newSender(ctx context.Context) (notify.Sender, error) {
	c := app.config

	var sender notify.Sender
	switch c.MailTransport {
	case config.MailSMTP:
		sender = notify.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.MailFrom)
	case config.MailKafka:
		producer, err := notify.NewKafkaProducer(c.KafkaBrokers)
		if err != nil {
			return nil, err
		}
		ks := notify.NewKafkaSender(producer, c.KafkaTopic)
		app.onClose(func(context.Context) error { return ks.Close() })
		sender = ks
	default:
		sender = notify.NewLogSender(app.logger)
	}

	if c.IsProduction() || c.S3Bucket == "" {
		return sender, nil
	}

	client, presigner, err := notify.NewS3Clients(ctx, notify.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return notify.NewPreviewSender(sender, client, presigner, c.S3Bucket, app.logger), nil
}

// newLimiters returns the per-IP login limiter and the per-email code
// limiter. Both share Redis when it is configured.
func (app *App) newLimiters() (login, codes ratelimit.Limiter) {
	c := app.config
	if c.RedisAddr == "" {
		return ratelimit.NewMemory(c.LoginRateLimit, c.RateLimitWindow),
			ratelimit.NewMemory(c.OTPRateLimit, c.RateLimitWindow)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	app.onClose(func(context.Context) error { return client.Close() })

	return ratelimit.NewRedisLimiter(client, c.LoginRateLimit, c.RateLimitWindow, ""),
		ratelimit.NewRedisLimiter(client, c.OTPRateLimit, c.RateLimitWindow, "")
}

func (app *App) onClose(fn func(context.Context) error) {
	app.closers = append(app.closers, fn)
}

// Run starts the endpoints and the janitor and blocks until ctx is cancelled
// or one endpoint fails, in which case the others are stopped as well.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, name+" stopped", "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	run("grpc", app.grpc.Run)
	run("http", app.http.Run)
	run("janitor", func(ctx context.Context) error {
		app.janitor.Run(ctx)
		return nil
	})

	wg.Wait()
	return errors.Join(errs...)
}

// Close releases the storage, producers and tracer.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
