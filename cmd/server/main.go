package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

const shutdownTimeout = 10 * time.Second

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.ServiceName, cfg.Mode)

	ctx, cancel := context.WithCancel(context.Background())

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "app init failed", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := app.Run(ctx); err != nil {
			logger.Error(ctx, "app stopped", "error", err)
			_ = app.Close(context.Background())
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout,
		map[string]gfshutdown.Operation{
			"gophauth": func(ctx context.Context) error {
				logger.Info(ctx, "Graceful shutdown initiated...")
				cancel()
				<-done
				return app.Close(ctx)
			},
		},
	)

	os.Exit(<-wait)
}
