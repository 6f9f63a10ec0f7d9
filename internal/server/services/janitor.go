package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// PurgeExpired removes one-time codes and refresh tokens that expired before
// now. Blacklisted tokens stay until they expire.
func (s *IdentityService) PurgeExpired(ctx context.Context) (codes, tokens int64, err error) {
	now := s.clock.Now()

	codes, err = s.repos.OneTimeCodes().DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	tokens, err = s.repos.RefreshTokens().DeleteExpired(ctx, now)
	if err != nil {
		return codes, 0, err
	}
	return codes, tokens, nil
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, int64, error)
}

// Janitor runs PurgeExpired on a fixed interval until its context ends.
type Janitor struct {
	purger   purger
	interval time.Duration
	logger   logging.Logger
}

func NewJanitor(p purger, interval time.Duration, logger logging.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{purger: p, interval: interval, logger: logger.With("module", "janitor")}
}

func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *Janitor) runOnce(ctx context.Context) {
	codes, tokens, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error(ctx, "purge expired records", "error", err)
		return
	}
	if codes > 0 || tokens > 0 {
		j.logger.Info(ctx, "purged expired records", "codes", codes, "refresh_tokens", tokens)
	}
}
