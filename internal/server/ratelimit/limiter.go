// Package ratelimit provides fixed-window limiters keyed by arbitrary strings
// such as a client IP or an (email, purpose) pair.
package ratelimit

import (
	"context"
	"time"
)

// Limiter reports whether one more hit for key fits in the current window
// and, when it does not, how long until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, time.Duration, error)
}

// Unlimited allows everything. Used when limiting is switched off.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string, time.Time) (bool, time.Duration, error) {
	return true, 0, nil
}
