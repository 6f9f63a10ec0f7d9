// Package otps declares the one-time-code store and its backends.
package otps

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists one-time codes keyed by (email, purpose).
type Repository interface {
	// DeleteMany removes every code for the pair, used or not.
	DeleteMany(ctx context.Context, email string, purpose models.OTPPurpose) error
	Create(ctx context.Context, code *models.OneTimeCode) error
	// FindActive returns the most recently created unused code that is still
	// valid at now, or common.ErrorNotFound.
	FindActive(ctx context.Context, email string, purpose models.OTPPurpose, now time.Time) (*models.OneTimeCode, error)
	// MarkUsed flips is_used only while it is still false; a second call for
	// the same id returns common.ErrorNotFound.
	MarkUsed(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
