// Package refreshtokens declares the server-side store of issued refresh
// tokens. The store, not the token signature, decides whether a refresh
// token is still usable.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking refresh tokens.
type Repository interface {
	// Create stores a freshly issued token.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find returns the stored record for the token string regardless of its
	// state, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// FindActive returns the record only when it is of type refresh, not
	// blacklisted and expires strictly after now.
	FindActive(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error)

	// Blacklist marks the token unusable if it is not blacklisted yet.
	// A token that was already blacklisted yields common.ErrorNotFound, so
	// only one of several concurrent callers can win.
	Blacklist(ctx context.Context, id string) error

	// BlacklistAllForUser revokes every live token of the user.
	BlacklistAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired physically removes tokens that expired at or before the
	// given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
