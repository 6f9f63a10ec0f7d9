// Package repomanager groups the three identity stores behind one handle per
// storage backend and owns backend lifecycle: migrations, health and closing.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/otps"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// Repositories is the set of stores the identity service works with.
type Repositories interface {
	Users() users.Repository
	OneTimeCodes() otps.Repository
	RefreshTokens() refreshtokens.Repository
}

type RepositoryManager interface {
	Repositories

	// Atomic runs fn against repositories that share one unit of work when
	// the backend supports it. Backends without transactions run fn directly.
	Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
