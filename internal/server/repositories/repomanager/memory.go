package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/otps"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. Atomic sections are
// serialized with a mutex and a failed section restores the state it started
// from. Writes made outside Atomic while a failing section runs are lost with
// the rollback.
type MemoryRepositoryManager struct {
	mu            sync.Mutex
	users         *users.MemoryRepository
	oneTimeCodes  *otps.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		oneTimeCodes:  otps.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository                 { return m.users }
func (m *MemoryRepositoryManager) OneTimeCodes() otps.Repository           { return m.oneTimeCodes }
func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }

func (m *MemoryRepositoryManager) Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	restoreUsers := m.users.Checkpoint()
	restoreCodes := m.oneTimeCodes.Checkpoint()
	restoreTokens := m.refreshTokens.Checkpoint()

	if err := fn(ctx, m); err != nil {
		restoreUsers()
		restoreCodes()
		restoreTokens()
		return err
	}
	return nil
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *MemoryRepositoryManager) Ping(ctx context.Context) error          { return nil }
func (m *MemoryRepositoryManager) Close(ctx context.Context) error         { return nil }
