package otps

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.Mutex
	codes map[string]models.OneTimeCode
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{codes: make(map[string]models.OneTimeCode)}
}

func (r *MemoryRepository) DeleteMany(ctx context.Context, email string, purpose models.OTPPurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.codes {
		if c.Email == email && c.Purpose == purpose {
			delete(r.codes, id)
		}
	}
	return nil
}

func (r *MemoryRepository) Create(ctx context.Context, code *models.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[code.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.codes[code.ID] = *code
	return nil
}

func (r *MemoryRepository) FindActive(ctx context.Context, email string, purpose models.OTPPurpose, now time.Time) (*models.OneTimeCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *models.OneTimeCode
	for _, c := range r.codes {
		if c.Email != email || c.Purpose != purpose || !c.Active(now) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			found := c
			best = &found
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

func (r *MemoryRepository) MarkUsed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codes[id]
	if !ok || c.IsUsed {
		return common.ErrorNotFound
	}
	c.IsUsed = true
	r.codes[id] = c
	return nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, c := range r.codes {
		if !c.ExpiresAt.After(before) {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

// Checkpoint copies the current state and returns a func that puts it back.
func (r *MemoryRepository) Checkpoint() (restore func()) {
	r.mu.Lock()
	saved := make(map[string]models.OneTimeCode, len(r.codes))
	for id, c := range r.codes {
		saved[id] = c
	}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.codes = saved
	}
}
