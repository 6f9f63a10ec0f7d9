package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository indexes tokens by id and by token string.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.RefreshToken
	byToken map[string]*models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.RefreshToken),
		byToken: make(map[string]*models.RefreshToken),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[t.Token]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.byID[t.ID]; ok {
		return common.ErrorAlreadyExists
	}
	stored := *t
	r.byID[t.ID] = &stored
	r.byToken[t.Token] = &stored
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	found := *t
	return &found, nil
}

func (r *MemoryRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error) {
	t, err := r.Find(ctx, token)
	if err != nil {
		return nil, err
	}
	if !t.Active(now) {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r *MemoryRepository) Blacklist(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok || t.Blacklisted {
		return common.ErrorNotFound
	}
	t.Blacklisted = true
	return nil
}

func (r *MemoryRepository) BlacklistAllForUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, t := range r.byID {
		if t.UserID == userID && !t.Blacklisted {
			t.Blacklisted = true
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.byID {
		if !t.ExpiresAt.After(before) {
			delete(r.byID, id)
			delete(r.byToken, t.Token)
			n++
		}
	}
	return n, nil
}

// Checkpoint copies the current state and returns a func that puts it back.
func (r *MemoryRepository) Checkpoint() (restore func()) {
	r.mu.Lock()
	saved := make([]models.RefreshToken, 0, len(r.byID))
	for _, t := range r.byID {
		saved = append(saved, *t)
	}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byID = make(map[string]*models.RefreshToken, len(saved))
		r.byToken = make(map[string]*models.RefreshToken, len(saved))
		for i := range saved {
			t := saved[i]
			r.byID[t.ID] = &t
			r.byToken[t.Token] = &t
		}
	}
}
