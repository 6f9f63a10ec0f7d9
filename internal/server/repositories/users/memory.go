package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps users in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if r.clashes(user) {
		return nil, common.ErrorAlreadyExists
	}

	r.users[user.ID] = *user
	return user, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if r.clashes(user) {
		return common.ErrorAlreadyExists
	}

	updated := *user
	updated.Email = cur.Email
	updated.CreatedAt = cur.CreatedAt
	r.users[user.ID] = updated
	return nil
}

func (r *MemoryRepository) find(match func(u *models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// clashes must be called with the lock held.
func (r *MemoryRepository) clashes(user *models.User) bool {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return true
		}
		if user.Username != "" && u.Username == user.Username {
			return true
		}
	}
	return false
}

// Checkpoint copies the current state and returns a func that puts it back.
func (r *MemoryRepository) Checkpoint() (restore func()) {
	r.mu.RLock()
	saved := make(map[string]models.User, len(r.users))
	for id, u := range r.users {
		saved[id] = u
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.users = saved
	}
}
