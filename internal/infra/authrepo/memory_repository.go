package authrepo

import (
	"context"
	"sync"

	"github.com/yanqian/swing-coach/internal/domain/auth"
)

// MemoryRepository is an in-memory account store for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]auth.User
	byEmail map[string]int64
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		byID:    make(map[int64]auth.User),
		byEmail: make(map[string]int64),
	}
}

// Create implements auth.UserRepository.
func (r *MemoryRepository) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, auth.ErrEmailExists
	}
	stored := *user
	stored.ID = r.nextID
	r.nextID++
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	out := stored
	return &out, nil
}

// FindByEmail implements auth.UserRepository.
func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	user := r.byID[id]
	return &user, nil
}

// FindByID implements auth.UserRepository.
func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &user, nil
}

var _ auth.UserRepository = (*MemoryRepository)(nil)
