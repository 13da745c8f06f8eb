package userrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/usergate/internal/domain/user"
)

// MemoryRepository provides an in-memory user store for tests/dev.
// Ids are max+1 over every id ever assigned, so deleted ids are not reused.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]user.User
	lastID int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[int64]user.User)}
}

// List returns every user ordered by id.
func (r *MemoryRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get fetches by id.
func (r *MemoryRepository) Get(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok, nil
}

// FindByName returns the first user carrying name.
func (r *MemoryRepository) FindByName(_ context.Context, name string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Name == name {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

// Add stores u under a freshly assigned id.
func (r *MemoryRepository) Add(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	u.ID = r.lastID
	r.users[u.ID] = u
	return u, nil
}

// Replace overwrites the mutable fields of an existing user.
func (r *MemoryRepository) Replace(_ context.Context, id int64, fields user.Payload) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, false, nil
	}
	u.Name = fields.Name
	u.Email = fields.Email
	u.Department = fields.Department
	r.users[id] = u
	return u, true, nil
}

// Remove deletes and returns the user.
func (r *MemoryRepository) Remove(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, false, nil
	}
	delete(r.users, id)
	return u, true, nil
}

var _ user.Repository = (*MemoryRepository)(nil)
