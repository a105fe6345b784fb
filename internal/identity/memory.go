package identity

import (
	"context"
	"sync"
)

// MemoryStore is a Persistence that keeps the user in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	user *User

	Saves  int
	Clears int
}

// NewMemoryStore returns a store preloaded with u (which may be nil).
func NewMemoryStore(u *User) *MemoryStore {
	return &MemoryStore{user: u.Clone()}
}

func (m *MemoryStore) LoadUser(ctx context.Context) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Clone(), nil
}

func (m *MemoryStore) SaveUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u.Clone()
	m.Saves++
	return nil
}

func (m *MemoryStore) ClearUser(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.Clears++
	return nil
}

// Stored returns the user currently held by the store.
func (m *MemoryStore) Stored() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Clone()
}
