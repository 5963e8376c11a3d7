package store

import (
	"context"
	"sync"

	"github.com/EO-DataHub/eodhp-todo-services/models"
)

// MemoryStore is an in-process Store, mostly useful in tests.
type MemoryStore struct {
	mu    sync.Mutex
	users []models.User
}

// NewMemoryStore returns a MemoryStore seeded with a copy of users.
func NewMemoryStore(users ...models.User) *MemoryStore {
	return &MemoryStore{users: cloneUsers(users)}
}

func (m *MemoryStore) Initialize(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) ReadAll(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneUsers(m.users), nil
}

func (m *MemoryStore) WriteAll(ctx context.Context, users []models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = cloneUsers(users)
	return nil
}
