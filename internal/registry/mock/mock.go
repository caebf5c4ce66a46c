// Package mock provides an in-memory Store implementation with error
// injection for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-gate/internal/registry"
)

// MockStore is an in-memory implementation of registry.Store.
type MockStore struct {
	mu    sync.Mutex
	users map[string]registry.UserRecord
	order []string

	// Error injection
	PutError    error
	GetError    error
	DeleteError error
	AllError    error
	CountError  error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		users: make(map[string]registry.UserRecord),
	}
}

// Put inserts or overwrites a record.
func (m *MockStore) Put(ctx context.Context, rec registry.UserRecord) error {
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.users[rec.ID] = rec
	return nil
}

// Get returns a record by id.
func (m *MockStore) Get(ctx context.Context, id string) (*registry.UserRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return nil, registry.ErrUserNotFound
	}
	return &rec, nil
}

// Delete removes a record by id.
func (m *MockStore) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return registry.ErrUserNotFound
	}
	delete(m.users, id)
	for i, uid := range m.order {
		if uid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// All returns every record in insertion order.
func (m *MockStore) All(ctx context.Context) ([]registry.UserRecord, error) {
	if m.AllError != nil {
		return nil, m.AllError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]registry.UserRecord, 0, len(m.users))
	for _, id := range m.order {
		records = append(records, m.users[id])
	}
	return records, nil
}

// Count returns the number of records.
func (m *MockStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
