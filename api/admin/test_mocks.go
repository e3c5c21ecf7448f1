/* test_mocks.go
 * Contains mock structures for testing the admin package
 */

package admin

import (
	"context"
	"sync"

	"torneos-admin/api/models"
	"torneos-admin/api/store"
)

// MockStore implements the store Interface in memory
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Token     string
	User      models.User
	HasUser   bool
	Snapshots map[string]store.Snapshot
	Expired   map[string]bool

	// Error injection for testing error paths
	LoadSessionError   error
	SaveSessionError   error
	StoreSnapshotError error

	Closed bool
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{Snapshots: make(map[string]store.Snapshot), Expired: make(map[string]bool)}
}

var _ store.Interface = (*MockStore)(nil)

func (m *MockStore) LoadSession(ctx context.Context) (string, models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadSessionError != nil {
		return "", models.User{}, m.LoadSessionError
	}
	if !m.HasUser {
		return "", models.User{}, store.ErrNoSession
	}
	return m.Token, m.User, nil
}

func (m *MockStore) SaveSession(ctx context.Context, token string, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveSessionError != nil {
		return m.SaveSessionError
	}
	m.Token, m.User, m.HasUser = token, user, true
	return nil
}

func (m *MockStore) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token, m.User, m.HasUser = "", models.User{}, false
	return nil
}

func (m *MockStore) StoreSnapshot(ctx context.Context, snap store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreSnapshotError != nil {
		return m.StoreSnapshotError
	}
	m.Snapshots[snap.Resource] = snap
	return nil
}

func (m *MockStore) FetchSnapshot(ctx context.Context, resource string) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.Snapshots[resource]
	if !ok {
		return store.Snapshot{}, store.ErrNoSnapshot
	}
	if m.Expired[resource] {
		return snap, store.ErrSnapshotExpired
	}
	return snap, nil
}

func (m *MockStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Snapshot returns a stored snapshot
func (m *MockStore) Snapshot(resource string) (store.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.Snapshots[resource]
	return snap, ok
}
