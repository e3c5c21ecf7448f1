/* session.go
 * Contains the admin session: the auth token sent with admin requests and the logged in user. The session is loaded
 * once at start, saved on login and cleared on logout. Without a persister it lives in memory only
 */

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"torneos-admin/api/models"
	"torneos-admin/api/store"
	"torneos-admin/logging"

	"go.uber.org/zap"
)

// Persister is the part of the store the session needs
type Persister interface {
	LoadSession(ctx context.Context) (string, models.User, error)
	SaveSession(ctx context.Context, token string, user models.User) error
	ClearSession(ctx context.Context) error
}

// Manager holds the current session
type Manager struct {
	mu        sync.RWMutex
	token     string
	user      models.User
	persister Persister
	logger    *zap.Logger
}

// NewManager creates an empty session. persister may be nil
func NewManager(persister Persister, logger *zap.Logger) *Manager {
	logger = logging.OrNop(logger)
	return &Manager{persister: persister, logger: logger}
}

// Load rehydrates the session from the persister. A missing session is not an error
func (m *Manager) Load(ctx context.Context) error {
	if m.persister == nil {
		return nil
	}
	token, user, err := m.persister.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return nil
		}
		return fmt.Errorf("error loading session: %w", err)
	}

	m.mu.Lock()
	m.token, m.user = token, user
	m.mu.Unlock()
	m.logger.Info("session restored", zap.String("user", user.Username))
	return nil
}

// Save replaces the session and persists it. The in memory session is updated even when persisting fails
func (m *Manager) Save(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	user.Password = ""

	m.mu.Lock()
	m.token, m.user = token, user
	m.mu.Unlock()

	if m.persister == nil {
		return nil
	}
	if err := m.persister.SaveSession(ctx, token, user); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

// Clear forgets the session
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token, m.user = "", models.User{}
	m.mu.Unlock()

	if m.persister == nil {
		return nil
	}
	if err := m.persister.ClearSession(ctx); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}

// Token returns the auth token, empty when logged out. It is used as the token source of the admin client
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns the logged in user
func (m *Manager) User() models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// LoggedIn reports whether a token is held
func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}
