package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure the account stores implement their interfaces.
var (
	_ driven.AdminStore   = (*AdminStore)(nil)
	_ driven.SessionStore = (*SessionStore)(nil)
)

// AdminStore is an in-memory implementation of driven.AdminStore.
type AdminStore struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
}

// NewAdminStore creates a new in-memory admin store.
func NewAdminStore() *AdminStore {
	return &AdminStore{
		admins: make(map[string]domain.Admin),
	}
}

// Save stores or updates an admin.
func (s *AdminStore) Save(_ context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.admins {
		if id != admin.ID && existing.Username == admin.Username {
			return domain.ErrAlreadyExists
		}
	}
	s.admins[admin.ID] = *admin
	return nil
}

// Get retrieves an admin by ID.
func (s *AdminStore) Get(_ context.Context, id string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &admin, nil
}

// GetByUsername retrieves an admin by username.
func (s *AdminStore) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	username = domain.NormaliseUsername(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if admin.Username == username {
			return &admin, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns all admins ordered by username.
func (s *AdminStore) List(_ context.Context) ([]domain.Admin, error) {
	s.mu.RLock()
	result := make([]domain.Admin, 0, len(s.admins))
	for _, admin := range s.admins {
		result = append(result, admin)
	}
	s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Delete removes an admin.
func (s *AdminStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.admins, id)
	return nil
}

// Count returns the number of admins.
func (s *AdminStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins), nil
}

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
	}
}

// Save stores a session.
func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

// Get retrieves a session by token.
func (s *SessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}
