package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// maxTrackedClients caps the per-client limiter table. When it is full the
// table starts over.
const maxTrackedClients = 10000

// AuthService issues and checks admin sessions.
type AuthService struct {
	admins   driving.AdminService
	sessions driven.SessionStore
	activity driven.ActivitySink
	ttl      time.Duration
	perMin   int
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewAuthService creates an auth service. loginsPerMinute limits login
// attempts per client key; zero or less disables limiting.
func NewAuthService(
	admins driving.AdminService,
	sessions driven.SessionStore,
	activity driven.ActivitySink,
	ttl time.Duration,
	loginsPerMinute int,
) *AuthService {
	if ttl <= 0 {
		ttl = domain.DefaultAppSettings().Auth.SessionTTL
	}
	return &AuthService{
		admins:   admins,
		sessions: sessions,
		activity: activity,
		ttl:      ttl,
		perMin:   loginsPerMinute,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Login authenticates and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password, clientKey string) (*domain.Session, error) {
	if s.admins == nil || s.sessions == nil {
		return nil, domain.ErrNotImplemented
	}
	if !s.allow(clientKey) {
		logger.Warn("login rate limit hit for %s", clientKey)
		return nil, domain.ErrRateLimited
	}

	admin, err := s.admins.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	now := s.now().UTC()
	session := &domain.Session{
		Token:     token,
		AdminID:   admin.ID,
		Username:  admin.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if removed, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		logger.Warn("prune sessions: %v", err)
	} else if removed > 0 {
		logger.Debug("pruned %d expired sessions", removed)
	}

	if s.activity != nil {
		s.activity.Publish(domain.Activity{
			Kind:    domain.ActivityLogin,
			Message: admin.Username + " logged in",
			Actor:   admin.Username,
			At:      now,
		})
	}
	return session, nil
}

// Verify returns the live session for token.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, domain.ErrNotImplemented
	}
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Logout ends a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessions == nil {
		return domain.ErrNotImplemented
	}
	return s.sessions.Delete(ctx, token)
}

// allow applies the per-client token bucket.
func (s *AuthService) allow(clientKey string) bool {
	if s.perMin <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[clientKey]
	if !ok {
		if len(s.limiters) >= maxTrackedClients {
			s.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)
		s.limiters[clientKey] = limiter
	}
	return limiter.AllowN(s.now(), 1)
}
