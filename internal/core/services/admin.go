package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
)

// Ensure AdminService implements the interface.
var _ driving.AdminService = (*AdminService)(nil)

// AdminService manages administrator accounts.
type AdminService struct {
	admins   driven.AdminStore
	activity driven.ActivitySink
	cost     int

	// dummyHash is compared against when the username is unknown so a
	// failed login takes the same time either way.
	dummyOnce sync.Once
	dummyHash []byte
}

// NewAdminService creates an admin service. cost is the bcrypt work
// factor; zero selects bcrypt.DefaultCost.
func NewAdminService(admins driven.AdminStore, activity driven.ActivitySink, cost int) *AdminService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AdminService{
		admins:   admins,
		activity: activity,
		cost:     cost,
	}
}

// Create adds an admin.
func (s *AdminService) Create(ctx context.Context, username, password string) (*domain.Admin, error) {
	if s.admins == nil {
		return nil, domain.ErrNotImplemented
	}

	username = domain.NormaliseUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: username must be %d-%d characters of a-z, 0-9, '.', '_' or '-'",
			err, domain.MinUsernameLength, domain.MaxUsernameLength)
	}
	if len(password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, domain.MinPasswordLength)
	}

	if _, err := s.admins.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("admin %q: %w", username, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		return nil, fmt.Errorf("save admin: %w", err)
	}

	s.publish(domain.ActivityAdminCreated, username, "admin %s created", username)
	return admin, nil
}

// List returns all admins.
func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	if s.admins == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.admins.List(ctx)
}

// Delete removes an admin unless it is the last one.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	if s.admins == nil {
		return domain.ErrNotImplemented
	}

	admin, err := s.admins.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count <= 1 {
		return domain.ErrLastAdmin
	}
	if err := s.admins.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}

	s.publish(domain.ActivityAdminDeleted, admin.Username, "admin %s deleted", admin.Username)
	return nil
}

// Authenticate checks a username and password.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*domain.Admin, error) {
	if s.admins == nil {
		return nil, domain.ErrNotImplemented
	}

	admin, err := s.admins.GetByUsername(ctx, domain.NormaliseUsername(username))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return admin, nil
}

func (s *AdminService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("markscan-dummy-password"), s.cost)
	})
	return s.dummyHash
}

func (s *AdminService) publish(kind domain.ActivityKind, actor, format string, args ...any) {
	if s.activity == nil {
		return
	}
	s.activity.Publish(domain.Activity{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Actor:   actor,
		At:      time.Now().UTC(),
	})
}
