package driving

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// AdminService manages administrator accounts.
type AdminService interface {
	// Create adds an admin with a hashed password.
	Create(ctx context.Context, username, password string) (*domain.Admin, error)

	// List returns all admins.
	List(ctx context.Context) ([]domain.Admin, error)

	// Delete removes an admin. Returns domain.ErrLastAdmin for the last one.
	Delete(ctx context.Context, id string) error

	// Authenticate checks credentials and returns the admin.
	// Returns domain.ErrUnauthorized on any mismatch.
	Authenticate(ctx context.Context, username, password string) (*domain.Admin, error)
}

// AuthService issues and checks admin sessions.
type AuthService interface {
	// Login authenticates and opens a session. clientKey identifies the
	// caller for rate limiting, typically the remote IP.
	Login(ctx context.Context, username, password, clientKey string) (*domain.Session, error)

	// Verify returns the live session for token.
	// Returns domain.ErrUnauthorized if it is unknown or expired.
	Verify(ctx context.Context, token string) (*domain.Session, error)

	// Logout ends a session.
	Logout(ctx context.Context, token string) error
}
