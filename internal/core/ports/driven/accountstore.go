package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// AdminStore persists administrator accounts.
type AdminStore interface {
	// Save stores or updates an admin.
	// Returns domain.ErrAlreadyExists if another admin has the same username.
	Save(ctx context.Context, admin *domain.Admin) error

	// Get retrieves an admin by ID.
	Get(ctx context.Context, id string) (*domain.Admin, error)

	// GetByUsername retrieves an admin by normalised username.
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)

	// List returns all admins ordered by username.
	List(ctx context.Context) ([]domain.Admin, error)

	// Delete removes an admin.
	Delete(ctx context.Context, id string) error

	// Count returns the number of admins.
	Count(ctx context.Context) (int, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	// Save stores a session.
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by token.
	Get(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
