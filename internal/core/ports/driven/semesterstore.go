package driven

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// SemesterStore persists semesters.
type SemesterStore interface {
	// Save stores or updates a semester.
	// Returns domain.ErrAlreadyExists if another semester has the same name.
	Save(ctx context.Context, semester *domain.Semester) error

	// Get retrieves a semester by ID.
	Get(ctx context.Context, id string) (*domain.Semester, error)

	// List returns all semesters, most recent year first.
	List(ctx context.Context) ([]domain.Semester, error)

	// Delete removes a semester. Records are left untouched.
	Delete(ctx context.Context, id string) error

	// Activate marks one semester active and every other one inactive.
	Activate(ctx context.Context, id string) error

	// Active returns the active semester, or domain.ErrNotFound.
	Active(ctx context.Context) (*domain.Semester, error)
}
