package driving

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// SemesterService manages academic semesters.
type SemesterService interface {
	Create(ctx context.Context, semester domain.Semester) (*domain.Semester, error)
	List(ctx context.Context) ([]domain.Semester, error)
	Get(ctx context.Context, id string) (*domain.Semester, error)

	// Update replaces the editable fields of an existing semester.
	Update(ctx context.Context, semester domain.Semester) (*domain.Semester, error)

	// Delete removes a semester. With cascade its records go too.
	Delete(ctx context.Context, id string, cascade bool) error

	// Activate makes the semester the only active one.
	Activate(ctx context.Context, id string) (*domain.Semester, error)

	// Active returns the active semester, or domain.ErrNotFound.
	Active(ctx context.Context) (*domain.Semester, error)
}
