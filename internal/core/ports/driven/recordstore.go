package driven

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// RecordStore persists student records.
// Backed by SQLite by default; Firestore and memory are alternatives.
type RecordStore interface {
	// Save stores or replaces a record by ID.
	Save(ctx context.Context, record *domain.StudentRecord) error

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.StudentRecord, error)

	// FindByIdentity retrieves the record whose trimmed, lower-cased name
	// and registration equal the given ones.
	// Returns domain.ErrNotFound if there is none.
	FindByIdentity(ctx context.Context, name, tuRegd string) (*domain.StudentRecord, error)

	// List returns records newest first.
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.StudentRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Delete removes a record.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteBySemester removes every record of a semester and returns how
	// many were removed.
	DeleteBySemester(ctx context.Context, semesterID string) (int, error)
}
