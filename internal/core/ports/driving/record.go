package driving

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// RecordService turns scanned marksheets into stored student records.
type RecordService interface {
	// Process recognises, extracts and stores one upload.
	// Fails with an error matching domain.ErrExtractionFailed when the scan
	// yields no name or registration number.
	Process(ctx context.Context, upload domain.Upload) (*domain.StudentRecord, error)

	// ProcessBatch processes uploads concurrently. A failing file never
	// aborts the others; each outcome is reported in input order.
	ProcessBatch(ctx context.Context, uploads []domain.Upload) domain.BatchReport

	// Extract recognises and extracts without storing anything.
	Extract(ctx context.Context, img domain.Image) (domain.OCRResult, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*domain.StudentRecord, error)

	// List returns stored records.
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.StudentRecord, error)

	// Delete removes a record and its stored scan.
	Delete(ctx context.Context, id string) error
}

// SearchService answers student result lookups.
type SearchService interface {
	// Lookup finds the record matching name and registration, compared
	// trimmed and case-insensitively. Returns domain.ErrNotFound otherwise.
	Lookup(ctx context.Context, name, tuRegd string) (*domain.StudentRecord, error)
}
