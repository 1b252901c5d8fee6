package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrExtractionFailed indicates a scan could not be turned into a usable record.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrRecognizerUnavailable indicates no OCR engine is available in this build.
	ErrRecognizerUnavailable = errors.New("text recognizer unavailable")

	// ErrUnauthorized indicates missing, invalid or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates too many attempts in a short period.
	ErrRateLimited = errors.New("rate limited")

	// ErrLastAdmin indicates the operation would remove the only administrator.
	ErrLastAdmin = errors.New("cannot remove the last administrator")

	// ErrStorageUnavailable indicates a configured storage backend is not usable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ExtractionHint is the remediation text attached to extraction failures.
const ExtractionHint = "ensure the image contains clear, readable text with student name and T.U. registration number"

// ExtractionError describes why a single file could not be processed.
// It matches ErrExtractionFailed with errors.Is.
type ExtractionError struct {
	// Filename is the display name of the scan.
	Filename string

	// Reason is a short description of what went wrong.
	Reason string

	// Hint tells the uploader how to fix the scan.
	Hint string

	// Err is the underlying cause, if any.
	Err error
}

// NewExtractionError builds an ExtractionError with the standard hint.
func NewExtractionError(filename, reason string, err error) *ExtractionError {
	return &ExtractionError{
		Filename: filename,
		Reason:   reason,
		Hint:     ExtractionHint,
		Err:      err,
	}
}

// Error implements error.
func (e *ExtractionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Filename, e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExtractionFailed.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}
