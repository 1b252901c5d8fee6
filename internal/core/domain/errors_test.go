package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrExtractionFailed", ErrExtractionFailed},
		{"ErrRecognizerUnavailable", ErrRecognizerUnavailable},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrLastAdmin", ErrLastAdmin},
		{"ErrStorageUnavailable", ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestExtractionError_IsExtractionFailed(t *testing.T) {
	err := NewExtractionError("scan.png", "name not found", nil)

	assert.True(t, errors.Is(err, ErrExtractionFailed))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ExtractionHint, err.Hint)
}

func TestExtractionError_WrapsCause(t *testing.T) {
	cause := errors.New("tesseract crashed")
	err := NewExtractionError("scan.png", "recognition failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrExtractionFailed))
	assert.Contains(t, err.Error(), "scan.png")
	assert.Contains(t, err.Error(), "tesseract crashed")
	assert.Contains(t, err.Error(), "T.U. registration number")
}

func TestExtractionError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("upload: %w", NewExtractionError("a.jpg", "unreadable", nil))

	var extErr *ExtractionError
	assert.True(t, errors.As(err, &extErr))
	assert.Equal(t, "a.jpg", extErr.Filename)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}
