//go:build !cgo

package tesseract

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// Available reports whether this build can run tesseract.
func Available() bool { return false }

// Recognize always fails in builds without CGO.
func (e *Engine) Recognize(_ context.Context, _ domain.Image) (string, error) {
	return "", domain.ErrRecognizerUnavailable
}
