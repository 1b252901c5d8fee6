//go:build cgo

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// Available reports whether this build can run tesseract.
func Available() bool { return true }

// Recognize returns the text tesseract finds in the image.
// Tesseract cannot be interrupted; ctx is only checked before starting.
func (e *Engine) Recognize(ctx context.Context, img domain.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.opts.Languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.opts.DPI)); err != nil {
		return "", fmt.Errorf("set dpi: %w", err)
	}
	if e.opts.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.opts.PageSegMode)); err != nil {
			return "", fmt.Errorf("set page segmentation: %w", err)
		}
	}
	if err := c.SetImageFromBytes(img.Data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
