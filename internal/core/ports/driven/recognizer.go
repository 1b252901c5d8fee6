package driven

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// Recognizer extracts raw text from a scanned marksheet.
// Implementations must honour ctx cancellation where the engine allows it.
type Recognizer interface {
	// Name identifies the engine in logs and health reports.
	Name() string

	// Recognize returns the text found in the image. An error means the
	// engine could not run; an image with no text returns "" and nil.
	Recognize(ctx context.Context, img domain.Image) (string, error)
}

// ImagePreprocessor prepares an image for recognition, for example by
// decoding exotic formats and converting to grayscale.
type ImagePreprocessor interface {
	Prepare(img domain.Image) (domain.Image, error)
}
