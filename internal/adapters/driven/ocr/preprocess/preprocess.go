// Package preprocess normalises scans before recognition.
//
// Every supported format is decoded, converted to 8-bit grayscale,
// upscaled when narrower than the minimum width, and re-encoded as PNG.
// Vertex AI rejects BMP and TIFF input.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Register decoders for image.Decode.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure Preprocessor implements the interface.
var _ driven.ImagePreprocessor = (*Preprocessor)(nil)

// DefaultMinWidth is the narrowest page width passed to the recognizer.
// Narrower scans are upscaled to it.
const DefaultMinWidth = 1600

// maxPixels bounds decoded images to keep memory use predictable.
const maxPixels = 80_000_000

// Preprocessor is a driven.ImagePreprocessor built on x/image.
type Preprocessor struct {
	minWidth int
}

// New creates a preprocessor. minWidth <= 0 disables upscaling.
func New(minWidth int) *Preprocessor {
	return &Preprocessor{minWidth: minWidth}
}

// Prepare decodes img and returns a grayscale PNG copy.
func (p *Preprocessor) Prepare(img domain.Image) (domain.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: decoding %s: %v", domain.ErrInvalidInput, img.Filename, err)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return domain.Image{}, fmt.Errorf("%w: %s is %dx%d, too large", domain.ErrInvalidInput, img.Filename, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: decoding %s %s: %v", domain.ErrInvalidInput, format, img.Filename, err)
	}

	gray := p.grayscale(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return domain.Image{}, fmt.Errorf("encoding %s: %w", img.Filename, err)
	}

	return domain.Image{
		Filename:    img.Filename,
		Data:        buf.Bytes(),
		ContentType: "image/png",
	}, nil
}

// grayscale converts src to *image.Gray, scaling it up to minWidth.
func (p *Preprocessor) grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if p.minWidth > 0 && w > 0 && w < p.minWidth {
		h = h * p.minWidth / w
		w = p.minWidth
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst
}
