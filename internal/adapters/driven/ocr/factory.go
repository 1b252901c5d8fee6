package ocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/markscan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/markscan/internal/adapters/driven/ocr/preprocess"
	"github.com/custodia-labs/markscan/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/markscan/internal/adapters/driven/ocr/vertex"
	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// InitResult contains the recognition stack built from settings.
type InitResult struct {
	Recognizer   driven.Recognizer
	Preprocessor driven.ImagePreprocessor
	PromptStore  driven.PromptStore // Only set for the vertex engine.

	closer func() error
}

// Close releases the recognizer's client, if it holds one.
func (r *InitResult) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer()
}

// Create builds the recognizer selected by settings.Engine together with
// the preprocessor that feeds it. promptDir is passed to the prompt store
// of the vertex engine; empty means ~/.markscan/prompts.
func Create(ctx context.Context, settings *domain.OCRSettings, promptDir string) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no OCR settings", domain.ErrInvalidInput)
	}

	switch settings.Engine {
	case domain.OCRTesseract:
		if !tesseract.Available() {
			return nil, fmt.Errorf("%w: this build has no tesseract support. Set ocr.engine = \"vertex\" or rebuild with CGO",
				domain.ErrRecognizerUnavailable)
		}
		return &InitResult{
			Recognizer: tesseract.New(tesseract.Options{
				Languages: settings.Languages,
				DPI:       settings.DPI,
			}),
			Preprocessor: preprocess.New(preprocess.DefaultMinWidth),
		}, nil

	case domain.OCRVertex:
		return createVertex(ctx, settings, promptDir)

	default:
		return nil, fmt.Errorf("%w: unsupported OCR engine %q", domain.ErrInvalidInput, settings.Engine)
	}
}

// createVertex creates a Gemini recognizer with user-editable prompts.
func createVertex(ctx context.Context, settings *domain.OCRSettings, promptDir string) (*InitResult, error) {
	if settings.VertexProject == "" {
		return nil, fmt.Errorf("%w: ocr engine vertex requires vertex.project_id", domain.ErrInvalidInput)
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, err
	}

	recognizer, err := vertex.New(ctx, vertex.Config{
		ProjectID: settings.VertexProject,
		Region:    settings.VertexRegion,
		Model:     settings.VertexModel,
	}, prompts)
	if err != nil {
		return nil, errors.Join(domain.ErrRecognizerUnavailable, err)
	}

	return &InitResult{
		Recognizer: recognizer,
		// Gemini rejects BMP and TIFF.
		Preprocessor: preprocess.New(0),
		PromptStore:  prompts,
		closer:       recognizer.Close,
	}, nil
}
