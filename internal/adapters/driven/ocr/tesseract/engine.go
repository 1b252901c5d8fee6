// Package tesseract recognises marksheet text with libtesseract through
// gosseract. Builds without CGO get a stub that reports
// domain.ErrRecognizerUnavailable.
package tesseract

import "github.com/custodia-labs/markscan/internal/core/ports/driven"

// Ensure Engine implements the interface.
var _ driven.Recognizer = (*Engine)(nil)

// Defaults applied by New.
const (
	DefaultLanguage = "eng"
	DefaultDPI      = 300
)

// Options configures the engine.
type Options struct {
	// Languages are tesseract language codes, e.g. eng or nep.
	Languages []string

	// DPI is passed as user_defined_dpi. Zero uses DefaultDPI.
	DPI int

	// PageSegMode overrides tesseract's page segmentation when non-zero.
	PageSegMode int
}

// Engine is a Tesseract backed driven.Recognizer.
type Engine struct {
	opts Options
}

// New creates an engine. Missing options take defaults.
func New(opts Options) *Engine {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{DefaultLanguage}
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	return &Engine{opts: opts}
}

// Name identifies the engine.
func (e *Engine) Name() string { return "tesseract" }

// Languages returns the configured language codes.
func (e *Engine) Languages() []string { return e.opts.Languages }
