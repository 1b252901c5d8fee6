package tesseract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

func TestNew_Defaults(t *testing.T) {
	e := New(Options{})
	assert.Equal(t, "tesseract", e.Name())
	assert.Equal(t, []string{DefaultLanguage}, e.Languages())
	assert.Equal(t, DefaultDPI, e.opts.DPI)
}

func TestNew_KeepsOptions(t *testing.T) {
	e := New(Options{Languages: []string{"eng", "nep"}, DPI: 150, PageSegMode: 6})
	assert.Equal(t, []string{"eng", "nep"}, e.Languages())
	assert.Equal(t, 150, e.opts.DPI)
	assert.Equal(t, 6, e.opts.PageSegMode)
}

func TestRecognize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Recognize(ctx, domain.Image{Filename: "a.png", Data: []byte{1}})
	assert.Error(t, err)
	if !Available() {
		assert.ErrorIs(t, err, domain.ErrRecognizerUnavailable)
	}
}
