package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/markscan/internal/adapters/driven/ocr/tesseract"
	"github.com/custodia-labs/markscan/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		var result *InitResult
		assert.NoError(t, result.Close())
	})

	t.Run("no closer", func(t *testing.T) {
		assert.NoError(t, (&InitResult{}).Close())
	})

	t.Run("closer is called", func(t *testing.T) {
		called := false
		result := &InitResult{closer: func() error { called = true; return nil }}
		require.NoError(t, result.Close())
		assert.True(t, called)
	})
}

func TestCreate_Tesseract(t *testing.T) {
	settings := &domain.OCRSettings{
		Engine:    domain.OCRTesseract,
		Languages: []string{"eng", "nep"},
		DPI:       200,
	}

	result, err := Create(context.Background(), settings, t.TempDir())
	if !tesseract.Available() {
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRecognizerUnavailable)
		return
	}

	require.NoError(t, err)
	assert.Equal(t, "tesseract", result.Recognizer.Name())
	assert.NotNil(t, result.Preprocessor)
	assert.Nil(t, result.PromptStore)
	assert.NoError(t, result.Close())
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.OCRSettings
		wantErr  error
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "unknown engine",
			settings: &domain.OCRSettings{Engine: "paddle"},
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "vertex without project",
			settings: &domain.OCRSettings{Engine: domain.OCRVertex, VertexRegion: "us-central1"},
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Create(context.Background(), tt.settings, t.TempDir())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
		})
	}
}
