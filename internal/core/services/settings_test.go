package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/markscan/internal/core/domain"
)

func TestSettingsService_Get_Defaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_FromConfig(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"server.addr":                "127.0.0.1:9000",
		"storage.backend":            "memory",
		"ocr.engine":                 "vertex",
		"ocr.languages":              []any{"eng", "nep"},
		"ocr.timeout_seconds":        int64(30),
		"upload.workers":             8,
		"auth.session_ttl_minutes":   int64(90),
		"auth.login_rate_per_minute": 3,
		"extraction.pattern_pack":    "/etc/markscan/pack.yaml",
	})
	service := NewSettingsService(store)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", settings.Server.Addr)
	assert.Equal(t, domain.StorageMemory, settings.Storage.Backend)
	assert.Equal(t, domain.OCRVertex, settings.OCR.Engine)
	assert.Equal(t, []string{"eng", "nep"}, settings.OCR.Languages)
	assert.Equal(t, 30*time.Second, settings.OCR.Timeout)
	assert.Equal(t, 8, settings.Upload.Workers)
	assert.Equal(t, 90*time.Minute, settings.Auth.SessionTTL)
	assert.Equal(t, 3, settings.Auth.LoginRatePerMinute)
	assert.Equal(t, "/etc/markscan/pack.yaml", settings.PatternPack)
}

func TestSettingsService_Get_InvalidEnumsFallBack(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"storage.backend": "postgres",
		"images.backend":  "s3",
		"ocr.engine":      "abbyy",
	})
	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Images.Backend, settings.Images.Backend)
	assert.Equal(t, defaults.OCR.Engine, settings.OCR.Engine)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	want := domain.DefaultAppSettings()
	want.Server.Addr = ":9999"
	want.Images.Backend = domain.ImagesGCS
	want.Images.Bucket = "scans"
	want.OCR.Languages = []string{"eng", "nep"}
	want.Upload.Workers = 2
	want.WatchDir = "/srv/inbox"

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"defaults", nil, false},
		{"firestore without project", map[string]any{"storage.backend": "firestore"}, true},
		{"firestore with project", map[string]any{"storage.backend": "firestore", "firestore.project_id": "p"}, false},
		{"gcs without bucket", map[string]any{"images.backend": "gcs"}, true},
		{"vertex without project", map[string]any{"ocr.engine": "vertex"}, true},
		{"vertex with project", map[string]any{"ocr.engine": "vertex", "vertex.project_id": "p"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStoreWith(tt.values))
			err := service.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_NilStore(t *testing.T) {
	service := NewSettingsService(nil)

	_, err := service.Get()
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.ErrorIs(t, service.Save(&domain.AppSettings{}), domain.ErrNotImplemented)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
