package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServerAddr       = "server.addr"
	keyStorageBackend   = "storage.backend"
	keyStorageDataDir   = "storage.data_dir"
	keyFirestoreProject = "firestore.project_id"
	keyFirestoreColl    = "firestore.collection"
	keyImagesBackend    = "images.backend"
	keyImagesDir        = "images.dir"
	keyGCSBucket        = "gcs.bucket"
	keyOCREngine        = "ocr.engine"
	keyOCRLanguages     = "ocr.languages"
	keyOCRTimeout       = "ocr.timeout_seconds"
	keyOCRDPI           = "ocr.dpi"
	keyVertexProject    = "vertex.project_id"
	keyVertexRegion     = "vertex.region"
	keyVertexModel      = "vertex.model"
	keyUploadWorkers    = "upload.workers"
	keyPatternPack      = "extraction.pattern_pack"
	keySessionTTL       = "auth.session_ttl_minutes"
	keyLoginRate        = "auth.login_rate_per_minute"
	keyWatchDir         = "watch.dir"
)

// SettingsService maps flat config keys to typed settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
		Storage: domain.StorageSettings{
			Backend:             domain.StorageBackend(s.getString(keyStorageBackend, string(d.Storage.Backend))),
			DataDir:             s.configStore.GetString(keyStorageDataDir),
			FirestoreProject:    s.configStore.GetString(keyFirestoreProject),
			FirestoreCollection: s.getString(keyFirestoreColl, d.Storage.FirestoreCollection),
		},
		Images: domain.ImageSettings{
			Backend: domain.ImageBackend(s.getString(keyImagesBackend, string(d.Images.Backend))),
			Dir:     s.configStore.GetString(keyImagesDir),
			Bucket:  s.configStore.GetString(keyGCSBucket),
		},
		OCR: domain.OCRSettings{
			Engine:        domain.OCREngine(s.getString(keyOCREngine, string(d.OCR.Engine))),
			Languages:     s.getStrings(keyOCRLanguages, d.OCR.Languages),
			DPI:           s.getInt(keyOCRDPI, d.OCR.DPI),
			Timeout:       time.Duration(s.getInt(keyOCRTimeout, int(d.OCR.Timeout/time.Second))) * time.Second,
			VertexProject: s.configStore.GetString(keyVertexProject),
			VertexRegion:  s.getString(keyVertexRegion, d.OCR.VertexRegion),
			VertexModel:   s.getString(keyVertexModel, d.OCR.VertexModel),
		},
		Upload: domain.UploadSettings{
			Workers: s.getInt(keyUploadWorkers, d.Upload.Workers),
		},
		Auth: domain.AuthSettings{
			SessionTTL:         time.Duration(s.getInt(keySessionTTL, int(d.Auth.SessionTTL/time.Minute))) * time.Minute,
			LoginRatePerMinute: s.getInt(keyLoginRate, d.Auth.LoginRatePerMinute),
		},
		PatternPack: s.configStore.GetString(keyPatternPack),
		WatchDir:    s.configStore.GetString(keyWatchDir),
	}

	if !settings.Storage.Backend.IsValid() {
		settings.Storage.Backend = d.Storage.Backend
	}
	if !settings.Images.Backend.IsValid() {
		settings.Images.Backend = d.Images.Backend
	}
	if !settings.OCR.Engine.IsValid() {
		settings.OCR.Engine = d.OCR.Engine
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	values := []struct {
		key   string
		value any
	}{
		{keyServerAddr, settings.Server.Addr},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyFirestoreProject, settings.Storage.FirestoreProject},
		{keyFirestoreColl, settings.Storage.FirestoreCollection},
		{keyImagesBackend, string(settings.Images.Backend)},
		{keyImagesDir, settings.Images.Dir},
		{keyGCSBucket, settings.Images.Bucket},
		{keyOCREngine, string(settings.OCR.Engine)},
		{keyOCRLanguages, settings.OCR.Languages},
		{keyOCRDPI, settings.OCR.DPI},
		{keyOCRTimeout, int(settings.OCR.Timeout / time.Second)},
		{keyVertexProject, settings.OCR.VertexProject},
		{keyVertexRegion, settings.OCR.VertexRegion},
		{keyVertexModel, settings.OCR.VertexModel},
		{keyUploadWorkers, settings.Upload.Workers},
		{keySessionTTL, int(settings.Auth.SessionTTL / time.Minute)},
		{keyLoginRate, settings.Auth.LoginRatePerMinute},
		{keyPatternPack, settings.PatternPack},
		{keyWatchDir, settings.WatchDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Storage.Backend == domain.StorageFirestore && settings.Storage.FirestoreProject == "" {
		return fmt.Errorf("%w: storage backend firestore requires %s", domain.ErrInvalidInput, keyFirestoreProject)
	}
	if settings.Images.Backend == domain.ImagesGCS && settings.Images.Bucket == "" {
		return fmt.Errorf("%w: image backend gcs requires %s", domain.ErrInvalidInput, keyGCSBucket)
	}
	if settings.OCR.Engine == domain.OCRVertex && settings.OCR.VertexProject == "" {
		return fmt.Errorf("%w: ocr engine vertex requires %s", domain.ErrInvalidInput, keyVertexProject)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}
