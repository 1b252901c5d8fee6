package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/markscan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/markscan/internal/adapters/driven/images/gcs"
	"github.com/custodia-labs/markscan/internal/adapters/driven/images/local"
	"github.com/custodia-labs/markscan/internal/adapters/driven/ocr"
	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/firestore"
	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/markscan/internal/adapters/driving/cli"
	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/services"
	"github.com/custodia-labs/markscan/internal/extraction"
	"github.com/custodia-labs/markscan/internal/logger"
)

// createOCR builds the recognition stack. Tests replace it.
var createOCR = ocr.Create

// stores groups the persistence ports of one storage backend.
type stores struct {
	records   driven.RecordStore
	admins    driven.AdminStore
	sessions  driven.SessionStore
	semesters driven.SemesterStore
}

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// bootstrap is the cli.Bootstrap for the markscan binary.
func bootstrap(configDir string, full bool) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	svc := &cli.Services{
		Settings: settingsService,
		Config:   settings,
	}
	if !full {
		return svc, nil
	}

	if err := settingsService.Validate(); err != nil {
		return nil, fmt.Errorf("%w. Run 'markscan settings show' to review", err)
	}
	logger.Debug("config: %s", configStore.Path())

	ctx := context.Background()
	var cl closers
	fail := func(err error) (*cli.Services, error) {
		if cerr := cl.close(); cerr != nil {
			logger.Warn("releasing resources: %v", cerr)
		}
		return nil, err
	}

	st, err := openStorage(ctx, settings, configDir, &cl)
	if err != nil {
		return fail(err)
	}

	images, err := openImages(ctx, settings, configDir, &cl)
	if err != nil {
		return fail(err)
	}

	recognition, err := createOCR(ctx, &settings.OCR, subdir(configDir, "prompts"))
	if err != nil {
		return fail(fmt.Errorf("starting OCR engine: %w", err))
	}
	cl.add(recognition.Close)

	x, err := newExtractor(settings.PatternPack)
	if err != nil {
		return fail(err)
	}

	activity := services.NewActivityService(services.DefaultActivityCapacity, st.records, recognition.Recognizer.Name())
	admins := services.NewAdminService(st.admins, activity, bcrypt.DefaultCost)

	svc.Records = services.NewRecordService(recognition.Recognizer, st.records,
		services.WithPreprocessor(recognition.Preprocessor),
		services.WithImageStore(images),
		services.WithSemesterStore(st.semesters),
		services.WithActivitySink(activity),
		services.WithExtractor(x),
		services.WithRecognitionTimeout(settings.OCR.Timeout),
		services.WithWorkers(settings.Upload.Workers),
	)
	svc.Search = services.NewSearchService(st.records, activity)
	svc.Admins = admins
	svc.Auth = services.NewAuthService(admins, st.sessions, activity,
		settings.Auth.SessionTTL, settings.Auth.LoginRatePerMinute)
	svc.Semesters = services.NewSemesterService(st.semesters, st.records, activity)
	svc.Activity = activity
	svc.Sessions = st.sessions
	svc.Extractor = x
	svc.Close = cl.close

	logger.Debug("storage=%s images=%s ocr=%s", settings.Storage.Backend, settings.Images.Backend, recognition.Recognizer.Name())
	return svc, nil
}

// openStorage opens the configured record backend. Firestore holds only
// records; admins, sessions and semesters then live in memory.
func openStorage(ctx context.Context, settings *domain.AppSettings, configDir string, cl *closers) (*stores, error) {
	switch settings.Storage.Backend {
	case domain.StorageSQLite:
		dataDir := settings.Storage.DataDir
		if dataDir == "" {
			dataDir = subdir(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		cl.add(store.Close)
		logger.Debug("database: %s", store.Path())
		return &stores{
			records:   store.RecordStore(),
			admins:    store.AdminStore(),
			sessions:  store.SessionStore(),
			semesters: store.SemesterStore(),
		}, nil

	case domain.StorageFirestore:
		records, err := firestore.NewRecordStore(ctx, settings.Storage.FirestoreProject, settings.Storage.FirestoreCollection)
		if err != nil {
			return nil, fmt.Errorf("opening firestore: %w", err)
		}
		cl.add(records.Close)
		logger.Warn("firestore stores records only; administrators and semesters are kept in memory")
		return &stores{
			records:   records,
			admins:    memory.NewAdminStore(),
			sessions:  memory.NewSessionStore(),
			semesters: memory.NewSemesterStore(),
		}, nil

	case domain.StorageMemory:
		return &stores{
			records:   memory.NewRecordStore(),
			admins:    memory.NewAdminStore(),
			sessions:  memory.NewSessionStore(),
			semesters: memory.NewSemesterStore(),
		}, nil
	}
	return nil, fmt.Errorf("%w: unsupported storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
}

// openImages opens the store that keeps uploaded scans.
func openImages(ctx context.Context, settings *domain.AppSettings, configDir string, cl *closers) (driven.ImageStore, error) {
	switch settings.Images.Backend {
	case domain.ImagesGCS:
		store, err := gcs.NewStore(ctx, settings.Images.Bucket, "scans")
		if err != nil {
			return nil, fmt.Errorf("opening bucket %s: %w", settings.Images.Bucket, err)
		}
		cl.add(store.Close)
		return store, nil

	case domain.ImagesLocal:
		dir := settings.Images.Dir
		if dir == "" {
			dir = subdir(configDir, "images")
		}
		store, err := local.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("opening image directory: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("%w: unsupported image backend %q", domain.ErrInvalidInput, settings.Images.Backend)
}

// newExtractor builds the field extractor, adding the pattern pack if set.
func newExtractor(packPath string) (*extraction.Extractor, error) {
	if packPath == "" {
		return extraction.New(), nil
	}
	pack, err := extraction.LoadPack(packPath)
	if err != nil {
		return nil, fmt.Errorf("loading pattern pack: %w", err)
	}
	logger.Debug("pattern pack %s: %d rules", packPath, pack.Len())
	return extraction.New(extraction.WithPack(pack)), nil
}

// subdir places name under configDir. An empty configDir leaves the
// choice to the adapter's own default.
func subdir(configDir, name string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, name)
}
