package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
	"github.com/custodia-labs/markscan/internal/extraction"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// Defaults for record processing.
const (
	DefaultRecognitionTimeout = 60 * time.Second
	DefaultUploadWorkers      = 4
)

// RecordService runs scans through recognition and extraction and stores
// the resulting student records.
type RecordService struct {
	recognizer   driven.Recognizer
	records      driven.RecordStore
	preprocessor driven.ImagePreprocessor
	images       driven.ImageStore
	semesters    driven.SemesterStore
	activity     driven.ActivitySink
	extractor    *extraction.Extractor
	timeout      time.Duration
	workers      int
	now          func() time.Time

	// saveMu serialises identity lookup and save so concurrent uploads of
	// the same student replace rather than duplicate.
	saveMu sync.Mutex
}

// RecordOption configures a RecordService.
type RecordOption func(*RecordService)

// WithPreprocessor prepares images before recognition.
func WithPreprocessor(p driven.ImagePreprocessor) RecordOption {
	return func(s *RecordService) { s.preprocessor = p }
}

// WithImageStore keeps uploaded scans.
func WithImageStore(images driven.ImageStore) RecordOption {
	return func(s *RecordService) { s.images = images }
}

// WithSemesterStore files new records under the active semester.
func WithSemesterStore(semesters driven.SemesterStore) RecordOption {
	return func(s *RecordService) { s.semesters = semesters }
}

// WithActivitySink publishes upload events.
func WithActivitySink(sink driven.ActivitySink) RecordOption {
	return func(s *RecordService) { s.activity = sink }
}

// WithExtractor replaces the built-in extractor, for example to add a pattern pack.
func WithExtractor(x *extraction.Extractor) RecordOption {
	return func(s *RecordService) {
		if x != nil {
			s.extractor = x
		}
	}
}

// WithRecognitionTimeout bounds recognition of a single document.
func WithRecognitionTimeout(d time.Duration) RecordOption {
	return func(s *RecordService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithWorkers bounds concurrent recognitions in a batch.
func WithWorkers(n int) RecordOption {
	return func(s *RecordService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewRecordService creates a record service. recognizer may be nil in
// builds without an OCR engine; processing then fails with
// domain.ErrRecognizerUnavailable.
func NewRecordService(recognizer driven.Recognizer, records driven.RecordStore, opts ...RecordOption) *RecordService {
	s := &RecordService{
		recognizer: recognizer,
		records:    records,
		extractor:  extraction.New(),
		timeout:    DefaultRecognitionTimeout,
		workers:    DefaultUploadWorkers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process recognises, extracts and stores one upload.
func (s *RecordService) Process(ctx context.Context, upload domain.Upload) (*domain.StudentRecord, error) {
	if s.records == nil {
		return nil, domain.ErrNotImplemented
	}

	ex, err := s.recognise(ctx, upload.Image)
	if err != nil {
		s.publishFailure(upload, err)
		return nil, err
	}
	if !ex.Complete() {
		err := domain.NewExtractionError(upload.Filename, "could not find "+strings.Join(ex.Missing(), " or "), nil)
		s.publishFailure(upload, err)
		return nil, err
	}

	record, err := s.store(ctx, upload, ex.Result())
	if err != nil {
		s.publishFailure(upload, err)
		return nil, err
	}

	logger.Info("stored record %s for %s (%s)", record.ID, upload.Filename, record.Result)
	s.publish(domain.ActivityUpload, upload.UploadedBy, "%s uploaded: %s %s", upload.Filename, record.Name, record.Result)
	return record, nil
}

// ProcessBatch processes uploads with a bounded worker pool. Every upload
// gets an outcome; one failure never stops the others.
func (s *RecordService) ProcessBatch(ctx context.Context, uploads []domain.Upload) domain.BatchReport {
	logger.Section(fmt.Sprintf("Batch upload (%d files, %d workers)", len(uploads), s.workers))

	outcomes := make([]domain.FileOutcome, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, upload := range uploads {
		g.Go(func() error {
			outcome := domain.FileOutcome{Filename: upload.Filename}
			if err := ctx.Err(); err != nil {
				outcome.Error = domain.NewExtractionError(upload.Filename, "upload cancelled", err).Error()
				outcomes[i] = outcome
				return nil
			}
			record, err := s.Process(ctx, upload)
			if err != nil {
				logger.Warn("upload %s failed: %v", upload.Filename, err)
				outcome.Error = err.Error()
			} else {
				outcome.Record = record
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait()

	report := domain.BatchReport{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	logger.Info("batch finished: %d succeeded, %d failed", report.Succeeded, report.Failed)
	return report
}

// Extract recognises and extracts without storing. The result is returned
// even when it is rejected so callers can show what was found.
func (s *RecordService) Extract(ctx context.Context, img domain.Image) (domain.OCRResult, error) {
	ex, err := s.recognise(ctx, img)
	if err != nil {
		return domain.OCRResult{}, err
	}
	result := ex.Result()
	if !ex.Complete() {
		return result, domain.NewExtractionError(img.Filename, "could not find "+strings.Join(ex.Missing(), " or "), nil)
	}
	return result, nil
}

// Get retrieves a record by ID.
func (s *RecordService) Get(ctx context.Context, id string) (*domain.StudentRecord, error) {
	if s.records == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.records.Get(ctx, id)
}

// List returns stored records.
func (s *RecordService) List(ctx context.Context, filter domain.RecordFilter) ([]domain.StudentRecord, error) {
	if s.records == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.records.List(ctx, filter)
}

// Delete removes a record and its stored scan.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if s.records == nil {
		return domain.ErrNotImplemented
	}
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.removeImage(ctx, record.ImagePath)
	s.publish(domain.ActivityRecordDeleted, "", "record %s (%s) deleted", record.ID, record.Name)
	return nil
}

type recognition struct {
	text string
	err  error
}

// recognise runs the recognizer under the per-document timeout and
// extracts fields from its text. Every failure is an ExtractionError.
func (s *RecordService) recognise(ctx context.Context, img domain.Image) (domain.Extraction, error) {
	if s.recognizer == nil {
		return domain.Extraction{}, domain.NewExtractionError(img.Filename, "no text recognizer", domain.ErrRecognizerUnavailable)
	}
	if len(img.Data) == 0 {
		return domain.Extraction{}, domain.NewExtractionError(img.Filename, "empty file", nil)
	}

	if s.preprocessor != nil {
		prepared, err := s.preprocessor.Prepare(img)
		if err != nil {
			return domain.Extraction{}, domain.NewExtractionError(img.Filename, "unreadable image", err)
		}
		img = prepared
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Engines that ignore ctx still cannot hold the caller past the timeout.
	done := make(chan recognition, 1)
	go func() {
		text, err := s.recognizer.Recognize(ctx, img)
		done <- recognition{text: text, err: err}
	}()

	var r recognition
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = ctx.Err()
	}

	if r.err != nil {
		switch {
		case errors.Is(r.err, context.DeadlineExceeded):
			return domain.Extraction{}, domain.NewExtractionError(img.Filename, fmt.Sprintf("recognition timed out after %s", s.timeout), r.err)
		case errors.Is(r.err, context.Canceled):
			return domain.Extraction{}, domain.NewExtractionError(img.Filename, "recognition cancelled", r.err)
		default:
			return domain.Extraction{}, domain.NewExtractionError(img.Filename, "recognition failed", r.err)
		}
	}

	logger.Debug("%s: recognised %d characters with %s", img.Filename, len(r.text), s.recognizer.Name())
	ex := s.extractor.Extract(r.text)
	logger.Debug("%s: status %s decided by %s", img.Filename, ex.Status, ex.Rule)
	return ex, nil
}

// store saves the result, replacing any record with the same identity.
func (s *RecordService) store(ctx context.Context, upload domain.Upload, result domain.OCRResult) (*domain.StudentRecord, error) {
	record := &domain.StudentRecord{
		ID:         uuid.NewString(),
		OCRResult:  result,
		UploadedBy: upload.UploadedBy,
		CreatedAt:  s.now().UTC(),
	}

	if s.semesters != nil {
		active, err := s.semesters.Active(ctx)
		switch {
		case err == nil:
			record.SemesterID = active.ID
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("look up active semester: %w", err)
		}
	}

	if s.images != nil {
		path, err := s.images.Put(ctx, uuid.NewString()+strings.ToLower(filepath.Ext(upload.Filename)), upload.Data)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		record.ImagePath = path
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	existing, err := s.records.FindByIdentity(ctx, result.Name, result.TURegd)
	switch {
	case err == nil:
		record.ID = existing.ID
	case !errors.Is(err, domain.ErrNotFound):
		s.removeImage(ctx, record.ImagePath)
		return nil, fmt.Errorf("find existing record: %w", err)
	}

	if err := s.records.Save(ctx, record); err != nil {
		s.removeImage(ctx, record.ImagePath)
		return nil, fmt.Errorf("save record: %w", err)
	}

	if existing != nil && existing.ImagePath != "" && existing.ImagePath != record.ImagePath {
		logger.Debug("replaced record %s, removing old scan %s", record.ID, existing.ImagePath)
		s.removeImage(ctx, existing.ImagePath)
	}
	return record, nil
}

func (s *RecordService) removeImage(ctx context.Context, path string) {
	if s.images == nil || path == "" {
		return
	}
	if err := s.images.Delete(ctx, path); err != nil {
		logger.Warn("remove image %s: %v", path, err)
	}
}

func (s *RecordService) publishFailure(upload domain.Upload, err error) {
	s.publish(domain.ActivityUploadFailed, upload.UploadedBy, "%s rejected: %v", upload.Filename, err)
}

func (s *RecordService) publish(kind domain.ActivityKind, actor, format string, args ...any) {
	if s.activity == nil {
		return
	}
	s.activity.Publish(domain.Activity{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Actor:   actor,
		At:      s.now().UTC(),
	})
}
