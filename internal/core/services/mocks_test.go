package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// --- Mock implementations ---

// mockRecognizer implements driven.Recognizer for testing. Text is looked
// up by filename, falling back to text.
type mockRecognizer struct {
	text   string
	byFile map[string]string
	err    error

	// release, when set, blocks Recognize until it is closed, ignoring
	// ctx like a cgo engine would.
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (m *mockRecognizer) Name() string {
	return "mock"
}

func (m *mockRecognizer) Recognize(ctx context.Context, img domain.Image) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return "", m.err
	}
	if text, ok := m.byFile[img.Filename]; ok {
		return text, nil
	}
	return m.text, nil
}

func (m *mockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPreprocessor implements driven.ImagePreprocessor for testing.
type mockPreprocessor struct {
	err error
}

func (m *mockPreprocessor) Prepare(img domain.Image) (domain.Image, error) {
	if m.err != nil {
		return domain.Image{}, m.err
	}
	img.ContentType = "image/png"
	return img, nil
}

// recordingSink implements driven.ActivitySink for testing.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Activity
}

func (s *recordingSink) Publish(a domain.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, a)
}

func (s *recordingSink) Kinds() []domain.ActivityKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]domain.ActivityKind, len(s.events))
	for i, e := range s.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// failingRecordStore fails every call.
type failingRecordStore struct{}

var errStoreDown = errors.New("store down")

func (failingRecordStore) Save(context.Context, *domain.StudentRecord) error { return errStoreDown }
func (failingRecordStore) Get(context.Context, string) (*domain.StudentRecord, error) {
	return nil, errStoreDown
}
func (failingRecordStore) FindByIdentity(context.Context, string, string) (*domain.StudentRecord, error) {
	return nil, errStoreDown
}
func (failingRecordStore) List(context.Context, domain.RecordFilter) ([]domain.StudentRecord, error) {
	return nil, errStoreDown
}
func (failingRecordStore) Count(context.Context) (int, error) { return 0, errStoreDown }
func (failingRecordStore) Delete(context.Context, string) error { return errStoreDown }
func (failingRecordStore) DeleteBySemester(context.Context, string) (int, error) {
	return 0, errStoreDown
}
