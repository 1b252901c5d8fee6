package mcp

import (
	"context"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	record *domain.StudentRecord
	err    error

	gotName, gotRegd string
}

func (m *mockSearchService) Lookup(_ context.Context, name, tuRegd string) (*domain.StudentRecord, error) {
	m.gotName, m.gotRegd = name, tuRegd
	return m.record, m.err
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	records []domain.StudentRecord
	record  *domain.StudentRecord
	err     error
}

func (m *mockRecordService) Process(_ context.Context, _ domain.Upload) (*domain.StudentRecord, error) {
	return m.record, m.err
}

func (m *mockRecordService) ProcessBatch(_ context.Context, _ []domain.Upload) domain.BatchReport {
	return domain.BatchReport{}
}

func (m *mockRecordService) Extract(_ context.Context, _ domain.Image) (domain.OCRResult, error) {
	return domain.OCRResult{}, m.err
}

func (m *mockRecordService) Get(_ context.Context, _ string) (*domain.StudentRecord, error) {
	return m.record, m.err
}

func (m *mockRecordService) List(_ context.Context, _ domain.RecordFilter) ([]domain.StudentRecord, error) {
	return m.records, m.err
}

func (m *mockRecordService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockSemesterService is a mock implementation of driving.SemesterService.
type mockSemesterService struct {
	semesters []domain.Semester
	semester  *domain.Semester
	err       error
}

func (m *mockSemesterService) Create(_ context.Context, _ domain.Semester) (*domain.Semester, error) {
	return m.semester, m.err
}

func (m *mockSemesterService) List(_ context.Context) ([]domain.Semester, error) {
	return m.semesters, m.err
}

func (m *mockSemesterService) Get(_ context.Context, _ string) (*domain.Semester, error) {
	return m.semester, m.err
}

func (m *mockSemesterService) Update(_ context.Context, _ domain.Semester) (*domain.Semester, error) {
	return m.semester, m.err
}

func (m *mockSemesterService) Delete(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockSemesterService) Activate(_ context.Context, _ string) (*domain.Semester, error) {
	return m.semester, m.err
}

func (m *mockSemesterService) Active(_ context.Context) (*domain.Semester, error) {
	return m.semester, m.err
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
