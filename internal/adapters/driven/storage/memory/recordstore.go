package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.StudentRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.StudentRecord),
	}
}

// Save stores or replaces a record. A different record with the same
// identity is rejected with domain.ErrAlreadyExists.
func (s *RecordStore) Save(_ context.Context, record *domain.StudentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nameKey, regdKey := record.NameKey(), record.RegdKey()
	for id, existing := range s.records {
		if id != record.ID && existing.NameKey() == nameKey && existing.RegdKey() == regdKey {
			return domain.ErrAlreadyExists
		}
	}
	s.records[record.ID] = *record
	return nil
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(_ context.Context, id string) (*domain.StudentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// FindByIdentity retrieves the record matching name and registration.
func (s *RecordStore) FindByIdentity(_ context.Context, name, tuRegd string) (*domain.StudentRecord, error) {
	nameKey, regdKey := domain.IdentityKey(name, tuRegd)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.NameKey() == nameKey && record.RegdKey() == regdKey {
			return &record, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns records newest first.
func (s *RecordStore) List(_ context.Context, filter domain.RecordFilter) ([]domain.StudentRecord, error) {
	s.mu.RLock()
	result := make([]domain.StudentRecord, 0, len(s.records))
	for _, record := range s.records {
		if filter.SemesterID != "" && record.SemesterID != filter.SemesterID {
			continue
		}
		result = append(result, record)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return paginate(result, filter.Offset, filter.Limit), nil
}

// Count returns the number of stored records.
func (s *RecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Delete removes a record.
func (s *RecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// DeleteBySemester removes every record of a semester.
func (s *RecordStore) DeleteBySemester(_ context.Context, semesterID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, record := range s.records {
		if record.SemesterID == semesterID {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
