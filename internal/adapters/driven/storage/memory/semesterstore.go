package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure SemesterStore implements the interface.
var _ driven.SemesterStore = (*SemesterStore)(nil)

// SemesterStore is an in-memory implementation of driven.SemesterStore.
type SemesterStore struct {
	mu        sync.RWMutex
	semesters map[string]domain.Semester
}

// NewSemesterStore creates a new in-memory semester store.
func NewSemesterStore() *SemesterStore {
	return &SemesterStore{
		semesters: make(map[string]domain.Semester),
	}
}

// Save stores or updates a semester.
func (s *SemesterStore) Save(_ context.Context, semester *domain.Semester) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.semesters {
		if id != semester.ID && strings.EqualFold(existing.Name, semester.Name) {
			return domain.ErrAlreadyExists
		}
	}
	s.semesters[semester.ID] = *semester
	return nil
}

// Get retrieves a semester by ID.
func (s *SemesterStore) Get(_ context.Context, id string) (*domain.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	semester, ok := s.semesters[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &semester, nil
}

// List returns all semesters, most recent year first.
func (s *SemesterStore) List(_ context.Context) ([]domain.Semester, error) {
	s.mu.RLock()
	result := make([]domain.Semester, 0, len(s.semesters))
	for _, semester := range s.semesters {
		result = append(result, semester)
	}
	s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Delete removes a semester.
func (s *SemesterStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.semesters[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.semesters, id)
	return nil
}

// Activate marks one semester active and every other one inactive.
func (s *SemesterStore) Activate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.semesters[id]; !ok {
		return domain.ErrNotFound
	}
	for key, semester := range s.semesters {
		semester.Active = key == id
		s.semesters[key] = semester
	}
	return nil
}

// Active returns the active semester.
func (s *SemesterStore) Active(_ context.Context) (*domain.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, semester := range s.semesters {
		if semester.Active {
			return &semester, nil
		}
	}
	return nil, domain.ErrNotFound
}
