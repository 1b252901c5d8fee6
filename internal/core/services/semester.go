package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
)

// Ensure SemesterService implements the interface.
var _ driving.SemesterService = (*SemesterService)(nil)

// SemesterService manages academic semesters.
type SemesterService struct {
	semesters driven.SemesterStore
	records   driven.RecordStore
	activity  driven.ActivitySink
	now       func() time.Time
}

// NewSemesterService creates a semester service. records is needed only
// for cascading deletes; activity may be nil.
func NewSemesterService(semesters driven.SemesterStore, records driven.RecordStore, activity driven.ActivitySink) *SemesterService {
	return &SemesterService{
		semesters: semesters,
		records:   records,
		activity:  activity,
		now:       time.Now,
	}
}

// Create adds a semester. It starts inactive unless Active is set.
func (s *SemesterService) Create(ctx context.Context, semester domain.Semester) (*domain.Semester, error) {
	if s.semesters == nil {
		return nil, domain.ErrNotImplemented
	}
	semester.Name = strings.TrimSpace(semester.Name)
	if err := semester.Validate(); err != nil {
		return nil, fmt.Errorf("%w: semester needs a name, a non-negative year and an end after its start", err)
	}

	now := s.now().UTC()
	semester.ID = uuid.NewString()
	semester.CreatedAt = now
	semester.UpdatedAt = now
	activate := semester.Active
	semester.Active = false

	if err := s.semesters.Save(ctx, &semester); err != nil {
		return nil, fmt.Errorf("save semester: %w", err)
	}
	if activate {
		return s.Activate(ctx, semester.ID)
	}
	s.publish("semester %s created", semester.Name)
	return &semester, nil
}

// List returns all semesters.
func (s *SemesterService) List(ctx context.Context) ([]domain.Semester, error) {
	if s.semesters == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.semesters.List(ctx)
}

// Get retrieves a semester by ID.
func (s *SemesterService) Get(ctx context.Context, id string) (*domain.Semester, error) {
	if s.semesters == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.semesters.Get(ctx, id)
}

// Update replaces name, year and dates. Activation goes through Activate.
func (s *SemesterService) Update(ctx context.Context, semester domain.Semester) (*domain.Semester, error) {
	if s.semesters == nil {
		return nil, domain.ErrNotImplemented
	}
	existing, err := s.semesters.Get(ctx, semester.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(semester.Name)
	existing.Year = semester.Year
	existing.StartDate = semester.StartDate
	existing.EndDate = semester.EndDate
	if err := existing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: semester needs a name, a non-negative year and an end after its start", err)
	}
	existing.UpdatedAt = s.now().UTC()

	if err := s.semesters.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("save semester: %w", err)
	}
	s.publish("semester %s updated", existing.Name)
	return existing, nil
}

// Delete removes a semester, and its records when cascade is set.
func (s *SemesterService) Delete(ctx context.Context, id string, cascade bool) error {
	if s.semesters == nil {
		return domain.ErrNotImplemented
	}
	semester, err := s.semesters.Get(ctx, id)
	if err != nil {
		return err
	}
	if cascade {
		if s.records == nil {
			return fmt.Errorf("cascade delete: %w", domain.ErrNotImplemented)
		}
		removed, err := s.records.DeleteBySemester(ctx, id)
		if err != nil {
			return fmt.Errorf("delete semester records: %w", err)
		}
		s.publish("%d records of semester %s deleted", removed, semester.Name)
	}
	if err := s.semesters.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	s.publish("semester %s deleted", semester.Name)
	return nil
}

// Activate makes the semester the only active one.
func (s *SemesterService) Activate(ctx context.Context, id string) (*domain.Semester, error) {
	if s.semesters == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := s.semesters.Activate(ctx, id); err != nil {
		return nil, err
	}
	semester, err := s.semesters.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("semester %s is now active", semester.Name)
	return semester, nil
}

// Active returns the active semester.
func (s *SemesterService) Active(ctx context.Context) (*domain.Semester, error) {
	if s.semesters == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.semesters.Active(ctx)
}

func (s *SemesterService) publish(format string, args ...any) {
	if s.activity == nil {
		return
	}
	s.activity.Publish(domain.Activity{
		Kind:    domain.ActivitySemesterChange,
		Message: fmt.Sprintf(format, args...),
		At:      s.now().UTC(),
	})
}
