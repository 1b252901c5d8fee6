package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers student result lookups.
type SearchService struct {
	records  driven.RecordStore
	activity driven.ActivitySink
}

// NewSearchService creates a new search service. activity may be nil.
func NewSearchService(records driven.RecordStore, activity driven.ActivitySink) *SearchService {
	return &SearchService{
		records:  records,
		activity: activity,
	}
}

// Lookup finds the record for a (name, registration) pair.
func (s *SearchService) Lookup(ctx context.Context, name, tuRegd string) (*domain.StudentRecord, error) {
	if s.records == nil {
		return nil, domain.ErrNotImplemented
	}

	name = strings.TrimSpace(name)
	tuRegd = strings.TrimSpace(tuRegd)
	if name == "" || tuRegd == "" {
		return nil, fmt.Errorf("%w: name and registration number are required", domain.ErrInvalidInput)
	}

	// Sentinels are never stored, but guard against them being searched for
	// in any letter case.
	nameKey, regdKey := domain.IdentityKey(name, tuRegd)
	sentinelName, sentinelRegd := domain.IdentityKey(domain.NameNotFound, domain.RegistrationNotFound)
	if nameKey == sentinelName || regdKey == sentinelRegd {
		return nil, domain.ErrNotFound
	}

	record, err := s.records.FindByIdentity(ctx, name, tuRegd)
	found := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup: %w", err)
	}

	if s.activity != nil {
		outcome := "no match"
		if found {
			outcome = "found"
		}
		s.activity.Publish(domain.Activity{
			Kind:    domain.ActivitySearch,
			Message: "result lookup: " + outcome,
			At:      time.Now().UTC(),
		})
	}

	if !found {
		return nil, domain.ErrNotFound
	}
	return record, nil
}
