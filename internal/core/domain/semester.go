package domain

import (
	"strings"
	"time"
)

// Semester is an academic term that uploaded records are filed under.
// At most one semester is active at a time.
type Semester struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Year      int        `json:"year"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Validate checks the semester fields.
func (s Semester) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidInput
	}
	if s.Year < 0 {
		return ErrInvalidInput
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return ErrInvalidInput
	}
	return nil
}
