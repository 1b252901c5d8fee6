package httpapi

import (
	"errors"

	"github.com/custodia-labs/markscan/internal/core/ports/driving"
)

// Port errors returned by Ports.Validate.
var (
	ErrMissingSearchService = errors.New("httpapi: search service is required")
	ErrMissingAuthService   = errors.New("httpapi: auth service is required")
)

// Ports aggregates the driving ports the HTTP API serves.
type Ports struct {
	// Search answers public result lookups. Required.
	Search driving.SearchService

	// Auth issues and checks admin sessions. Required.
	Auth driving.AuthService

	// Records handles uploads and record administration.
	Records driving.RecordService

	// Admins manages administrator accounts.
	Admins driving.AdminService

	// Semesters manages academic semesters.
	Semesters driving.SemesterService

	// Activity serves the live feed and health report.
	Activity driving.ActivityService
}

// Validate ensures all required ports are set. Routes whose optional port
// is nil answer 501.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Auth == nil {
		return ErrMissingAuthService
	}
	return nil
}
