package mcp

import (
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
	"github.com/custodia-labs/markscan/internal/extraction"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers result lookups.
	Search driving.SearchService

	// Records exposes stored records as resources.
	Records driving.RecordService

	// Semesters exposes the semester list as a resource.
	Semesters driving.SemesterService

	// Extractor parses raw marksheet text. Defaults to the built-in rules.
	Extractor *extraction.Extractor
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
