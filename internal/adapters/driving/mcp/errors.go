// Package mcp provides an MCP (Model Context Protocol) server adapter for markscan.
// It lets AI assistants look up student results and run the field extractor.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
