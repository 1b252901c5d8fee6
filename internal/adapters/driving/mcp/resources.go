package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for markscan resources.
	uriScheme = "markscan://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "semesters",
		Name:        "semesters",
		Description: "Academic semesters, most recent first",
		MIMEType:    "application/json",
	}, s.handleSemestersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{recordId}",
		Name:        "student-record",
		Description: "A stored student record",
		MIMEType:    "application/json",
	}, s.handleRecordResource)
}

// handleSemestersResource returns the semester list.
func (s *Server) handleSemestersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Semesters == nil {
		return jsonResource(req.Params.URI, "[]"), nil
	}

	semesters, err := s.ports.Semesters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing semesters: %w", err)
	}

	data, err := json.MarshalIndent(semesters, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling semesters: %w", err)
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

// handleRecordResource returns one stored record.
func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Records == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// markscan://records/{recordId}
	id := extractRecordID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting record: %w", err)
	}

	data, err := json.MarshalIndent(toRecordOutput(record), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling record: %w", err)
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func jsonResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractRecordID extracts the record ID from a URI like markscan://records/{recordId}.
func extractRecordID(uri string) string {
	const prefix = uriScheme + "records/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
