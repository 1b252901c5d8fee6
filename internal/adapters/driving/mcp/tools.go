package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// LookupInput is the input schema for the lookup_result tool.
type LookupInput struct {
	Name   string `json:"name" jsonschema:"the student's full name as printed on the marksheet"`
	TURegd string `json:"tuRegd" jsonschema:"the T.U. registration number"`
}

// LookupOutput is the output schema for the lookup_result tool.
type LookupOutput struct {
	Found  bool          `json:"found"`
	Record *RecordOutput `json:"record,omitempty"`
}

// ResultOutput is the structured view of one marksheet.
type ResultOutput struct {
	Name        string  `json:"name" jsonschema:"student name or 'Name not found'"`
	TURegd      string  `json:"tuRegd" jsonschema:"registration number or 'Registration not found'"`
	Result      string  `json:"result" jsonschema:"Passed or Failed"`
	Grade       *string `json:"grade,omitempty"`
	Marks       *int    `json:"marks,omitempty"`
	TotalMarks  *int    `json:"totalMarks,omitempty"`
	Subject     *string `json:"subject,omitempty"`
	Program     *string `json:"program,omitempty"`
	Faculty     *string `json:"faculty,omitempty"`
	NeedsReview bool    `json:"needsReview,omitempty" jsonschema:"true when no pass/fail signal was found"`
}

// RecordOutput is a stored record as returned to assistants.
type RecordOutput struct {
	ID         string       `json:"id"`
	Result     ResultOutput `json:"result"`
	SemesterID string       `json:"semesterId,omitempty"`
	UploadedBy string       `json:"uploadedBy"`
	CreatedAt  string       `json:"createdAt"`
}

// ExtractInput is the input schema for the extract_fields tool.
type ExtractInput struct {
	Text string `json:"text" jsonschema:"raw OCR text of one marksheet"`
}

// ExtractOutput is the output schema for the extract_fields tool.
type ExtractOutput struct {
	Result   ResultOutput `json:"result"`
	Complete bool         `json:"complete"`
	Missing  []string     `json:"missing,omitempty" jsonschema:"identity fields that could not be found"`
	Rule     string       `json:"rule" jsonschema:"which rule decided the pass/fail status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_result",
		Description: "Look up a student's exam result by name and T.U. registration number",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_fields",
		Description: "Extract name, registration, grade, marks and pass/fail from raw marksheet text",
	}, s.handleExtract)
}

// handleLookup handles the lookup_result tool invocation.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	record, err := s.ports.Search.Lookup(ctx, input.Name, input.TURegd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, LookupOutput{Found: false}, nil
		}
		return nil, LookupOutput{}, err
	}
	out := toRecordOutput(record)
	return nil, LookupOutput{Found: true, Record: &out}, nil
}

// handleExtract handles the extract_fields tool invocation.
func (s *Server) handleExtract(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ExtractOutput{}, errors.New("text must not be empty")
	}
	ex := s.extractor.Extract(input.Text)
	return nil, ExtractOutput{
		Result:   toResultOutput(ex.Result()),
		Complete: ex.Complete(),
		Missing:  ex.Missing(),
		Rule:     ex.Rule.String(),
	}, nil
}

func toRecordOutput(r *domain.StudentRecord) RecordOutput {
	return RecordOutput{
		ID:         r.ID,
		Result:     toResultOutput(r.OCRResult),
		SemesterID: r.SemesterID,
		UploadedBy: r.UploadedBy,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func toResultOutput(r domain.OCRResult) ResultOutput {
	return ResultOutput{
		Name:        r.Name,
		TURegd:      r.TURegd,
		Result:      r.Result.String(),
		Grade:       r.Grade,
		Marks:       r.Marks,
		TotalMarks:  r.TotalMarks,
		Subject:     r.Subject,
		Program:     r.Program,
		Faculty:     r.Faculty,
		NeedsReview: r.NeedsReview,
	}
}
