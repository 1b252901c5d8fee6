package domain

import "strings"

// Sentinel values stored in OCRResult when a required field could not be
// extracted. Callers must compare against these, not just emptiness.
const (
	NameNotFound         = "Name not found"
	RegistrationNotFound = "Registration not found"
)

// ResultStatus is the pass/fail outcome printed on a marksheet.
type ResultStatus string

// Result statuses. StatusUnknown never leaves the classifier.
const (
	StatusPassed  ResultStatus = "Passed"
	StatusFailed  ResultStatus = "Failed"
	StatusUnknown ResultStatus = "Unknown"
)

// IsFinal reports whether the status may appear in a returned OCRResult.
func (s ResultStatus) IsFinal() bool {
	return s == StatusPassed || s == StatusFailed
}

// String returns the string representation.
func (s ResultStatus) String() string {
	return string(s)
}

// ClassificationRule identifies which precedence rule decided a status.
type ClassificationRule int

// Classification rules in precedence order.
const (
	RuleNone ClassificationRule = iota
	RuleExplicitKeyword
	RuleGrade
	RulePercentage
	RuleTextCue
	RuleDefault
)

// String returns a short name for the rule.
func (r ClassificationRule) String() string {
	switch r {
	case RuleExplicitKeyword:
		return "explicit_keyword"
	case RuleGrade:
		return "grade"
	case RulePercentage:
		return "percentage"
	case RuleTextCue:
		return "text_cue"
	case RuleDefault:
		return "default"
	default:
		return "none"
	}
}

// OCRResult is the structured view of one scanned marksheet. It is the
// contract shared with storage and every outward-facing surface.
type OCRResult struct {
	Name        string       `json:"name" jsonschema:"description=Extracted full name or the 'Name not found' sentinel"`
	TURegd      string       `json:"tuRegd" jsonschema:"description=T.U. registration number or the 'Registration not found' sentinel"`
	Result      ResultStatus `json:"result" jsonschema:"enum=Passed,enum=Failed"`
	Grade       *string      `json:"grade,omitempty" jsonschema:"pattern=^[A-F][+-]?$"`
	Marks       *int         `json:"marks,omitempty" jsonschema:"minimum=0"`
	TotalMarks  *int         `json:"totalMarks,omitempty"`
	Subject     *string      `json:"subject,omitempty"`
	Program     *string      `json:"program,omitempty"`
	Faculty     *string      `json:"faculty,omitempty"`
	NeedsReview bool         `json:"needsReview,omitempty" jsonschema:"description=Set when no pass/fail signal was found and the default policy applied"`
}

// HasSentinels reports whether name or registration hold a not-found sentinel.
func (r OCRResult) HasSentinels() bool {
	return r.Name == NameNotFound || r.TURegd == RegistrationNotFound
}

// Extraction is the tagged output of the field extractor. Absent fields are
// nil; sentinels only appear once it is converted with Result.
type Extraction struct {
	Name         *string
	Registration *string
	Grade        *string
	Marks        *int
	TotalMarks   *int
	Subject      *string
	Program      *string
	Faculty      *string
	Status       ResultStatus
	Rule         ClassificationRule
}

// Complete reports whether both identity fields were extracted.
func (e Extraction) Complete() bool {
	return e.Name != nil && e.Registration != nil
}

// Missing lists the identity fields that were not extracted.
func (e Extraction) Missing() []string {
	var missing []string
	if e.Name == nil {
		missing = append(missing, "name")
	}
	if e.Registration == nil {
		missing = append(missing, "registration number")
	}
	return missing
}

// Result converts the extraction to the wire contract, substituting
// sentinels for absent identity fields.
func (e Extraction) Result() OCRResult {
	r := OCRResult{
		Name:        NameNotFound,
		TURegd:      RegistrationNotFound,
		Result:      e.Status,
		Grade:       e.Grade,
		Marks:       e.Marks,
		TotalMarks:  e.TotalMarks,
		Subject:     e.Subject,
		Program:     e.Program,
		Faculty:     e.Faculty,
		NeedsReview: e.Rule == RuleDefault,
	}
	if e.Name != nil {
		r.Name = *e.Name
	}
	if e.Registration != nil {
		r.TURegd = *e.Registration
	}
	if !r.Result.IsFinal() {
		r.Result = StatusPassed
		r.NeedsReview = true
	}
	return r
}

// IdentityKey normalises a (name, registration) pair for lookups:
// trimmed and lower-cased.
func IdentityKey(name, tuRegd string) (string, string) {
	return strings.ToLower(strings.TrimSpace(name)), strings.ToLower(strings.TrimSpace(tuRegd))
}
