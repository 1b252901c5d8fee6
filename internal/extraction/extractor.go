package extraction

import (
	"slices"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// Extractor holds the rule tables for every field. The zero value is not
// usable; construct one with New.
type Extractor struct {
	names          []Rule[string]
	registrations  []Rule[string]
	grades         []Rule[string]
	marks          []Rule[Marks]
	subjects       []Rule[string]
	programs       []Rule[string]
	faculties      []Rule[string]
	statuses       []Rule[domain.ResultStatus]
	passPercentage float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPassPercentage overrides PassPercentage.
func WithPassPercentage(p float64) Option {
	return func(x *Extractor) {
		if p > 0 && p <= 100 {
			x.passPercentage = p
		}
	}
}

// WithPack appends the pack's rules after the built-in ones. Built-in
// rules keep priority, so a pack can add layouts but never change how an
// already supported layout is read.
func WithPack(p *Pack) Option {
	return func(x *Extractor) {
		if p == nil {
			return
		}
		x.names = append(x.names, p.names...)
		x.registrations = append(x.registrations, p.registrations...)
		x.grades = append(x.grades, p.grades...)
		x.marks = append(x.marks, p.marks...)
		x.subjects = append(x.subjects, p.subjects...)
		x.programs = append(x.programs, p.programs...)
		x.faculties = append(x.faculties, p.faculties...)
		x.statuses = append(x.statuses, p.statuses...)
	}
}

// New creates an Extractor with the built-in rules.
func New(opts ...Option) *Extractor {
	x := &Extractor{
		names:          slices.Clone(nameRules),
		registrations:  slices.Clone(registrationRules),
		grades:         slices.Clone(gradeRules),
		marks:          slices.Clone(marksRules),
		subjects:       slices.Clone(subjectRules),
		programs:       slices.Clone(programRules),
		faculties:      slices.Clone(facultyRules),
		statuses:       slices.Clone(statusRules),
		passPercentage: PassPercentage,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// PassPercentage returns the threshold the extractor classifies with.
func (x *Extractor) PassPercentage() float64 {
	return x.passPercentage
}

// Extract mines raw OCR text for result fields and classifies the result.
func (x *Extractor) Extract(text string) domain.Extraction {
	norm := Normalise(text)

	var ex domain.Extraction
	if v, ok := firstUsable(x.names, norm); ok {
		ex.Name = &v
	}
	if v, ok := firstUsable(x.registrations, norm); ok {
		ex.Registration = &v
	}
	if v, ok := firstUsable(x.grades, norm); ok {
		ex.Grade = &v
	}
	if m, ok := firstUsable(x.marks, norm); ok {
		obtained := m.Obtained
		ex.Marks = &obtained
		ex.TotalMarks = m.Total
	}
	if v, ok := firstUsable(x.subjects, norm); ok {
		ex.Subject = &v
	}
	if v, ok := firstUsable(x.programs, norm); ok {
		ex.Program = &v
	}
	if v, ok := firstUsable(x.faculties, norm); ok {
		ex.Faculty = &v
	}

	explicit, ok := firstUsable(x.statuses, norm)
	if !ok {
		explicit = domain.StatusUnknown
	}
	ex.Status, ex.Rule = Classify(Evidence{
		Explicit:   explicit,
		Grade:      ex.Grade,
		Marks:      ex.Marks,
		TotalMarks: ex.TotalMarks,
		Text:       norm,
	}, x.passPercentage)

	return ex
}

// ExtractResult is Extract followed by conversion to the wire contract.
func (x *Extractor) ExtractResult(text string) domain.OCRResult {
	return x.Extract(text).Result()
}

var defaultExtractor = New()

// Extract runs the built-in rules over text.
func Extract(text string) domain.Extraction {
	return defaultExtractor.Extract(text)
}

// ExtractResult runs the built-in rules over text and returns the wire contract.
func ExtractResult(text string) domain.OCRResult {
	return defaultExtractor.ExtractResult(text)
}
