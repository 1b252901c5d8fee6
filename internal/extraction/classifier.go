package extraction

import (
	"strings"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// Evidence is everything the classifier looks at.
type Evidence struct {
	// Explicit is the status stated by a result/status keyword, or
	// domain.StatusUnknown when the text has none.
	Explicit domain.ResultStatus

	Grade      *string
	Marks      *int
	TotalMarks *int

	// Text is the normalised OCR text, used for the substring fallback.
	Text string
}

// Classify decides pass or fail from the evidence. The first rule that
// applies wins:
//
//  1. an explicit keyword
//  2. the grade (F, F+ and F- fail, everything else passes)
//  3. marks as a percentage of total marks against passPercentage
//  4. the substrings "pass" or "clear", then "fail"
//  5. Passed, reported as domain.RuleDefault so callers can flag it
func Classify(ev Evidence, passPercentage float64) (domain.ResultStatus, domain.ClassificationRule) {
	if ev.Explicit.IsFinal() {
		return ev.Explicit, domain.RuleExplicitKeyword
	}

	if ev.Grade != nil && *ev.Grade != "" {
		if strings.HasPrefix(strings.ToUpper(*ev.Grade), "F") {
			return domain.StatusFailed, domain.RuleGrade
		}
		return domain.StatusPassed, domain.RuleGrade
	}

	// A zero total says nothing about the percentage.
	if ev.Marks != nil && ev.TotalMarks != nil && *ev.TotalMarks > 0 {
		// Compare in integer-scaled form so 2/5 is exactly 40%.
		if float64(*ev.Marks)*100 >= passPercentage*float64(*ev.TotalMarks) {
			return domain.StatusPassed, domain.RulePercentage
		}
		return domain.StatusFailed, domain.RulePercentage
	}

	lower := strings.ToLower(ev.Text)
	switch {
	case strings.Contains(lower, "pass"), strings.Contains(lower, "clear"):
		return domain.StatusPassed, domain.RuleTextCue
	case strings.Contains(lower, "fail"):
		return domain.StatusFailed, domain.RuleTextCue
	}

	return domain.StatusPassed, domain.RuleDefault
}
