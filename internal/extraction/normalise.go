package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// Field thresholds.
const (
	// MinNameLength and MaxNameLength bound a usable name, exclusive on both
	// ends. A three-letter name is rejected.
	MinNameLength = 3
	MaxNameLength = 50

	// MinRegistrationLength is the exclusive lower bound for a registration number.
	MinRegistrationLength = 3

	// PassPercentage is the default marks percentage at or above which a
	// result counts as passed.
	PassPercentage = 40.0
)

// Normalise collapses every whitespace run, newlines included, into a
// single space and trims the ends.
func Normalise(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// stopWords marks where a free-text value ends and the next label begins.
var stopWords = regexp.MustCompile(`(?i)\b(?:T\.?\s*U\b|Regd?\b|Registration|Roll\b|Symbol\b|Program(?:me)?\b|Subject\b|Course\b|Paper\b|Grade\b|Marks?\b|Result\b|Status\b|Faculty\b|Father|Mother|Guardian|D\.?O\.?B\b|Date\b|Level\b|Exam(?:ination)?\b|Semester\b|Campus\b|College\b|Total\b|Obtained\b|Percentage\b|Division\b|Remarks?\b|Year\b|Batch\b|Name\b|Session\b|Serial\b)`)

// cutAtStopWord truncates value at the first label-like word.
func cutAtStopWord(value string) string {
	if loc := stopWords.FindStringIndex(value); loc != nil {
		return value[:loc[0]]
	}
	return value
}

// nameStops marks where a captured name runs into the next label. Labels
// that can also be part of a name, such as Marks or Total, only stop
// it when their delimiter or "obtained" follows.
var nameStops = regexp.MustCompile(`(?i)(?:\bT\.\s*U\b|\bT\s*U\.?\s*(?:Regd?|Registration|No)\b|\bRegd\b|\bReg\b\.?\s*(?:No|Number|[:\-])|\bRegistration\b|\b(?:Roll|Symbol|Serial)\s*(?:No|Number|[:\-])|\b(?:Program(?:me)?|Subject|Result|Status|Faculty|Semester|Percentage|Division|Remarks?|Obtained|Examination|Name|D\.?O\.?B)\b|\b(?:Father|Mother|Guardian)|\b(?:Marks?|Total|Grade|Date|Year|Course|Paper|Level|Exam|Campus|College|Batch|Session)\s*(?:obtained\b|[:\-]))`)

// cutName truncates a captured name at the first label that follows it.
func cutName(value string) string {
	if loc := nameStops.FindStringIndex(value); loc != nil {
		return value[:loc[0]]
	}
	return value
}

// cleanName keeps letters, spaces and periods, then collapses whitespace.
func cleanName(raw string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == ' ' || r == '.' {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, raw)
	return Normalise(kept)
}

// usableName cleans a candidate name and applies the length bounds.
func usableName(raw string) (string, bool) {
	name := cleanName(cutName(raw))
	name = strings.TrimLeft(name, ". ")
	n := len([]rune(name))
	if n <= MinNameLength || n >= MaxNameLength {
		return "", false
	}
	return name, true
}

// usableRegistration trims separators and applies the length bound.
func usableRegistration(raw string) (string, bool) {
	regd := strings.Trim(strings.TrimSpace(raw), "-/.")
	if len(regd) <= MinRegistrationLength {
		return "", false
	}
	return regd, true
}

// usableGrade upper-cases a grade letter with its optional sign.
func usableGrade(raw string) (string, bool) {
	grade := strings.ToUpper(strings.TrimSpace(raw))
	if grade == "" || grade[0] < 'A' || grade[0] > 'F' {
		return "", false
	}
	if len(grade) > 2 || (len(grade) == 2 && grade[1] != '+' && grade[1] != '-') {
		return "", false
	}
	return grade, true
}

// usableText cuts a free-text value at the next label and tidies it.
func usableText(raw string) (string, bool) {
	text := Normalise(cutAtStopWord(raw))
	text = strings.TrimRight(text, " ,;:(-&")
	text = strings.TrimLeft(text, " ,;:)-&")
	if text == "" {
		return "", false
	}
	return text, true
}
