package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// Value fragments shared by the rule tables. Each captures one group.
// nameValue keeps a trailing colon so the name cut can tell a label
// from a surname.
const (
	nameValue   = `([A-Za-z][A-Za-z.'\- ]*:?)`
	regdValue   = `([A-Za-z0-9\-/]*\d[A-Za-z0-9\-/]*)`
	gradeValue  = `([A-F][+\-]?)(?:[^A-Za-z0-9+\-]|$)`
	textValue   = `([A-Za-z][A-Za-z&.,()' \-]*)`
	numberValue = `(\d{1,4})`
	outOf       = `\s*(?:/|out\s+of|of)\s*`
)

// Marks holds obtained marks and, when the same rule captured it, the total.
type Marks struct {
	Obtained int
	Total    *int
}

// certifyStop ends a name introduced by "This is to certify that".
var certifyStop = regexp.MustCompile(`(?i)\b(?:son|daughter|has|having|bearing|with|is|was|of)\b`)

func lastGroup(g []string) string {
	return g[len(g)-1]
}

func nameRule(name, pattern string) Rule[string] {
	return Rule[string]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Extract: func(g []string) (string, bool) { return usableName(lastGroup(g)) },
	}
}

func regdRule(name, pattern string) Rule[string] {
	return Rule[string]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Extract: func(g []string) (string, bool) { return usableRegistration(g[1]) },
	}
}

func gradeRule(name, pattern string) Rule[string] {
	return Rule[string]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Extract: func(g []string) (string, bool) { return usableGrade(g[1]) },
	}
}

func textRule(name, pattern string) Rule[string] {
	return Rule[string]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Extract: func(g []string) (string, bool) { return usableText(g[1]) },
	}
}

// marksRule builds a rule whose obtained and total marks sit in the given
// groups. A zero totalGroup means the rule captures obtained marks only.
func marksRule(name, pattern string, obtainedGroup, totalGroup int) Rule[Marks] {
	return Rule[Marks]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Extract: marksExtract(obtainedGroup, totalGroup),
	}
}

func marksExtract(obtainedGroup, totalGroup int) func([]string) (Marks, bool) {
	return func(g []string) (Marks, bool) {
		obtained, err := strconv.Atoi(g[obtainedGroup])
		if err != nil {
			return Marks{}, false
		}
		m := Marks{Obtained: obtained}
		if totalGroup > 0 && g[totalGroup] != "" {
			total, err := strconv.Atoi(g[totalGroup])
			if err != nil {
				return Marks{}, false
			}
			m.Total = &total
		}
		return m, true
	}
}

// statusFromKeyword maps pass/clear variants to Passed and fail variants to Failed.
func statusFromKeyword(keyword string) (domain.ResultStatus, bool) {
	k := strings.ToLower(keyword)
	switch {
	case strings.HasPrefix(k, "pass"), strings.HasPrefix(k, "clear"):
		return domain.StatusPassed, true
	case strings.HasPrefix(k, "fail"):
		return domain.StatusFailed, true
	default:
		return domain.StatusUnknown, false
	}
}

func statusRule(name, pattern string) Rule[domain.ResultStatus] {
	return Rule[domain.ResultStatus]{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Extract: func(g []string) (domain.ResultStatus, bool) { return statusFromKeyword(g[1]) },
	}
}

// nameRules are tried in order; the most specific phrasing comes first.
var nameRules = []Rule[string]{
	nameRule("student-name", `(?i)\bstudent'?s?\s*name\s*[:\-]?\s*`+nameValue),
	nameRule("name-of-student", `(?i)\bname\s+of\s+(?:the\s+)?(?:student|candidate|examinee)\s*[:\-]?\s*`+nameValue),
	nameRule("candidate-name", `(?i)\b(?:candidate|examinee)'?s?\s*name\s*[:\-]?\s*`+nameValue),
	{
		Name:    "name-label",
		Pattern: regexp.MustCompile(`(?i)(?:\b(father|mother|guardian|parent|college|campus|school|institute|university)'?s?\s*)?\bname\s*[:\-]\s*` + nameValue),
		Extract: func(g []string) (string, bool) {
			// "Father's Name:" and friends label someone else.
			if g[1] != "" {
				return "", false
			}
			return usableName(g[2])
		},
	},
	{
		Name:    "certify-that",
		Pattern: regexp.MustCompile(`(?i)\bcertif(?:y|ied)\s+that\s+(?:(?:Mr|Mrs|Ms|Miss)\.?\s+)?` + nameValue),
		Extract: func(g []string) (string, bool) {
			value := g[1]
			if loc := certifyStop.FindStringIndex(value); loc != nil {
				value = value[:loc[0]]
			}
			return usableName(value)
		},
	},
	nameRule("honorific", `\b(?:Mr|Mrs|Ms|Miss)\.?\s+([A-Z][A-Za-z.]*(?:\s[A-Z][A-Za-z.]*){1,3})`),
}

var registrationRules = []Rule[string]{
	regdRule("tu-regd-no", `(?i)\bT\.?\s*U\.?\s*(?:Registration|Regd?)\.?\s*(?:Number|No|#)?\.?\s*[:\-]?\s*`+regdValue),
	regdRule("regd-no", `(?i)\bRegd?\.?\s*(?:Number|No|#)\.?\s*[:\-]?\s*`+regdValue),
	regdRule("registration", `(?i)\bRegistration\s*(?:Number|No|#)?\.?\s*[:\-]?\s*`+regdValue),
	regdRule("tu-no", `(?i)\bT\.?\s*U\.?\s*(?:Number|No|#)\.?\s*[:\-]?\s*`+regdValue),
	regdRule("tu-format", `\b(\d{1,2}-\d{1,2}-\d{1,4}-\d{1,5}-\d{4})\b`),
}

var gradeRules = []Rule[string]{
	gradeRule("grade-label", `(?i)\bgrade\s*(?:obtained|awarded|secured|letter)?\s*[:\-]?\s*`+gradeValue),
	gradeRule("obtained-grade", `\b(?i:obtained|secured|awarded|achieved)\s+(?i:an?\s+)?([A-F][+\-]?)\s*(?i:grade)\b`),
	gradeRule("gpa-letter", `(?i:\bgpa)\s*[:\-]?\s*\d(?:\.\d+)?\s*\(?([A-F][+\-]?)\)?(?:[^A-Za-z0-9]|$)`),
}

// marksRules list pairs (obtained and total) before single values.
var marksRules = []Rule[Marks]{
	marksRule("marks-out-of", `(?i)\bmarks?\s*(?:obtained|secured|scored)?\s*[:\-]?\s*`+numberValue+outOf+numberValue, 1, 2),
	marksRule("obtained-out-of", `(?i)\b(?:obtained|secured|scored)\s*[:\-]?\s*`+numberValue+`\s*(?:/|out\s+of)\s*`+numberValue, 1, 2),
	marksRule("obtained-then-full", `(?i)\bmarks?\s*obtained\s*[:\-]?\s*`+numberValue+`\s*(?:full|total|max(?:imum)?)\s*marks?\s*[:\-]?\s*`+numberValue, 1, 2),
	marksRule("full-then-obtained", `(?i)\b(?:full|total|max(?:imum)?)\s*marks?\s*[:\-]?\s*`+numberValue+`\s*marks?\s*obtained\s*[:\-]?\s*`+numberValue, 2, 1),
	marksRule("fraction-marks", `(?i)\b`+numberValue+`\s*(?:/|out\s+of)\s*`+numberValue+`\s*marks?\b`, 1, 2),
	marksRule("marks-obtained", `(?i)\bmarks?\s*(?:obtained|secured|scored)\s*[:\-]?\s*`+numberValue, 1, 0),
	marksRule("obtained-marks", `(?i)\b(?:obtained|secured|scored)\s*marks?\s*[:\-]?\s*`+numberValue, 1, 0),
	marksRule("marks-label", `(?i)\bmarks?\s*[:\-]\s*`+numberValue, 1, 0),
}

var subjectRules = []Rule[string]{
	textRule("subject-label", `(?i)\bsubject\s*(?:name|title)?\s*[:\-]\s*`+textValue),
	textRule("course-title", `(?i)\bcourse\s*(?:name|title)\s*[:\-]?\s*`+textValue),
	textRule("paper-label", `(?i)\bpaper\s*(?:name|title)?\s*[:\-]\s*`+textValue),
	textRule("course-label", `(?i)\bcourse\s*[:\-]\s*`+textValue),
}

var programRules = []Rule[string]{
	textRule("program-label", `(?i)\bprogram(?:me)?\s*(?:name)?\s*[:\-]\s*`+textValue),
	textRule("degree-name", `(?i)\b((?:bachelor|master)'?s?\s+(?:of|in)\s+[A-Za-z][A-Za-z&' ]*)`),
	textRule("degree-acronym", `\b(B\.?\s?Sc\.?\s?CSIT|B\.?\s?Sc\.?|BCA|BBA|BBS|BBM|BIM|BIT|B\.?\s?Ed\.?|B\.\s?A\.?|MBA|MBS|MCA|M\.?\s?Sc\.?|M\.?\s?Ed\.?|M\.\s?A\.?)(?:[^A-Za-z]|$)`),
}

var facultyRules = []Rule[string]{
	textRule("faculty-label", `(?i)\bfaculty\s*(?:of\s+|[:\-]\s*)`+textValue),
	textRule("institute-of", `(?i)\b(institute\s+of\s+[A-Za-z][A-Za-z&' ]*)`),
	textRule("faculty-bare", `(?i)\bfaculty\s+`+textValue),
}

// statusRules detect an explicit pass/fail statement.
var statusRules = []Rule[domain.ResultStatus]{
	statusRule("result-label", `(?i)\b(?:result|status|remarks?)\s*[:\-]?\s*(pass(?:ed)?|fail(?:ed)?|clear(?:ed)?)\b`),
	statusRule("has-passed", `(?i)\b(?:has|have|had)\s+(?:been\s+)?(pass(?:ed)?|fail(?:ed)?|clear(?:ed)?)\b`),
}
