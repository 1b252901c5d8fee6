package extraction

import "regexp"

// Rule is one candidate pattern for a field.
type Rule[T any] struct {
	// Name identifies the rule in logs and tests.
	Name string

	// Pattern is matched against the normalised text.
	Pattern *regexp.Regexp

	// Extract converts the submatches (index 0 is the whole match, unmatched
	// groups are empty) into a value, reporting whether it is usable.
	Extract func(groups []string) (T, bool)
}

// Find returns the first usable value the rule produces in text.
//
// When a match is unusable the search resumes at the start of the last
// participating group rather than after the whole match, so a value that
// swallowed the next label does not hide that label from the rule.
func (r Rule[T]) Find(text string) (T, bool) {
	var zero T
	pos := 0
	for pos <= len(text) {
		loc := r.Pattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return zero, false
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[pos+loc[2*i] : pos+loc[2*i+1]]
			}
		}
		if v, ok := r.Extract(groups); ok {
			return v, true
		}
		pos += resumeOffset(loc)
	}
	return zero, false
}

// resumeOffset picks where the next search starts, relative to the current
// search origin. It always advances by at least one byte.
func resumeOffset(loc []int) int {
	next := loc[1]
	for i := len(loc)/2 - 1; i > 0; i-- {
		if start := loc[2*i]; start > loc[0] {
			next = start
			break
		}
	}
	if next <= loc[0] {
		next = loc[0] + 1
	}
	return next
}

// firstUsable evaluates rules in order and returns the first usable value.
func firstUsable[T any](rules []Rule[T], text string) (T, bool) {
	for _, r := range rules {
		if v, ok := r.Find(text); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
