package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestExtraction_Result_Sentinels(t *testing.T) {
	e := Extraction{Status: StatusFailed, Rule: RulePercentage, Marks: intPtr(35), TotalMarks: intPtr(100)}

	r := e.Result()

	assert.Equal(t, NameNotFound, r.Name)
	assert.Equal(t, RegistrationNotFound, r.TURegd)
	assert.Equal(t, StatusFailed, r.Result)
	assert.Equal(t, 35, *r.Marks)
	assert.True(t, r.HasSentinels())
	assert.False(t, r.NeedsReview)
}

func TestExtraction_Result_Populated(t *testing.T) {
	e := Extraction{
		Name:         strPtr("John Doe"),
		Registration: strPtr("12345678"),
		Grade:        strPtr("B+"),
		Status:       StatusPassed,
		Rule:         RuleGrade,
	}

	r := e.Result()

	assert.Equal(t, "John Doe", r.Name)
	assert.Equal(t, "12345678", r.TURegd)
	assert.Equal(t, "B+", *r.Grade)
	assert.False(t, r.HasSentinels())
	assert.True(t, e.Complete())
	assert.Empty(t, e.Missing())
}

func TestExtraction_Result_DefaultRuleNeedsReview(t *testing.T) {
	r := Extraction{Status: StatusPassed, Rule: RuleDefault}.Result()

	assert.Equal(t, StatusPassed, r.Result)
	assert.True(t, r.NeedsReview)
}

func TestExtraction_Result_NeverUnknown(t *testing.T) {
	r := Extraction{Status: StatusUnknown}.Result()

	assert.True(t, r.Result.IsFinal())
	assert.True(t, r.NeedsReview)
}

func TestExtraction_Missing(t *testing.T) {
	e := Extraction{Name: strPtr("Alice Sharma")}

	assert.False(t, e.Complete())
	assert.Equal(t, []string{"registration number"}, e.Missing())
}

func TestIdentityKey(t *testing.T) {
	name, regd := IdentityKey("  Alice SHARMA ", " 7-2-123-45-2018\t")

	assert.Equal(t, "alice sharma", name)
	assert.Equal(t, "7-2-123-45-2018", regd)
}

func TestClassificationRule_String(t *testing.T) {
	assert.Equal(t, "explicit_keyword", RuleExplicitKeyword.String())
	assert.Equal(t, "default", RuleDefault.String())
	assert.Equal(t, "none", RuleNone.String())
}
