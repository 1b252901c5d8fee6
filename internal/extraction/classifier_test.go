package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		ev         Evidence
		wantStatus domain.ResultStatus
		wantRule   domain.ClassificationRule
	}{
		{
			name:       "explicit beats failing grade",
			ev:         Evidence{Explicit: domain.StatusPassed, Grade: strPtr("F")},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleExplicitKeyword,
		},
		{
			name:       "unknown explicit is ignored",
			ev:         Evidence{Explicit: domain.StatusUnknown, Grade: strPtr("B")},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleGrade,
		},
		{
			name:       "F minus fails",
			ev:         Evidence{Grade: strPtr("F-")},
			wantStatus: domain.StatusFailed,
			wantRule:   domain.RuleGrade,
		},
		{
			name:       "grade beats marks",
			ev:         Evidence{Grade: strPtr("A"), Marks: intPtr(10), TotalMarks: intPtr(100)},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleGrade,
		},
		{
			name:       "below threshold",
			ev:         Evidence{Marks: intPtr(39), TotalMarks: intPtr(100)},
			wantStatus: domain.StatusFailed,
			wantRule:   domain.RulePercentage,
		},
		{
			name:       "at threshold",
			ev:         Evidence{Marks: intPtr(40), TotalMarks: intPtr(100)},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RulePercentage,
		},
		{
			name:       "zero total skips percentage",
			ev:         Evidence{Marks: intPtr(10), TotalMarks: intPtr(0)},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleDefault,
		},
		{
			name:       "marks without total skip percentage",
			ev:         Evidence{Marks: intPtr(10), Text: "failed attempt"},
			wantStatus: domain.StatusFailed,
			wantRule:   domain.RuleTextCue,
		},
		{
			name:       "pass cue wins over fail cue",
			ev:         Evidence{Text: "passed after a failed attempt"},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleTextCue,
		},
		{
			name:       "clear cue",
			ev:         Evidence{Text: "CLEARED"},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleTextCue,
		},
		{
			name:       "nothing to go on",
			ev:         Evidence{Text: "tribhuvan university"},
			wantStatus: domain.StatusPassed,
			wantRule:   domain.RuleDefault,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, rule := Classify(tt.ev, PassPercentage)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestClassify_CustomThreshold(t *testing.T) {
	status, _ := Classify(Evidence{Marks: intPtr(45), TotalMarks: intPtr(100)}, 50)
	assert.Equal(t, domain.StatusFailed, status)

	status, _ = Classify(Evidence{Marks: intPtr(50), TotalMarks: intPtr(100)}, 50)
	assert.Equal(t, domain.StatusPassed, status)
}
