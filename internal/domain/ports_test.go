package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryFor(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &Report{
		File:       "Dockerfile",
		CommitHash: "abc123",
		Timestamp:  ts,
		Score:      ScoreCard{Security: 7, Performance: 9, Maintainability: 10, Overall: 8.5},
		Issues: []Issue{
			{RuleID: "DF001", Severity: SeverityCritical},
			{RuleID: "DF007", Severity: SeverityWarning},
			{RuleID: "DF011", Severity: SeverityWarning},
			{RuleID: "DF009", Severity: SeveritySuggestion},
		},
	}

	e := EntryFor(r)
	assert.Equal(t, ts, e.Timestamp)
	assert.Equal(t, "abc123", e.CommitHash)
	assert.Equal(t, "Dockerfile", e.File)
	assert.Equal(t, "A", e.Grade)
	assert.Equal(t, 1, e.Critical)
	assert.Equal(t, 2, e.Warning)
	assert.Equal(t, 1, e.Suggestion)
}
