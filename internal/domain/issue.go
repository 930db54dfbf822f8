package domain

import (
	"fmt"
	"strings"
)

// Severity is the importance of an issue.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Severities lists all severities from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityWarning, SeveritySuggestion}

// Rank orders severities: critical sorts first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeveritySuggestion:
		return 2
	default:
		return 3
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() <= min.Rank()
}

func (s Severity) Valid() bool { return s.Rank() < 3 }

// Title returns the capitalized name, e.g. "Critical".
func (s Severity) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseSeverity accepts a severity name in any case.
func ParseSeverity(v string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q (valid: critical, warning, suggestion)", v)
	}
	return s, nil
}

// Issue is one rule finding.
type Issue struct {
	RuleID   string   `json:"rule_id"`
	RuleName string   `json:"rule_name"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix_suggestion,omitempty"`
	Line     *int     `json:"line,omitempty"`
	Context  string   `json:"context,omitempty"`
	File     string   `json:"file,omitempty"`
}

// LineOrZero returns the line reference, or 0 when the issue has none.
func (i Issue) LineOrZero() int {
	if i.Line == nil {
		return 0
	}
	return *i.Line
}

// LineRef returns a pointer to n, for populating Issue.Line.
func LineRef(n int) *int { return &n }
