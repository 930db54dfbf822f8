// Package check runs catalog rules against a parsed model.
package check

import (
	"sort"

	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/rules"
)

// Target is the model under analysis. Exactly one field is set.
type Target struct {
	Dockerfile *domain.DockerfileModel
	Compose    *domain.ComposeModel
}

// Run evaluates every enabled rule of c that applies to t, in catalog
// order, and returns the findings sorted by severity, rule id, then line.
// Issues without a line sort before line 1.
func Run(c *rules.Catalog, t Target) []domain.Issue {
	var issues []domain.Issue
	emit := func(r rules.Rule, fs []rules.Finding) {
		for _, f := range fs {
			issues = append(issues, r.Issue(f))
		}
	}

	for _, r := range c.Enabled() {
		switch {
		case t.Dockerfile != nil && r.AppliesTo == rules.ScopeDockerfile:
			emit(r, r.Dockerfile(t.Dockerfile))
		case t.Dockerfile != nil && r.AppliesTo == rules.ScopeStage:
			for _, s := range t.Dockerfile.Stages {
				emit(r, r.Stage(t.Dockerfile, s))
			}
		case t.Compose != nil && r.AppliesTo == rules.ScopeService:
			t.Compose.Each(func(s *domain.Service) { emit(r, r.Service(s)) })
		}
	}

	Sort(issues)
	return issues
}

// Sort orders issues by severity rank, rule id and line. It is stable, so
// issues equal on all three keep their evaluation order.
func Sort(issues []domain.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.LineOrZero() < b.LineOrZero()
	})
}

// Filter keeps issues at or above min, preserving order.
func Filter(issues []domain.Issue, min domain.Severity) []domain.Issue {
	out := make([]domain.Issue, 0, len(issues))
	for _, iss := range issues {
		if iss.Severity.AtLeast(min) {
			out = append(out, iss)
		}
	}
	return out
}

// Exceeds reports whether any issue is at or above threshold. It is the
// CI gate predicate.
func Exceeds(issues []domain.Issue, threshold domain.Severity) bool {
	for _, iss := range issues {
		if iss.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}
