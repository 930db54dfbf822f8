package tui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dockreview/dockreview/internal/adapters/outbound/tui"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/rules"
	"github.com/dockreview/dockreview/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *domain.Report {
	issues := []domain.Issue{
		{RuleID: "DF002", RuleName: "Running as root", Severity: domain.SeverityCritical, Message: "container runs as root", Fix: "add a USER instruction", Line: domain.LineRef(2)},
		{RuleID: "DF007", RuleName: "Unpinned packages", Severity: domain.SeverityWarning, Message: "apt-get install curl is not pinned"},
		{RuleID: "DF005", RuleName: "Missing healthcheck", Severity: domain.SeveritySuggestion, Message: "no HEALTHCHECK"},
	}
	return &domain.Report{
		File:       "api/Dockerfile",
		Kind:       domain.KindDockerfile,
		Issues:     issues,
		Score:      scoring.New().Score(issues),
		CommitHash: "0123456789abcdef",
	}
}

func view(r *domain.Report) tui.ReportView {
	return tui.ReportView{Report: r, Catalog: rules.Default(), Scorer: scoring.New()}
}

func TestRenderReport_Header(t *testing.T) {
	output := tui.RenderReport(view(sampleReport()))
	assert.Contains(t, output, "api/Dockerfile")
	assert.Contains(t, output, "/ 10")
	assert.Contains(t, output, "0123456")
}

func TestRenderReport_Categories(t *testing.T) {
	output := tui.RenderReport(view(sampleReport()))
	assert.Contains(t, output, "security")
	assert.Contains(t, output, "performance")
	assert.Contains(t, output, "maintainability")
	assert.Contains(t, output, "█")
}

func TestRenderReport_IssueSummaryCount(t *testing.T) {
	output := tui.RenderReport(view(sampleReport()))
	assert.Contains(t, output, "1 critical")
	assert.Contains(t, output, "1 warnings")
	assert.Contains(t, output, "1 suggestions")
}

func TestRenderReport_Issues(t *testing.T) {
	output := tui.RenderReport(view(sampleReport()))
	assert.Contains(t, output, "DF002")
	assert.Contains(t, output, "container runs as root")
	assert.Contains(t, output, "line 2")
	assert.Contains(t, output, "add a USER instruction")
}

func TestRenderReport_CriticalBeforeSuggestions(t *testing.T) {
	output := tui.RenderReport(view(sampleReport()))
	critIdx := strings.Index(output, "container runs as root")
	sugIdx := strings.Index(output, "no HEALTHCHECK")
	assert.True(t, critIdx < sugIdx, "critical issues should appear first")
}

func TestRenderReport_SummaryOnly(t *testing.T) {
	v := view(sampleReport())
	v.SummaryOnly = true
	output := tui.RenderReport(v)
	assert.Contains(t, output, "1 critical")
	assert.NotContains(t, output, "container runs as root")
}

func TestRenderReport_EstimateImpact(t *testing.T) {
	v := view(sampleReport())
	v.EstimateImpact = true
	output := tui.RenderReport(v)
	assert.Contains(t, output, "Estimated Impact")
	assert.Contains(t, output, "overall when fixed")
	assert.Contains(t, output, "→ 10.0")

	plain := tui.RenderReport(view(sampleReport()))
	assert.NotContains(t, plain, "Estimated Impact")
}

func TestRenderReport_NoIssues(t *testing.T) {
	r := &domain.Report{File: "Dockerfile", Issues: []domain.Issue{}, Score: scoring.New().Score(nil)}
	output := tui.RenderReport(view(r))
	assert.Contains(t, output, "No issues found")
	assert.Contains(t, output, "A+")
}

func TestRenderSummary(t *testing.T) {
	a := sampleReport()
	b := &domain.Report{File: "docker-compose.yml", Issues: []domain.Issue{{RuleID: "DC002", Severity: domain.SeverityCritical}}}
	output := tui.RenderSummary([]*domain.Report{a, b})
	assert.Contains(t, output, "api/Dockerfile")
	assert.Contains(t, output, "docker-compose.yml")
	assert.Contains(t, output, "2 files")
	assert.Contains(t, output, "2 critical")
}

func TestRenderRules(t *testing.T) {
	c, err := rules.NewCatalog(rules.DefaultHeuristics(), rules.WithDisabled("DF005"))
	require.NoError(t, err)

	output := tui.RenderRules(c, scoring.New())
	assert.Contains(t, output, "Dockerfile rules")
	assert.Contains(t, output, "Compose rules")
	for _, id := range c.IDs() {
		assert.Contains(t, output, id)
	}
	assert.True(t, strings.Index(output, "DF011") < strings.Index(output, "DC001"))
}

func TestRenderExplain(t *testing.T) {
	r, ok := rules.Default().Lookup("df001")
	require.True(t, ok)

	output := tui.RenderExplain(r, domain.CategorySecurity)
	assert.Contains(t, output, "DF001")
	assert.Contains(t, output, r.Name)
	assert.Contains(t, output, "security")
	assert.Contains(t, output, "How to fix")
	assert.Contains(t, output, r.Fix)
}

func TestRenderHistory(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.ScoreEntry{
		{Timestamp: day, CommitHash: "aaaaaaaaaa", File: "Dockerfile", Score: domain.ScoreCard{Overall: 6.0}, Grade: "C"},
		{Timestamp: day.Add(24 * time.Hour), CommitHash: "bbbbbbbbbb", File: "Dockerfile", Score: domain.ScoreCard{Overall: 8.5}, Grade: "A"},
		{Timestamp: day.Add(48 * time.Hour), File: "Dockerfile", Score: domain.ScoreCard{Overall: 7.0}, Grade: "B"},
	}

	output := tui.RenderHistory(entries)
	assert.Contains(t, output, "Score History")
	assert.Contains(t, output, "2026-03-01")
	assert.Contains(t, output, "aaaaaaa")
	assert.Contains(t, output, "↑2.5")
	assert.Contains(t, output, "↓1.5")
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, tui.RenderHistory(nil), "No score history found")
}
