package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dockreview/dockreview/internal/adapters/outbound/gitinfo"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/rules"
	"github.com/dockreview/dockreview/internal/domain/scoring"
	"github.com/muesli/termenv"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
	lime    = lipgloss.Color("#A3E635")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	gradeColors = map[string]lipgloss.Color{
		"A+": success,
		"A":  success,
		"B":  lime,
		"C":  warning,
		"D":  lipgloss.Color("#FB923C"), // orange
		"F":  danger,
	}

	dimStyle        = lipgloss.NewStyle().Foreground(dim)
	faintStyle      = lipgloss.NewStyle().Foreground(faint)
	passStyle       = lipgloss.NewStyle().Foreground(success)
	failStyle       = lipgloss.NewStyle().Foreground(danger)
	criticalStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle    = lipgloss.NewStyle().Foreground(warning).Bold(true)
	suggestTagStyle = lipgloss.NewStyle().Foreground(info).Bold(true)
	fixStyle        = lipgloss.NewStyle().Foreground(success)
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(fg)
	catNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine   = faintStyle.Render(strings.Repeat("─", 64))
)

// DisableColor switches every style to plain ASCII output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ReportView is what RenderReport needs besides the report itself.
type ReportView struct {
	Report         *domain.Report
	Catalog        *rules.Catalog  // rule impact text
	Scorer         *scoring.Scorer // impact estimates
	SummaryOnly    bool
	EstimateImpact bool
}

// RenderReport renders one file's scorecard and issues.
func RenderReport(v ReportView) string {
	var b strings.Builder
	r := v.Report

	// ── Header ──
	grade := r.Score.Grade()
	title := headerStyle.Render("dockreview")
	subtitle := dimStyle.Render(r.File)
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%.1f / 10", r.Score.Overall))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(grade)

	header := title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + gradeStyled
	if r.CommitHash != "" {
		header += "\n" + faintStyle.Render("commit "+gitinfo.Short(r.CommitHash))
	}
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	// ── Categories ──
	for _, c := range domain.Categories {
		renderCategory(&b, string(c), r.Score.Get(c))
	}
	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Issues ──
	if len(r.Issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n\n")
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("  ")
	b.WriteString(countLine(r))
	b.WriteString("\n\n")

	if !v.SummaryOnly {
		for _, iss := range r.Issues {
			renderIssue(&b, iss, v)
		}
	}

	if v.EstimateImpact {
		renderImpact(&b, r)
	}

	return b.String()
}

func countLine(r *domain.Report) string {
	parts := []string{
		criticalStyle.Render(fmt.Sprintf("%d critical", r.Count(domain.SeverityCritical))),
		warnTagStyle.Render(fmt.Sprintf("%d warnings", r.Count(domain.SeverityWarning))),
		suggestTagStyle.Render(fmt.Sprintf("%d suggestions", r.Count(domain.SeveritySuggestion))),
	}
	return strings.Join(parts, "  ")
}

func renderCategory(b *strings.Builder, name string, score float64) {
	color := scoreColor(score)
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%4.1f", score))
	fmt.Fprintf(b, "  %s %s  %s\n", catNameStyle.Render(padRight(name, 18)), coloredBar(score, 20), scoreText)
}

func renderIssue(b *strings.Builder, iss domain.Issue, v ReportView) {
	loc := ""
	if iss.Line != nil {
		loc = dimStyle.Render(fmt.Sprintf("line %d", *iss.Line))
	}
	fmt.Fprintf(b, "    %s %s %s  %s\n", severityTag(iss.Severity), titleStyle.Render(iss.RuleID), iss.RuleName, loc)
	fmt.Fprintf(b, "         %s\n", iss.Message)
	if iss.Context != "" {
		fmt.Fprintf(b, "         %s\n", faintStyle.Render(truncate(iss.Context, 72)))
	}
	if iss.Fix != "" {
		fmt.Fprintf(b, "         %s %s\n", fixStyle.Render("fix:"), iss.Fix)
	}

	if v.EstimateImpact {
		if v.Scorer != nil {
			gain := v.Scorer.EstimateGain(v.Report.Issues, iss)
			fmt.Fprintf(b, "         %s\n", dimStyle.Render(fmt.Sprintf("+%.1f overall when fixed", gain)))
		}
		if v.Catalog != nil {
			if rule, ok := v.Catalog.Lookup(iss.RuleID); ok {
				for _, line := range impactLines(rule.Impact) {
					fmt.Fprintf(b, "         %s\n", dimStyle.Render(line))
				}
			}
		}
	}
	b.WriteString("\n")
}

func renderImpact(b *strings.Builder, r *domain.Report) {
	b.WriteString("  " + titleStyle.Render("Estimated Impact") + "\n")
	b.WriteString("  " + dimStyle.Render("Fixing all issues could improve:") + "\n")
	for _, c := range domain.Categories {
		fmt.Fprintf(b, "    %s %4.1f → %4.1f\n", padRight(string(c), 18), r.Score.Get(c), scoring.MaxScore)
	}
	fmt.Fprintf(b, "    %s %4.1f → %4.1f\n\n", padRight("overall", 18), r.Score.Overall, scoring.MaxScore)
}

func impactLines(i rules.Impact) []string {
	var out []string
	add := func(label, text string) {
		if text != "" {
			out = append(out, label+": "+text)
		}
	}
	add("Build", i.BuildTime)
	add("Size", i.ImageSize)
	add("Security", i.Security)
	add("Reliability", i.Reliability)
	return out
}

// RenderSummary renders one line per report and the combined issue count.
func RenderSummary(reports []*domain.Report) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Summary") + "\n")
	b.WriteString("  " + separatorLine + "\n")

	total := &domain.Report{}
	for _, r := range reports {
		grade := r.Score.Grade()
		score := lipgloss.NewStyle().Foreground(gradeColor(grade)).Render(fmt.Sprintf("%4.1f %-2s", r.Score.Overall, grade))
		fmt.Fprintf(&b, "  %s %s  %s\n", padRight(r.File, 40), score, dimStyle.Render(fmt.Sprintf("%d issues", len(r.Issues))))
		total.Issues = append(total.Issues, r.Issues...)
	}

	fmt.Fprintf(&b, "\n  %s  %s\n\n", dimStyle.Render(fmt.Sprintf("%d files", len(reports))), countLine(total))
	return b.String()
}

func severityTag(sev domain.Severity) string {
	switch sev {
	case domain.SeverityCritical:
		return criticalStyle.Render("critical  ")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warning   ")
	default:
		return suggestTagStyle.Render("suggestion")
	}
}

func coloredBar(score float64, width int) string {
	filled := max(0, min(int(score*float64(width)/scoring.MaxScore+0.5), width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 8:
		return success
	case score >= 6:
		return lime
	case score >= 4:
		return warning
	default:
		return danger
	}
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats score history for terminal output.
func RenderHistory(entries []domain.ScoreEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No score history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Score History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 64)) + "\n\n")

	prev := map[string]float64{}
	for _, e := range entries {
		hash := gitinfo.Short(e.CommitHash)
		if hash == "" {
			hash = "·······"
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(e.Score.Overall)).
			Render(fmt.Sprintf("%4.1f/10", e.Score.Overall))

		line := fmt.Sprintf("  %s  %s  %s  %-2s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02")),
			faintStyle.Render(hash),
			scoreStyled,
			e.Grade,
			e.File,
		)

		if last, ok := prev[e.File]; ok {
			diff := e.Score.Overall - last
			if diff > 0.05 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.1f", diff))
			} else if diff < -0.05 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.1f", -diff))
			}
		}
		prev[e.File] = e.Score.Overall

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return fg
}
