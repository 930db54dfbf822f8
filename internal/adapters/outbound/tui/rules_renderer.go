package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/rules"
	"github.com/dockreview/dockreview/internal/domain/scoring"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
	disabledStyle      = lipgloss.NewStyle().Foreground(faint).Strikethrough(true)
)

// RenderRules lists the catalog grouped by file kind.
func RenderRules(c *rules.Catalog, s *scoring.Scorer) string {
	var b strings.Builder
	b.WriteString("\n")

	groups := []struct {
		title string
		kind  domain.FileKind
	}{
		{"Dockerfile rules", domain.KindDockerfile},
		{"Compose rules", domain.KindCompose},
	}
	for _, g := range groups {
		var rows []rules.Rule
		for _, r := range c.Rules() {
			if r.AppliesTo.Kind() == g.kind {
				rows = append(rows, r)
			}
		}
		fmt.Fprintf(&b, "  %s %s\n", sectionHeaderStyle.Render(g.title), dimStyle.Render(fmt.Sprintf("(%d)", len(rows))))

		for _, r := range rows {
			id := titleStyle.Render(r.ID)
			name := padRight(r.Name, 34)
			if r.Disabled {
				id = disabledStyle.Render(r.ID)
				name = disabledStyle.Render(name)
			}
			fmt.Fprintf(&b, "    %s  %s %s  %s\n", id, name, severityTag(r.Severity), dimStyle.Render(string(s.CategoryOf(r.ID))))
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + hintStyle.Render("Run `dockreview explain <id>` for details.") + "\n")
	return b.String()
}

// RenderExplain describes one rule in full.
func RenderExplain(r rules.Rule, category domain.Category) string {
	var b strings.Builder

	header := titleStyle.Render(r.ID+"  "+r.Name) + "\n" +
		severityTag(r.Severity) + "  " + dimStyle.Render(string(category)+" · "+r.AppliesTo.String())
	if r.Disabled {
		header += "\n" + faintStyle.Render("disabled by configuration")
	}
	b.WriteString(boxStyle.Align(lipgloss.Left).Render(header))
	b.WriteString("\n\n")

	section := func(title, body string) {
		if body == "" {
			return
		}
		b.WriteString("  " + sectionHeaderStyle.Render(title) + "\n")
		b.WriteString("    " + body + "\n\n")
	}
	section("What it checks", r.Description)
	section("Why it matters", r.Rationale)
	section("How to fix", r.Fix)

	if !r.Impact.IsZero() {
		b.WriteString("  " + sectionHeaderStyle.Render("Impact") + "\n")
		for _, line := range impactLines(r.Impact) {
			b.WriteString("    " + line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
