package rules

import (
	"fmt"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

func layerCount(_ *matchers) Rule {
	return Rule{
		ID:          "DF011",
		Name:        "Inefficient layer usage",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryPerformance,
		AppliesTo:   ScopeDockerfile,
		Description: "Inefficient Dockerfile layering wastes space and slows builds",
		Rationale: "Every RUN instruction creates a layer. When apt-get clean or rm -rf runs in a " +
			"separate layer from the install, space is NOT saved because the files are already " +
			"persisted in the previous layer. Combine related operations in a single RUN and clean " +
			"up in the same layer. Use --no-install-recommends to skip unnecessary packages.",
		Fix: "Combine apt-get update, install, and cleanup in single RUN with && and use --no-install-recommends",
		Impact: Impact{
			BuildTime: "Fewer layers = faster builds",
			ImageSize: "Proper cleanup can save 50-200MB",
			Security:  "Smaller attack surface",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, st := range m.Stages {
				out = append(out, consecutiveRuns(st)...)
			}
			for _, in := range m.Instructions {
				if in.Kind == domain.KindRun && aptWithoutNoRecommends(in) {
					out = append(out, Finding{
						Line:     in.Line,
						Message:  "apt-get install without --no-install-recommends may install unnecessary packages",
						Context:  command(in),
						Fix:      "Add --no-install-recommends flag to apt-get install",
						Severity: domain.SeveritySuggestion,
					})
				}
			}
			return out
		},
	}
}

// consecutiveRuns reports each run of two or more adjacent shell-form RUN
// instructions, at the first of them.
func consecutiveRuns(st domain.Stage) []Finding {
	var (
		out   []Finding
		first domain.Instruction
		n     int
	)
	flush := func() {
		if n >= 2 {
			out = append(out, Finding{
				Line:    first.Line,
				Message: fmt.Sprintf("%d consecutive RUN instructions - combine them with && to reduce layers", n),
				Context: command(first),
			})
		}
		n = 0
	}
	for _, in := range st.Instructions {
		if in.Kind != domain.KindRun || in.ExecForm {
			flush()
			continue
		}
		if n == 0 {
			first = in
		}
		n++
	}
	flush()
	return out
}

func aptWithoutNoRecommends(in domain.Instruction) bool {
	for _, seg := range segments(in.Operands()) {
		words := stripPrefix(seg)
		if _, ok := matchWords(words, []string{"apt-get", "install"}); !ok {
			continue
		}
		found := false
		for _, w := range words {
			if w == "--no-install-recommends" || strings.HasPrefix(w, "--no-install-recommends=") {
				found = true
			}
		}
		if !found {
			return true
		}
	}
	return false
}
