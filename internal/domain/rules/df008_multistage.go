package rules

import "github.com/dockreview/dockreview/internal/domain"

func missingMultistage(mx *matchers) Rule {
	return Rule{
		ID:          "DF008",
		Name:        "Missing multi-stage build",
		Severity:    domain.SeveritySuggestion,
		Category:    domain.CategoryPerformance,
		AppliesTo:   ScopeDockerfile,
		Description: "Consider using multi-stage builds for compiled languages",
		Rationale: "For compiled languages (Go, Rust, Java, etc.), multi-stage builds dramatically " +
			"reduce image size by separating build dependencies from runtime. The final image " +
			"only contains the compiled binary, not compilers, build tools, or source code.",
		Fix: "Use multi-stage build: compile in one stage, copy binary to minimal runtime image",
		Impact: Impact{
			ImageSize: "Can reduce image size by 80-95%",
			Security:  "Smaller attack surface",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			if len(m.Stages) != 1 {
				return nil
			}
			for _, in := range m.Stages[0].Instructions {
				if in.Kind != domain.KindRun {
					continue
				}
				if tool, ok := mx.build.match(command(in)); ok {
					return []Finding{{
						Line:    in.Line,
						Message: "Single-stage build with compilation detected (" + tool + ") - consider multi-stage build",
						Context: tool,
					}}
				}
			}
			return nil
		},
	}
}
