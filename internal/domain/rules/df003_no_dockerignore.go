package rules

import "github.com/dockreview/dockreview/internal/domain"

func noDockerignore(_ *matchers) Rule {
	return Rule{
		ID:          "DF003",
		Name:        "No .dockerignore",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryPerformance,
		AppliesTo:   ScopeDockerfile,
		Description: "No .dockerignore file found in the build context",
		Rationale: "Without a .dockerignore file, Docker copies all files in the build context, " +
			"including node_modules, .git, build artifacts, and other unnecessary files. " +
			"This bloats the image, slows down builds, and may leak sensitive files.",
		Fix: "Create a .dockerignore file with patterns like: .git, node_modules, *.log, .env",
		Impact: Impact{
			BuildTime: "Can reduce build context transfer by 50-90%",
			ImageSize: "Can reduce image size by 20-80%",
			Security:  "Prevents accidental inclusion of secrets",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			if m.Context == nil || m.Context.HasDockerignore {
				return nil
			}
			return []Finding{{
				Message: "No .dockerignore file found in the build context",
				Context: m.Context.Dir,
			}}
		},
	}
}
