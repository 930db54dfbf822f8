package rules

import (
	"fmt"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

func latestTag(_ *matchers) Rule {
	return Rule{
		ID:          "DF001",
		Name:        "Using latest tag",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeDockerfile,
		Description: "Avoid using the 'latest' tag or omitting tags in FROM instructions",
		Rationale: "Using 'latest' or implicit tags causes unpredictable builds. The same Dockerfile " +
			"may build differently on different days as the base image changes. This breaks " +
			"reproducibility, makes debugging harder, and can introduce security vulnerabilities " +
			"without warning.",
		Fix: "Pin to a specific version tag (e.g., FROM node:18.17.0-alpine)",
		Impact: Impact{
			Security:    "Prevents unexpected vulnerability introduction",
			Reliability: "100% build reproducibility",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, ref := range externalImages(m) {
				if !ref.image.Floating() {
					continue
				}
				msg := fmt.Sprintf("Image '%s' has no tag (implicitly uses 'latest')", ref.image)
				if ref.image.HasTag() {
					msg = fmt.Sprintf("Image '%s' explicitly uses ':latest' tag", ref.image)
				}
				out = append(out, Finding{Line: ref.line, Message: msg, Context: ref.image.String()})
			}
			return out
		},
	}
}

type fromImage struct {
	image domain.ImageRef
	line  int
}

// externalImages returns the FROM references that name a registry image:
// scratch, earlier stage aliases and variable references are left out.
func externalImages(m *domain.DockerfileModel) []fromImage {
	var out []fromImage
	aliases := map[string]bool{}
	for _, st := range m.Stages {
		ref := *st.From.Image
		name := strings.ToLower(ref.Name)
		internal := name == "scratch" || aliases[name] || strings.HasPrefix(ref.Name, "$")
		if st.Alias != "" {
			aliases[strings.ToLower(st.Alias)] = true
		}
		if !internal {
			out = append(out, fromImage{image: ref, line: st.From.Line})
		}
	}
	return out
}
