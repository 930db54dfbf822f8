package rules

import (
	"fmt"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

func largeBaseImage(mx *matchers) Rule {
	return Rule{
		ID:          "DF009",
		Name:        "Large base image",
		Severity:    domain.SeveritySuggestion,
		Category:    domain.CategoryPerformance,
		AppliesTo:   ScopeDockerfile,
		Description: "Using a large base image when smaller alternatives exist",
		Rationale: "Large base images (ubuntu, debian, centos) are often 100MB-1GB. Alpine-based " +
			"or slim images are typically 5-50MB. Smaller images download faster, have " +
			"smaller attack surface, and reduce storage/transfer costs.",
		Fix: "Use alpine or slim variants (e.g., node:18-alpine, python:3.11-slim)",
		Impact: Impact{
			BuildTime: "Faster image pulls",
			ImageSize: "Can reduce base image by 70-95%",
			Security:  "Smaller attack surface",
		},
		// Untagged references are left to DF001: their variant is unknown
		// until a tag is chosen.
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, ref := range externalImages(m) {
				img := ref.image
				if !img.HasTag() || !mx.heavy[img.BaseName()] || slimVariant(mx, img) {
					continue
				}
				out = append(out, Finding{
					Line:    ref.line,
					Message: fmt.Sprintf("'%s' is a large base image - consider alpine or slim variants", img),
					Context: img.String(),
					Fix:     fmt.Sprintf("Use a slim or alpine variant (e.g., %s:%s-slim or %s:%s-alpine)", img.Name, img.Tag, img.Name, img.Tag),
				})
			}
			return out
		},
	}
}

func slimVariant(mx *matchers, img domain.ImageRef) bool {
	s := strings.ToLower(img.Name + ":" + img.Tag)
	for _, marker := range mx.slim {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
