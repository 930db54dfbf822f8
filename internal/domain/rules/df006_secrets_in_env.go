package rules

import (
	"fmt"

	"github.com/dockreview/dockreview/internal/domain"
)

func secretsInEnv(mx *matchers) Rule {
	return Rule{
		ID:          "DF006",
		Name:        "Secrets in ENV",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeDockerfile,
		Description: "Potential secrets or passwords hardcoded in ENV or ARG instructions",
		Rationale: "Secrets in ENV instructions are baked into the image and visible to anyone " +
			"with access to the image. They appear in docker history, can be extracted, " +
			"and cannot be rotated without rebuilding. Use runtime secrets instead.",
		Fix: "Use runtime environment variables, Docker secrets, or a secrets manager instead",
		Impact: Impact{
			Security: "Critical - prevents credential exposure",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, in := range m.Instructions {
				if in.Kind != domain.KindEnv && in.Kind != domain.KindArg {
					continue
				}
				for _, kv := range envPairs(in) {
					if !mx.secrets.match(kv[0], kv[1]) {
						continue
					}
					msg := fmt.Sprintf("Potential secret %s hardcoded in ENV instruction", kv[0])
					if in.Kind == domain.KindArg {
						msg = fmt.Sprintf("Potential secret %s in ARG instruction (visible in image history)", kv[0])
					}
					out = append(out, Finding{Line: in.Line, Message: msg, Context: kv[0]})
				}
			}
			return out
		},
	}
}
