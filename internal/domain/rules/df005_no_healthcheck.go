package rules

import "github.com/dockreview/dockreview/internal/domain"

func noHealthcheck(_ *matchers) Rule {
	return Rule{
		ID:          "DF005",
		Name:        "No HEALTHCHECK",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryMaintainability,
		AppliesTo:   ScopeStage,
		Description: "No HEALTHCHECK instruction defined",
		Rationale: "Without a HEALTHCHECK, Docker and orchestrators cannot determine if your " +
			"application is actually healthy. A container may be running but unresponsive. " +
			"HEALTHCHECK enables automatic restarts and proper load balancing.",
		Fix: "Add HEALTHCHECK instruction (e.g., HEALTHCHECK --interval=30s CMD curl -f http://localhost/ || exit 1)",
		Impact: Impact{
			Reliability: "Enables automatic container recovery",
		},
		// Only images that declare how they run (CMD, ENTRYPOINT or EXPOSE)
		// are services worth health-checking.
		Stage: func(m *domain.DockerfileModel, s domain.Stage) []Finding {
			if !m.IsFinal(s.Index) || s.Has(domain.KindHealthcheck) {
				return nil
			}
			if !s.Has(domain.KindCmd, domain.KindEntrypoint, domain.KindExpose) {
				return nil
			}
			return []Finding{{Message: "No HEALTHCHECK instruction - container health cannot be monitored"}}
		},
	}
}
