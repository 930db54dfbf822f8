package rules

import (
	"fmt"
	"sort"

	"github.com/dockreview/dockreview/internal/domain"
)

func noRestartPolicy(_ *matchers) Rule {
	return Rule{
		ID:          "DC001",
		Name:        "No restart policy",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryMaintainability,
		AppliesTo:   ScopeService,
		Description: "Service has no restart policy defined",
		Rationale: "Without a restart policy, crashed containers stay down. This leads to " +
			"service outages that require manual intervention. Use 'unless-stopped' " +
			"or 'always' for production services.",
		Fix:    "Add 'restart: unless-stopped' or 'restart: always' to the service",
		Impact: Impact{Reliability: "Automatic recovery from crashes"},
		Service: func(s *domain.Service) []Finding {
			if s.RestartPolicy != nil {
				return nil
			}
			return []Finding{{
				Line:    s.Line,
				Message: fmt.Sprintf("Service '%s' has no restart policy", s.Name),
				Context: s.Name,
			}}
		},
	}
}

func privilegedService(_ *matchers) Rule {
	return Rule{
		ID:          "DC002",
		Name:        "Privileged container",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeService,
		Description: "Service runs in privileged mode",
		Rationale: "Privileged mode gives the container full access to the host system, " +
			"bypassing all security isolation. A compromised privileged container " +
			"can trivially escape to the host. Only use if absolutely necessary.",
		Fix:    "Remove 'privileged: true' and use specific capabilities (cap_add) if needed",
		Impact: Impact{Security: "Critical - prevents container escape"},
		Service: func(s *domain.Service) []Finding {
			if !s.Privileged {
				return nil
			}
			return []Finding{{
				Line:    s.Line,
				Message: fmt.Sprintf("Service '%s' runs in privileged mode", s.Name),
				Context: s.Name,
			}}
		},
	}
}

func noResourceLimits(_ *matchers) Rule {
	return Rule{
		ID:          "DC003",
		Name:        "No resource limits",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryMaintainability,
		AppliesTo:   ScopeService,
		Description: "Service has no memory or CPU limits defined",
		Rationale: "Without resource limits, a single container can consume all host resources, " +
			"starving other containers and potentially crashing the host. Always set " +
			"memory and CPU limits in production.",
		Fix: "Add 'deploy.resources.limits' or 'mem_limit' and 'cpus' to the service",
		Impact: Impact{
			Security:    "Prevents denial of service",
			Reliability: "Prevents resource exhaustion",
		},
		Service: func(s *domain.Service) []Finding {
			if s.Limits != nil && (s.Limits.CPU != nil || s.Limits.Memory != nil) {
				return nil
			}
			return []Finding{{
				Line:    s.Line,
				Message: fmt.Sprintf("Service '%s' has no resource limits", s.Name),
				Context: s.Name,
			}}
		},
	}
}

func serviceLatestTag(_ *matchers) Rule {
	return Rule{
		ID:          "DC004",
		Name:        "Using latest tag",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeService,
		Description: "Service uses 'latest' tag or implicit tag in image reference",
		Rationale: "Using 'latest' or implicit tags causes unpredictable deployments. " +
			"The same compose file may deploy different versions on different days. " +
			"Pin to specific versions for reproducible deployments.",
		Fix: "Pin to a specific version tag (e.g., image: nginx:1.25.3)",
		Impact: Impact{
			Security:    "Prevents unexpected vulnerability introduction",
			Reliability: "100% reproducible deployments",
		},
		Service: func(s *domain.Service) []Finding {
			if s.Image == nil || !s.Image.Floating() {
				return nil
			}
			msg := fmt.Sprintf("Service '%s' uses image without tag (implicitly 'latest'): %s", s.Name, s.Image)
			if s.Image.HasTag() {
				msg = fmt.Sprintf("Service '%s' uses image with ':latest' tag: %s", s.Name, s.Image)
			}
			return []Finding{{Line: s.Line, Message: msg, Context: s.Image.String()}}
		},
	}
}

func hardcodedSecrets(mx *matchers) Rule {
	return Rule{
		ID:          "DC005",
		Name:        "Hardcoded secrets",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeService,
		Description: "Service has hardcoded secrets in environment variables",
		Rationale: "Hardcoded secrets in docker-compose files are stored in version control, " +
			"visible to anyone with repo access, and cannot be rotated without updating " +
			"the file. Use environment variables, env_file, or Docker secrets.",
		Fix:    "Use env_file, Docker secrets, or environment variable substitution (${VAR})",
		Impact: Impact{Security: "Critical - prevents credential exposure"},
		Service: func(s *domain.Service) []Finding {
			keys := make([]string, 0, len(s.Environment))
			for k := range s.Environment {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			var out []Finding
			for _, k := range keys {
				if mx.secrets.match(k, s.Environment[k]) {
					out = append(out, Finding{
						Line:    s.Line,
						Message: fmt.Sprintf("Service '%s' has hardcoded secret in environment: %s", s.Name, k),
						Context: k,
					})
				}
			}
			return out
		},
	}
}

func noImageSource(_ *matchers) Rule {
	return Rule{
		ID:          "DC006",
		Name:        "No image or build",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryMaintainability,
		AppliesTo:   ScopeService,
		Description: "Service defines neither an image nor a build section",
		Rationale: "Compose cannot create a container without an image to pull or a build " +
			"context to build from. The service fails at startup.",
		Fix:    "Add 'image: name:tag' or a 'build' section to the service",
		Impact: Impact{Reliability: "Service can start"},
		Service: func(s *domain.Service) []Finding {
			if s.Image != nil || s.Build {
				return nil
			}
			return []Finding{{
				Line:    s.Line,
				Message: fmt.Sprintf("Service '%s' has neither image nor build", s.Name),
				Context: s.Name,
			}}
		},
	}
}
