package rules

import (
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

func rootUser(_ *matchers) Rule {
	return Rule{
		ID:          "DF002",
		Name:        "Running as root",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeStage,
		Description: "Container runs as root user without specifying a non-root USER",
		Rationale: "Running containers as root is a significant security risk. If an attacker " +
			"compromises the container, they have root privileges which can be used to " +
			"escape to the host system or access sensitive data. Always run containers " +
			"as a non-privileged user.",
		Fix: "Add a USER instruction to switch to a non-root user (e.g., USER node, USER 1000)",
		Impact: Impact{
			Security: "Major security improvement - reduces container breakout risk",
		},
		Stage: func(m *domain.DockerfileModel, s domain.Stage) []Finding {
			if !m.IsFinal(s.Index) {
				return nil
			}
			user, ok := effectiveUser(m, s)
			if !ok {
				return []Finding{{Message: "No USER instruction found - container will run as root"}}
			}
			name := userName(user)
			if name == "root" || name == "0" {
				return []Finding{{
					Line:    user.Line,
					Message: "Container explicitly set to run as root",
					Context: user.Text,
				}}
			}
			return nil
		},
	}
}

// effectiveUser returns the last USER of s, following FROM references to
// earlier stages, which the stage inherits its user from.
func effectiveUser(m *domain.DockerfileModel, s domain.Stage) (domain.Instruction, bool) {
	for {
		if user, ok := s.Last(domain.KindUser); ok {
			return user, true
		}
		parent, ok := stageByAlias(m, s.From.Image.Name, s.Index)
		if !ok {
			return domain.Instruction{}, false
		}
		s = parent
	}
}

func stageByAlias(m *domain.DockerfileModel, name string, before int) (domain.Stage, bool) {
	for i := before - 1; i >= 0; i-- {
		if m.Stages[i].Alias != "" && strings.EqualFold(m.Stages[i].Alias, name) {
			return m.Stages[i], true
		}
	}
	return domain.Stage{}, false
}

// userName returns the user part of "USER name[:group]".
func userName(in domain.Instruction) string {
	ops := in.Operands()
	if len(ops) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(ops[0], ":")
	return strings.ToLower(name)
}
