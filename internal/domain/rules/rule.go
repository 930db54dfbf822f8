// Package rules holds the catalog of Dockerfile and Compose checks.
package rules

import "github.com/dockreview/dockreview/internal/domain"

// Scope says which slice of a model a rule is evaluated against.
type Scope int

const (
	ScopeDockerfile Scope = iota // whole Dockerfile, once
	ScopeStage                   // each Dockerfile stage
	ScopeService                 // each Compose service
)

func (s Scope) String() string {
	switch s {
	case ScopeDockerfile:
		return "dockerfile"
	case ScopeStage:
		return "stage"
	case ScopeService:
		return "service"
	default:
		return "unknown"
	}
}

// Kind returns the file kind the scope belongs to.
func (s Scope) Kind() domain.FileKind {
	if s == ScopeService {
		return domain.KindCompose
	}
	return domain.KindDockerfile
}

// Impact is the estimated benefit of fixing a rule's findings.
type Impact struct {
	BuildTime   string `json:"build_time,omitempty"`
	ImageSize   string `json:"image_size,omitempty"`
	Security    string `json:"security,omitempty"`
	Reliability string `json:"reliability,omitempty"`
}

func (i Impact) IsZero() bool { return i == Impact{} }

// Finding is what a rule body reports. The catalog turns it into an Issue.
type Finding struct {
	Line     int             // 0 when no line applies
	Message  string
	Context  string
	Fix      string          // overrides the rule's fix when set
	Severity domain.Severity // overrides the rule's severity when set
}

// Rule is one catalog entry. Exactly one of the evaluation functions is set,
// matching AppliesTo.
type Rule struct {
	ID          string
	Name        string
	Severity    domain.Severity
	Category    domain.Category
	AppliesTo   Scope
	Description string
	Rationale   string
	Fix         string
	Impact      Impact
	Disabled    bool

	Dockerfile func(m *domain.DockerfileModel) []Finding
	Stage      func(m *domain.DockerfileModel, s domain.Stage) []Finding
	Service    func(s *domain.Service) []Finding
}

// Issue stamps a finding with the rule's identity and severity.
func (r Rule) Issue(f Finding) domain.Issue {
	iss := domain.Issue{
		RuleID:   r.ID,
		RuleName: r.Name,
		Severity: r.Severity,
		Message:  f.Message,
		Fix:      r.Fix,
		Context:  f.Context,
	}
	if f.Fix != "" {
		iss.Fix = f.Fix
	}
	if f.Severity != "" {
		iss.Severity = f.Severity
	}
	if f.Line > 0 {
		iss.Line = domain.LineRef(f.Line)
	}
	return iss
}
