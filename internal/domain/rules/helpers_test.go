package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dockreview/dockreview/internal/adapters/outbound/parser"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/rules"
)

func dockerfile(t *testing.T, src string) *domain.DockerfileModel {
	t.Helper()
	m, err := parser.New().ParseDockerfile("Dockerfile", []byte(src), nil)
	require.NoError(t, err)
	return m
}

func compose(t *testing.T, src string) *domain.ComposeModel {
	t.Helper()
	m, err := parser.New().ParseCompose("compose.yml", []byte(src))
	require.NoError(t, err)
	return m
}

func lookup(t *testing.T, c *rules.Catalog, id string) rules.Rule {
	t.Helper()
	r, ok := c.Lookup(id)
	require.True(t, ok, "rule %s not in catalog", id)
	return r
}

// evalDockerfile runs one rule of the default catalog over m.
func evalDockerfile(t *testing.T, id string, m *domain.DockerfileModel) []domain.Issue {
	t.Helper()
	return evalDockerfileWith(t, rules.Default(), id, m)
}

func evalDockerfileWith(t *testing.T, c *rules.Catalog, id string, m *domain.DockerfileModel) []domain.Issue {
	t.Helper()
	r := lookup(t, c, id)

	var findings []rules.Finding
	switch r.AppliesTo {
	case rules.ScopeDockerfile:
		findings = r.Dockerfile(m)
	case rules.ScopeStage:
		for _, s := range m.Stages {
			findings = append(findings, r.Stage(m, s)...)
		}
	default:
		t.Fatalf("rule %s does not apply to Dockerfiles", id)
	}
	return toIssues(r, findings)
}

func evalCompose(t *testing.T, id string, m *domain.ComposeModel) []domain.Issue {
	t.Helper()
	r := lookup(t, rules.Default(), id)
	require.Equal(t, rules.ScopeService, r.AppliesTo)

	var findings []rules.Finding
	m.Each(func(s *domain.Service) { findings = append(findings, r.Service(s)...) })
	return toIssues(r, findings)
}

func toIssues(r rules.Rule, findings []rules.Finding) []domain.Issue {
	var out []domain.Issue
	for _, f := range findings {
		out = append(out, r.Issue(f))
	}
	return out
}

func lines(issues []domain.Issue) []int {
	out := make([]int, len(issues))
	for i, iss := range issues {
		out[i] = iss.LineOrZero()
	}
	return out
}
