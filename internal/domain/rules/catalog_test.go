package rules_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/rules"
)

func TestCatalog_OrderedUniqueIDs(t *testing.T) {
	c := rules.Default()
	ids := c.IDs()

	assert.Equal(t, []string{
		"DC001", "DC002", "DC003", "DC004", "DC005", "DC006",
		"DF001", "DF002", "DF003", "DF004", "DF005", "DF006",
		"DF007", "DF008", "DF009", "DF010", "DF011",
	}, ids)
	assert.True(t, sort.StringsAreSorted(ids))

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCatalog_EveryRuleIsComplete(t *testing.T) {
	for _, r := range rules.Default().Rules() {
		t.Run(r.ID, func(t *testing.T) {
			assert.NotEmpty(t, r.Name)
			assert.NotEmpty(t, r.Description)
			assert.NotEmpty(t, r.Rationale)
			assert.NotEmpty(t, r.Fix)
			assert.True(t, r.Severity.Valid())
			assert.Contains(t, domain.Categories, r.Category)
			assert.False(t, r.Impact.IsZero())

			switch r.AppliesTo {
			case rules.ScopeDockerfile:
				assert.NotNil(t, r.Dockerfile)
				assert.Equal(t, domain.KindDockerfile, r.AppliesTo.Kind())
			case rules.ScopeStage:
				assert.NotNil(t, r.Stage)
			case rules.ScopeService:
				assert.NotNil(t, r.Service)
				assert.Equal(t, domain.KindCompose, r.AppliesTo.Kind())
			}
		})
	}
}

func TestCatalog_DefaultSeverities(t *testing.T) {
	want := map[string]domain.Severity{
		"DF001": domain.SeverityCritical,
		"DF002": domain.SeverityCritical,
		"DF003": domain.SeverityWarning,
		"DF004": domain.SeverityWarning,
		"DF005": domain.SeverityWarning,
		"DF006": domain.SeverityCritical,
		"DF007": domain.SeverityWarning,
		"DF008": domain.SeveritySuggestion,
		"DF009": domain.SeveritySuggestion,
		"DF010": domain.SeverityCritical,
		"DF011": domain.SeverityWarning,
		"DC001": domain.SeverityWarning,
		"DC002": domain.SeverityCritical,
		"DC003": domain.SeverityWarning,
		"DC004": domain.SeverityCritical,
		"DC005": domain.SeverityCritical,
		"DC006": domain.SeverityWarning,
	}
	c := rules.Default()
	for id, sev := range want {
		assert.Equal(t, sev, lookup(t, c, id).Severity, id)
	}
}

func TestCatalog_LookupIsCaseInsensitive(t *testing.T) {
	c := rules.Default()

	r, ok := c.Lookup(" df010 ")
	require.True(t, ok)
	assert.Equal(t, "DF010", r.ID)

	_, ok = c.Lookup("DF999")
	assert.False(t, ok)
}

func TestCatalog_Options(t *testing.T) {
	c, err := rules.NewCatalog(rules.DefaultHeuristics(),
		rules.WithDisabled("df003", "DC001"),
		rules.WithSeverity(map[string]domain.Severity{"DF009": domain.SeverityWarning}),
	)
	require.NoError(t, err)

	assert.Equal(t, 17, c.Len())
	assert.Len(t, c.Enabled(), 15)
	assert.True(t, lookup(t, c, "DF003").Disabled)
	assert.Equal(t, domain.SeverityWarning, lookup(t, c, "DF009").Severity)
}

func TestCatalog_OptionErrors(t *testing.T) {
	_, err := rules.NewCatalog(rules.DefaultHeuristics(), rules.WithDisabled("XX001"))
	assert.ErrorContains(t, err, "unknown rule id")

	_, err = rules.NewCatalog(rules.DefaultHeuristics(),
		rules.WithSeverity(map[string]domain.Severity{"DF001": "fatal"}))
	assert.ErrorContains(t, err, "invalid severity")

	h := rules.DefaultHeuristics()
	h.SecretValuePatterns = []string{"("}
	_, err = rules.NewCatalog(h)
	assert.ErrorContains(t, err, "secret value pattern")
}

func TestRule_IssueStampsIdentity(t *testing.T) {
	r := lookup(t, rules.Default(), "DF002")

	iss := r.Issue(rules.Finding{Message: "m"})
	assert.Equal(t, "DF002", iss.RuleID)
	assert.Equal(t, "Running as root", iss.RuleName)
	assert.Equal(t, domain.SeverityCritical, iss.Severity)
	assert.Equal(t, r.Fix, iss.Fix)
	assert.Nil(t, iss.Line)

	iss = r.Issue(rules.Finding{Line: 4, Fix: "custom"})
	require.NotNil(t, iss.Line)
	assert.Equal(t, 4, *iss.Line)
	assert.Equal(t, "custom", iss.Fix)
}

func TestHeuristics_Merge(t *testing.T) {
	h := rules.DefaultHeuristics().Merge(domain.Heuristics{HeavyImages: []string{"busybox"}})

	assert.Equal(t, []string{"busybox"}, h.HeavyImages)
	assert.Equal(t, rules.DefaultHeuristics().Shells, h.Shells)
}
