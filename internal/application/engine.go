package application

import (
	"fmt"

	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/check"
	"github.com/dockreview/dockreview/internal/domain/rules"
	"github.com/dockreview/dockreview/internal/domain/scoring"
)

// Engine is a rule catalog and scorer built from one project configuration.
// It is read-only once built and may be shared between goroutines.
type Engine struct {
	Catalog *rules.Catalog
	Scorer  *scoring.Scorer
}

// NewEngine applies cfg over the built-in heuristics, rule table and
// scoring tables. cfg must already be validated.
func NewEngine(cfg domain.ProjectConfig) (*Engine, error) {
	h := rules.DefaultHeuristics().Merge(cfg.Heuristics)

	catalog, err := rules.NewCatalog(h,
		rules.WithDisabled(cfg.DisabledRules...),
		rules.WithSeverity(cfg.SeverityMap()),
	)
	if err != nil {
		return nil, fmt.Errorf("building rule catalog: %w", err)
	}

	var opts []scoring.Option
	if p := cfg.PenaltyMap(); p != nil {
		opts = append(opts, scoring.WithPenalties(p))
	}
	if w := cfg.WeightMap(); w != nil {
		opts = append(opts, scoring.WithWeights(w))
	}
	if c := cfg.CategoryMap(); c != nil {
		opts = append(opts, scoring.WithCategories(c))
	}

	return &Engine{Catalog: catalog, Scorer: scoring.New(opts...)}, nil
}

// Evaluate runs every applicable rule over t and scores the findings.
func (e *Engine) Evaluate(t check.Target) ([]domain.Issue, domain.ScoreCard) {
	issues := check.Run(e.Catalog, t)
	return issues, e.Scorer.Score(issues)
}

// RuleInfo is the serializable description of one rule.
type RuleInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Severity    domain.Severity `json:"severity"`
	Category    domain.Category `json:"category"`
	AppliesTo   string          `json:"applies_to"`
	Description string          `json:"description"`
	Rationale   string          `json:"rationale,omitempty"`
	Fix         string          `json:"fix,omitempty"`
	Impact      *rules.Impact   `json:"impact,omitempty"`
	Disabled    bool            `json:"disabled,omitempty"`
}

// Describe returns the description of one rule as this engine runs it.
func (e *Engine) Describe(r rules.Rule) RuleInfo {
	info := RuleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Severity:    r.Severity,
		Category:    e.Scorer.CategoryOf(r.ID),
		AppliesTo:   r.AppliesTo.String(),
		Description: r.Description,
		Rationale:   r.Rationale,
		Fix:         r.Fix,
		Disabled:    r.Disabled,
	}
	if !r.Impact.IsZero() {
		impact := r.Impact
		info.Impact = &impact
	}
	return info
}

// DescribeAll describes every rule in catalog order.
func (e *Engine) DescribeAll() []RuleInfo {
	all := e.Catalog.Rules()
	out := make([]RuleInfo, len(all))
	for i, r := range all {
		out[i] = e.Describe(r)
	}
	return out
}
