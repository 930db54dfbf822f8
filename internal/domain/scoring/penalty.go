// Package scoring turns issues into category scores.
package scoring

import "github.com/dockreview/dockreview/internal/domain"

// MaxScore is the starting score of every category.
const MaxScore = 10.0

// DefaultPenalties is the amount each issue subtracts from its category.
func DefaultPenalties() map[domain.Severity]float64 {
	return map[domain.Severity]float64{
		domain.SeverityCritical:   3.0,
		domain.SeverityWarning:    1.0,
		domain.SeveritySuggestion: 0.3,
	}
}

// DefaultWeights combine category scores into the overall score.
func DefaultWeights() map[domain.Category]float64 {
	return map[domain.Category]float64{
		domain.CategorySecurity:        0.4,
		domain.CategoryPerformance:     0.3,
		domain.CategoryMaintainability: 0.3,
	}
}

// DefaultCategories maps rule ids to the category they count against.
func DefaultCategories() map[string]domain.Category {
	return map[string]domain.Category{
		"DF001": domain.CategorySecurity,
		"DF002": domain.CategorySecurity,
		"DF006": domain.CategorySecurity,
		"DF010": domain.CategorySecurity,
		"DC002": domain.CategorySecurity,
		"DC004": domain.CategorySecurity,
		"DC005": domain.CategorySecurity,

		"DF003": domain.CategoryPerformance,
		"DF004": domain.CategoryPerformance,
		"DF007": domain.CategoryPerformance,
		"DF008": domain.CategoryPerformance,
		"DF009": domain.CategoryPerformance,
		"DF011": domain.CategoryPerformance,

		"DF005": domain.CategoryMaintainability,
		"DC001": domain.CategoryMaintainability,
		"DC003": domain.CategoryMaintainability,
		"DC006": domain.CategoryMaintainability,
	}
}

// Scorer holds the penalty, weight and category tables. The zero value is
// not usable; build one with New.
type Scorer struct {
	penalties  map[domain.Severity]float64
	weights    map[domain.Category]float64
	categories map[string]domain.Category
}

// Option overrides part of a Scorer's tables.
type Option func(*Scorer)

// WithPenalties replaces the penalty of the given severities.
func WithPenalties(p map[domain.Severity]float64) Option {
	return func(s *Scorer) {
		for sev, v := range p {
			s.penalties[sev] = v
		}
	}
}

// WithWeights replaces the weight of the given categories.
func WithWeights(w map[domain.Category]float64) Option {
	return func(s *Scorer) {
		for c, v := range w {
			s.weights[c] = v
		}
	}
}

// WithCategories remaps rule ids to categories.
func WithCategories(m map[string]domain.Category) Option {
	return func(s *Scorer) {
		for id, c := range m {
			s.categories[id] = c
		}
	}
}

func New(opts ...Option) *Scorer {
	s := &Scorer{
		penalties:  DefaultPenalties(),
		weights:    DefaultWeights(),
		categories: DefaultCategories(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CategoryOf returns the category a rule id counts against. Unmapped ids
// count against maintainability.
func (s *Scorer) CategoryOf(ruleID string) domain.Category {
	if c, ok := s.categories[ruleID]; ok {
		return c
	}
	return domain.CategoryMaintainability
}

// Penalty returns the deduction for one issue of the given severity.
func (s *Scorer) Penalty(sev domain.Severity) float64 {
	return s.penalties[sev]
}

// Score computes the scorecard for issues. Each category starts at
// MaxScore and never drops below zero; overall is the weighted sum,
// clamped to [0, MaxScore].
func (s *Scorer) Score(issues []domain.Issue) domain.ScoreCard {
	deductions := map[domain.Category]float64{}
	for _, iss := range issues {
		deductions[s.CategoryOf(iss.RuleID)] += s.penalties[iss.Severity]
	}

	card := domain.ScoreCard{
		Security:        clamp(MaxScore - deductions[domain.CategorySecurity]),
		Performance:     clamp(MaxScore - deductions[domain.CategoryPerformance]),
		Maintainability: clamp(MaxScore - deductions[domain.CategoryMaintainability]),
	}
	card.Overall = clamp(card.Security*s.weights[domain.CategorySecurity] +
		card.Performance*s.weights[domain.CategoryPerformance] +
		card.Maintainability*s.weights[domain.CategoryMaintainability])
	return card
}

// EstimateGain returns how much the overall score would rise if iss were
// fixed.
func (s *Scorer) EstimateGain(issues []domain.Issue, iss domain.Issue) float64 {
	before := s.Score(issues).Overall
	rest := make([]domain.Issue, 0, len(issues))
	removed := false
	for _, other := range issues {
		if !removed && other.RuleID == iss.RuleID && other.LineOrZero() == iss.LineOrZero() && other.Message == iss.Message {
			removed = true
			continue
		}
		rest = append(rest, other)
	}
	return s.Score(rest).Overall - before
}

func clamp(v float64) float64 {
	return min(MaxScore, max(0.0, v))
}
