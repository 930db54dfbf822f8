package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ConfigFileName is the project configuration file looked up in the
// analyzed directory.
const ConfigFileName = ".dockreview.yaml"

var ruleIDPattern = regexp.MustCompile(`(?i)^(DF|DC)\d{3}$`)

// ProjectConfig holds project-level configuration loaded from .dockreview.yaml.
type ProjectConfig struct {
	DisabledRules     []string           `yaml:"disabled_rules"     json:"disabled_rules,omitempty"`
	SeverityOverrides map[string]string  `yaml:"severity_overrides" json:"severity_overrides,omitempty"`
	Weights           map[string]float64 `yaml:"weights"            json:"weights,omitempty"`
	Penalties         map[string]float64 `yaml:"penalties"          json:"penalties,omitempty"`
	Categories        map[string]string  `yaml:"categories"         json:"categories,omitempty"`
	FailOn            string             `yaml:"fail_on"            json:"fail_on,omitempty"`
	ExcludePaths      []string           `yaml:"exclude_paths"      json:"exclude_paths,omitempty"`
	Heuristics        Heuristics         `yaml:"heuristics"         json:"heuristics,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// Threshold returns the configured CI gate severity, or critical when unset.
func (c ProjectConfig) Threshold() Severity {
	if s, err := ParseSeverity(c.FailOn); err == nil {
		return s
	}
	return SeverityCritical
}

// IsExcluded reports whether a slash-separated relative path falls under one
// of the exclude_paths prefixes.
func (c ProjectConfig) IsExcluded(rel string) bool {
	for _, p := range c.ExcludePaths {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

// SeverityMap returns severity_overrides with parsed values. Call Validate first.
func (c ProjectConfig) SeverityMap() map[string]Severity {
	if len(c.SeverityOverrides) == 0 {
		return nil
	}
	out := make(map[string]Severity, len(c.SeverityOverrides))
	for id, v := range c.SeverityOverrides {
		s, _ := ParseSeverity(v)
		out[id] = s
	}
	return out
}

// PenaltyMap returns penalties keyed by severity. Call Validate first.
func (c ProjectConfig) PenaltyMap() map[Severity]float64 {
	if len(c.Penalties) == 0 {
		return nil
	}
	out := make(map[Severity]float64, len(c.Penalties))
	for k, v := range c.Penalties {
		s, _ := ParseSeverity(k)
		out[s] = v
	}
	return out
}

// WeightMap returns weights keyed by category.
func (c ProjectConfig) WeightMap() map[Category]float64 {
	if len(c.Weights) == 0 {
		return nil
	}
	out := make(map[Category]float64, len(c.Weights))
	for k, v := range c.Weights {
		out[Category(strings.ToLower(k))] = v
	}
	return out
}

// CategoryMap returns the rule id to category overrides.
func (c ProjectConfig) CategoryMap() map[string]Category {
	if len(c.Categories) == 0 {
		return nil
	}
	out := make(map[string]Category, len(c.Categories))
	for id, v := range c.Categories {
		out[strings.ToUpper(id)] = Category(strings.ToLower(v))
	}
	return out
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. disabled_rules must look like rule ids
	for _, id := range c.DisabledRules {
		if !ruleIDPattern.MatchString(strings.TrimSpace(id)) {
			return fmt.Errorf("malformed rule id %q in disabled_rules", id)
		}
	}

	// 2. severity_overrides: rule ids and severities
	for _, id := range sortedKeys(c.SeverityOverrides) {
		if !ruleIDPattern.MatchString(id) {
			return fmt.Errorf("malformed rule id %q in severity_overrides", id)
		}
		if _, err := ParseSeverity(c.SeverityOverrides[id]); err != nil {
			return fmt.Errorf("severity_overrides[%q]: %w", id, err)
		}
	}

	// 3. weights keys must be categories, values in [0,1]
	for _, k := range sortedKeys(c.Weights) {
		if !isCategory(k) {
			return fmt.Errorf("unknown category %q in weights", k)
		}
		if w := c.Weights[k]; w < 0 || w > 1 {
			return fmt.Errorf("weights[%q] = %.2f (must be between 0 and 1)", k, w)
		}
	}

	// 4. if all categories specified, weights must sum to ~1.0
	if len(c.Weights) == len(Categories) {
		sum := 0.0
		for _, w := range c.Weights {
			sum += w
		}
		if sum < 0.95 || sum > 1.05 {
			return fmt.Errorf("weights sum to %.2f (must be between 0.95 and 1.05)", sum)
		}
	}

	// 5. penalties keys must be severities, values 0-10
	for _, k := range sortedKeys(c.Penalties) {
		if _, err := ParseSeverity(k); err != nil {
			return fmt.Errorf("penalties: %w", err)
		}
		if p := c.Penalties[k]; p < 0 || p > 10 {
			return fmt.Errorf("penalties[%q] = %.2f (must be between 0 and 10)", k, p)
		}
	}

	// 6. categories: rule id -> known category
	for _, id := range sortedKeys(c.Categories) {
		if !ruleIDPattern.MatchString(id) {
			return fmt.Errorf("malformed rule id %q in categories", id)
		}
		if !isCategory(c.Categories[id]) {
			return fmt.Errorf("unknown category %q for %s in categories", c.Categories[id], id)
		}
	}

	// 7. fail_on must be a severity or empty
	if c.FailOn != "" {
		if _, err := ParseSeverity(c.FailOn); err != nil {
			return fmt.Errorf("fail_on: %w", err)
		}
	}

	// 8. credential patterns must compile
	for _, p := range c.Heuristics.SecretValuePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("heuristics.secret_value_patterns: %q: %w", p, err)
		}
	}

	return nil
}

func isCategory(name string) bool {
	for _, c := range Categories {
		if strings.EqualFold(string(c), name) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
