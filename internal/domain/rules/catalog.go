package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

// Catalog is the ordered, read-only rule table. Build it once with
// NewCatalog and pass it to the executor.
type Catalog struct {
	rules []Rule
	index map[string]int // upper-case id -> position
}

type options struct {
	disabled  map[string]bool
	overrides map[string]domain.Severity
}

// Option adjusts the catalog at build time.
type Option func(*options)

// WithDisabled turns off the given rule ids.
func WithDisabled(ids ...string) Option {
	return func(o *options) {
		for _, id := range ids {
			o.disabled[normalizeID(id)] = true
		}
	}
}

// WithSeverity overrides the default severity of individual rules.
func WithSeverity(overrides map[string]domain.Severity) Option {
	return func(o *options) {
		for id, sev := range overrides {
			o.overrides[normalizeID(id)] = sev
		}
	}
}

type builder func(*matchers) Rule

var builders = []builder{
	latestTag,
	rootUser,
	noDockerignore,
	layerOrder,
	noHealthcheck,
	secretsInEnv,
	versionPinning,
	missingMultistage,
	largeBaseImage,
	curlPipeShell,
	layerCount,
	noRestartPolicy,
	privilegedService,
	noResourceLimits,
	serviceLatestTag,
	hardcodedSecrets,
	noImageSource,
}

// NewCatalog compiles h and builds every rule, sorted by id. Unknown ids in
// options and invalid severities are errors.
func NewCatalog(h domain.Heuristics, opts ...Option) (*Catalog, error) {
	o := &options{disabled: map[string]bool{}, overrides: map[string]domain.Severity{}}
	for _, opt := range opts {
		opt(o)
	}

	mx, err := compile(h)
	if err != nil {
		return nil, fmt.Errorf("compiling heuristics: %w", err)
	}

	c := &Catalog{index: make(map[string]int, len(builders))}
	for _, build := range builders {
		c.rules = append(c.rules, build(mx))
	}
	sort.SliceStable(c.rules, func(i, j int) bool { return c.rules[i].ID < c.rules[j].ID })

	for i := range c.rules {
		id := normalizeID(c.rules[i].ID)
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("duplicate rule id %s", c.rules[i].ID)
		}
		c.index[id] = i
	}

	for id := range o.disabled {
		i, ok := c.index[id]
		if !ok {
			return nil, fmt.Errorf("disabled rule %s: unknown rule id", id)
		}
		c.rules[i].Disabled = true
	}
	for id, sev := range o.overrides {
		i, ok := c.index[id]
		if !ok {
			return nil, fmt.Errorf("severity override %s: unknown rule id", id)
		}
		if !sev.Valid() {
			return nil, fmt.Errorf("severity override %s: invalid severity %q", id, sev)
		}
		c.rules[i].Severity = sev
	}
	return c, nil
}

// Default builds the catalog with the built-in heuristics and no overrides.
func Default() *Catalog {
	c, err := NewCatalog(DefaultHeuristics())
	if err != nil {
		panic(err)
	}
	return c
}

// Rules returns every rule in id order, disabled ones included.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Enabled returns the rules that run, in id order.
func (c *Catalog) Enabled() []Rule {
	var out []Rule
	for _, r := range c.rules {
		if !r.Disabled {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds a rule by id, case-insensitively.
func (c *Catalog) Lookup(id string) (Rule, bool) {
	i, ok := c.index[normalizeID(id)]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// IDs returns all rule ids in order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.rules))
	for i, r := range c.rules {
		ids[i] = r.ID
	}
	return ids
}

func (c *Catalog) Len() int { return len(c.rules) }

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
