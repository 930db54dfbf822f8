package cache

import (
	"github.com/dockreview/dockreview/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of reports kept when New is given a
// non-positive size.
const DefaultSize = 256

// LRU is an in-memory implementation of domain.ResultCache. It is safe for
// concurrent use. Reports are copied on the way in and out so callers can
// stamp file names and timestamps without touching cached entries.
type LRU struct {
	entries *lru.Cache[string, *domain.Report]
}

// New creates a cache holding at most size reports.
func New(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, *domain.Report](size)
	if err != nil {
		return nil, err
	}
	return &LRU{entries: c}, nil
}

func (c *LRU) Get(key string) (*domain.Report, bool) {
	r, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return clone(r), true
}

func (c *LRU) Add(key string, r *domain.Report) {
	c.entries.Add(key, clone(r))
}

func (c *LRU) Len() int { return c.entries.Len() }

func clone(r *domain.Report) *domain.Report {
	out := *r
	out.Issues = make([]domain.Issue, len(r.Issues))
	copy(out.Issues, r.Issues)
	for i := range out.Issues {
		if l := out.Issues[i].Line; l != nil {
			out.Issues[i].Line = domain.LineRef(*l)
		}
	}
	return &out
}
