package domain

import "time"

// ScoreCard holds the three category scores and their weighted overall,
// each in [0,10]. Values are unrounded; rendering rounds for display.
type ScoreCard struct {
	Security        float64 `json:"security"`
	Performance     float64 `json:"performance"`
	Maintainability float64 `json:"maintainability"`
	Overall         float64 `json:"overall"`
}

// Get returns the score for a category.
func (s ScoreCard) Get(c Category) float64 {
	switch c {
	case CategorySecurity:
		return s.Security
	case CategoryPerformance:
		return s.Performance
	default:
		return s.Maintainability
	}
}

func (s ScoreCard) Grade() string { return GradeFor(s.Overall) }

func GradeFor(score float64) string {
	switch {
	case score >= 9:
		return "A+"
	case score >= 8:
		return "A"
	case score >= 7:
		return "B"
	case score >= 6:
		return "C"
	case score >= 5:
		return "D"
	default:
		return "F"
	}
}

func BadgeColor(score float64) string {
	switch {
	case score >= 9:
		return "brightgreen"
	case score >= 8:
		return "green"
	case score >= 7:
		return "yellow"
	case score >= 6:
		return "orange"
	case score >= 5:
		return "red"
	default:
		return "critical"
	}
}

// Category groups rules for scoring.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
)

// Categories lists scoring categories in display order.
var Categories = []Category{CategorySecurity, CategoryPerformance, CategoryMaintainability}

// FileKind identifies the type of file under analysis.
type FileKind string

const (
	KindDockerfile FileKind = "dockerfile"
	KindCompose    FileKind = "compose"
)

// Report is the result of analyzing one file.
type Report struct {
	File       string    `json:"file"`
	Kind       FileKind  `json:"kind"`
	Issues     []Issue   `json:"issues"`
	Score      ScoreCard `json:"score"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Severity == sev {
			n++
		}
	}
	return n
}
