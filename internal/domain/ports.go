package domain

import "time"

// Target is one file selected for analysis.
type Target struct {
	Path    string        `json:"path"`
	Rel     string        `json:"rel"` // slash-separated, relative to the scan root
	Kind    FileKind      `json:"kind"`
	Context *BuildContext `json:"-"`
}

// TargetScanner resolves a path into the files to analyze.
type TargetScanner interface {
	Scan(path string, cfg ProjectConfig) ([]Target, error)
}

// ConfigLoader reads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// ResultCache stores reports keyed by content digest.
type ResultCache interface {
	Get(key string) (*Report, bool)
	Add(key string, r *Report)
}

// ScoreEntry is one recorded analysis in the score history.
type ScoreEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	CommitHash string    `json:"commit_hash,omitempty"`
	File       string    `json:"file"`
	Score      ScoreCard `json:"score"`
	Grade      string    `json:"grade"`
	Critical   int       `json:"critical"`
	Warning    int       `json:"warning"`
	Suggestion int       `json:"suggestion"`
}

// EntryFor summarizes a report as a history entry.
func EntryFor(r *Report) ScoreEntry {
	return ScoreEntry{
		Timestamp:  r.Timestamp,
		CommitHash: r.CommitHash,
		File:       r.File,
		Score:      r.Score,
		Grade:      r.Score.Grade(),
		Critical:   r.Count(SeverityCritical),
		Warning:    r.Count(SeverityWarning),
		Suggestion: r.Count(SeveritySuggestion),
	}
}

// ScoreHistory persists score entries per project.
type ScoreHistory interface {
	Save(projectPath string, entry ScoreEntry) error
	Load(projectPath string) ([]ScoreEntry, error)
}

// GitInfo reads repository metadata.
type GitInfo interface {
	CommitHash(projectPath string) (string, error)
}

// FileParser builds models from raw file contents.
type FileParser interface {
	ParseDockerfile(path string, src []byte, bc *BuildContext) (*DockerfileModel, error)
	ParseCompose(path string, data []byte) (*ComposeModel, error)
}

// FileDetector classifies a file by name, falling back to its content.
type FileDetector interface {
	Detect(name string, content []byte) (FileKind, bool)
}
