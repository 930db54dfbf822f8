package detector

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

// Detector implements domain.FileDetector. Names decide first; content is
// consulted only for names that say nothing.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

var (
	fromLine    = regexp.MustCompile(`(?mi)^\s*FROM\s+\S`)
	buildLine   = regexp.MustCompile(`(?mi)^\s*(RUN|COPY|CMD|ENTRYPOINT)\s`)
	servicesKey = regexp.MustCompile(`(?m)^services:\s*$`)
	versionKey  = regexp.MustCompile(`(?m)^version:\s*\S`)
)

// Detect classifies a file. The second result is false when neither the
// name nor the content looks like a Dockerfile or Compose file.
func (d *Detector) Detect(name string, content []byte) (domain.FileKind, bool) {
	if k, ok := d.ByName(name); ok {
		return k, true
	}
	return d.ByContent(content)
}

// ByName classifies a file by its base name alone.
func (d *Detector) ByName(name string) (domain.FileKind, bool) {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)

	switch {
	case base == "dockerfile",
		strings.HasPrefix(base, "dockerfile.") && ext != ".dockerignore",
		strings.HasSuffix(base, ".dockerfile"),
		strings.HasSuffix(base, "_dockerfile"):
		return domain.KindDockerfile, true
	case strings.Contains(base, "compose") && (ext == ".yml" || ext == ".yaml"):
		return domain.KindCompose, true
	}
	return "", false
}

// ByContent sniffs the first instructions or top-level keys.
func (d *Detector) ByContent(content []byte) (domain.FileKind, bool) {
	if len(bytes.TrimSpace(content)) == 0 {
		return "", false
	}
	if fromLine.Match(content) && buildLine.Match(content) {
		return domain.KindDockerfile, true
	}
	if servicesKey.Match(content) || versionKey.Match(content) {
		return domain.KindCompose, true
	}
	return "", false
}
