package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dockreview/dockreview/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	".dockreview":  true,
	"dist":         true,
	"target":       true,
}

// Classifier recognizes Dockerfiles and Compose files.
type Classifier interface {
	ByName(name string) (domain.FileKind, bool)
	ByContent(content []byte) (domain.FileKind, bool)
}

// FileScanner implements domain.TargetScanner by walking the filesystem.
type FileScanner struct {
	detector Classifier
}

func New(d Classifier) *FileScanner {
	return &FileScanner{detector: d}
}

// Scan resolves path into analysis targets. A file is classified by name,
// then by content, and is an error when neither matches. A directory is
// walked recursively and only files recognized by name are kept, in
// lexical order.
func (s *FileScanner) Scan(path string, cfg domain.ProjectConfig) ([]domain.Target, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	if !info.IsDir() {
		t, err := s.single(absPath)
		if err != nil {
			return nil, err
		}
		return []domain.Target{t}, nil
	}

	var targets []domain.Target
	err = filepath.WalkDir(absPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, p)
		rel := filepath.ToSlash(relPath)

		if d.IsDir() {
			if p != absPath && (skipDirs[d.Name()] || cfg.IsExcluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.IsExcluded(rel) {
			return nil
		}

		kind, ok := s.detector.ByName(d.Name())
		if !ok {
			return nil
		}
		targets = append(targets, target(p, rel, kind))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no Dockerfile or Compose file found in %s", path)
	}
	return targets, nil
}

func (s *FileScanner) single(absPath string) (domain.Target, error) {
	name := filepath.Base(absPath)
	kind, ok := s.detector.ByName(name)
	if !ok {
		content, err := os.ReadFile(absPath)
		if err != nil {
			return domain.Target{}, err
		}
		if kind, ok = s.detector.ByContent(content); !ok {
			return domain.Target{}, fmt.Errorf("unknown file type: %s", absPath)
		}
	}
	return target(absPath, name, kind), nil
}

func target(absPath, rel string, kind domain.FileKind) domain.Target {
	t := domain.Target{Path: absPath, Rel: rel, Kind: kind}
	if kind == domain.KindDockerfile {
		t.Context = BuildContextFor(absPath)
	}
	return t
}

// BuildContextFor describes the directory a Dockerfile is built from. A
// Dockerfile-specific ignore file (Dockerfile.dockerignore) counts as well.
func BuildContextFor(dockerfilePath string) *domain.BuildContext {
	dir := filepath.Dir(dockerfilePath)
	return &domain.BuildContext{
		Dir: dir,
		HasDockerignore: exists(filepath.Join(dir, ".dockerignore")) ||
			exists(dockerfilePath+".dockerignore"),
	}
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
