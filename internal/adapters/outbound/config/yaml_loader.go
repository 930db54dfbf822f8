package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dockreview/dockreview/internal/domain"
	"gopkg.in/yaml.v3"
)

const fileName = domain.ConfigFileName

// YAMLLoader implements domain.ConfigLoader by reading .dockreview.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .dockreview.yaml from projectPath.
// Returns DefaultConfig if the file does not exist or is empty.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes. Unknown keys are errors
// so that typos do not silently fall back to defaults.
func Parse(data []byte) (domain.ProjectConfig, error) {
	cfg := domain.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}
	return cfg, nil
}
