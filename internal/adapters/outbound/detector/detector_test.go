package detector_test

import (
	"testing"

	"github.com/dockreview/dockreview/internal/adapters/outbound/detector"
	"github.com/dockreview/dockreview/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDetector_ByName(t *testing.T) {
	tests := []struct {
		name string
		kind domain.FileKind
		ok   bool
	}{
		{"Dockerfile", domain.KindDockerfile, true},
		{"build/Dockerfile.prod", domain.KindDockerfile, true},
		{"dockerfile", domain.KindDockerfile, true},
		{"api.Dockerfile", domain.KindDockerfile, true},
		{"worker_dockerfile", domain.KindDockerfile, true},
		{"Dockerfile.dockerignore", "", false},
		{"docker-compose.yml", domain.KindCompose, true},
		{"compose.yaml", domain.KindCompose, true},
		{"docker-compose.override.yml", domain.KindCompose, true},
		{"compose.json", "", false},
		{"values.yaml", "", false},
		{"README.md", "", false},
	}
	d := detector.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := d.ByName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestDetector_ByContent(t *testing.T) {
	d := detector.New()

	kind, ok := d.ByContent([]byte("# base\nFROM alpine:3.19\nRUN apk add curl\n"))
	assert.True(t, ok)
	assert.Equal(t, domain.KindDockerfile, kind)

	kind, ok = d.ByContent([]byte("services:\n  web:\n    image: nginx\n"))
	assert.True(t, ok)
	assert.Equal(t, domain.KindCompose, kind)

	kind, ok = d.ByContent([]byte("version: \"3.8\"\n"))
	assert.True(t, ok)
	assert.Equal(t, domain.KindCompose, kind)

	_, ok = d.ByContent([]byte("FROM alone\n"))
	assert.False(t, ok)

	_, ok = d.ByContent([]byte("   \n"))
	assert.False(t, ok)

	_, ok = d.ByContent([]byte("name: chart\nitems:\n  - a\n"))
	assert.False(t, ok)
}

func TestDetector_NameWinsOverContent(t *testing.T) {
	kind, ok := detector.New().Detect("docker-compose.yml", []byte("FROM alpine\nRUN true\n"))
	assert.True(t, ok)
	assert.Equal(t, domain.KindCompose, kind)

	kind, ok = detector.New().Detect("build.txt", []byte("FROM alpine\nRUN true\n"))
	assert.True(t, ok)
	assert.Equal(t, domain.KindDockerfile, kind)
}
