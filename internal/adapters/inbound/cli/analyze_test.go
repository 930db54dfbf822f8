package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockreview/dockreview/internal/adapters/inbound/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insecureDockerfile = `FROM ubuntu
RUN apt-get update
RUN curl -fsSL https://example.com/install.sh | sh
CMD ["./app"]
`

const tidyDockerfile = `FROM alpine:3.19
RUN apk add --no-cache curl=8.5.0-r0
USER app
HEALTHCHECK CMD wget -q -O- http://localhost:8080/health || exit 1
CMD ["./app"]
`

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

type jsonOutput struct {
	Reports []struct {
		File   string `json:"file"`
		Kind   string `json:"kind"`
		Issues []struct {
			RuleID   string `json:"rule_id"`
			Severity string `json:"severity"`
		} `json:"issues"`
		Score struct {
			Overall float64 `json:"overall"`
		} `json:"score"`
	} `json:"reports"`
	Summary struct {
		Files    int `json:"files"`
		Critical int `json:"critical"`
	} `json:"summary"`
}

func decode(t *testing.T, out string) jsonOutput {
	t.Helper()
	var v jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile, ".dockerignore": ".git\n"})

	out, err := run(t, "analyze", root, "--json")
	require.NoError(t, err)

	v := decode(t, out)
	require.Len(t, v.Reports, 1)
	assert.Equal(t, "Dockerfile", v.Reports[0].File)
	assert.Equal(t, "dockerfile", v.Reports[0].Kind)
	assert.Equal(t, 1, v.Summary.Files)
	assert.Equal(t, 3, v.Summary.Critical)

	var ids []string
	for _, iss := range v.Reports[0].Issues {
		ids = append(ids, iss.RuleID)
	}
	assert.Subset(t, ids, []string{"DF001", "DF002", "DF010", "DF011"})
}

func TestAnalyzeCommand_SeverityFilter(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile})

	all, err := run(t, "analyze", root, "--json")
	require.NoError(t, err)
	filtered, err := run(t, "analyze", root, "--json", "--severity", "critical")
	require.NoError(t, err)

	a, f := decode(t, all), decode(t, filtered)
	for _, iss := range f.Reports[0].Issues {
		assert.Equal(t, "critical", iss.Severity)
	}
	assert.Less(t, len(f.Reports[0].Issues), len(a.Reports[0].Issues))
	assert.Equal(t, a.Reports[0].Score.Overall, f.Reports[0].Score.Overall)
}

func TestAnalyzeCommand_BadSeverity(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": tidyDockerfile})
	_, err := run(t, "analyze", root, "--severity", "high")
	assert.ErrorContains(t, err, "unknown severity")
}

func TestAnalyzeCommand_CIFails(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile})
	_, err := run(t, "analyze", root, "--ci")
	assert.ErrorContains(t, err, "at or above critical")
}

func TestAnalyzeCommand_CIPasses(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": tidyDockerfile, ".dockerignore": ".git\n"})
	_, err := run(t, "analyze", root, "--ci")
	assert.NoError(t, err)
}

func TestAnalyzeCommand_FailOnWarning(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": tidyDockerfile})
	_, err := run(t, "analyze", root, "--fail-on", "warning")
	assert.ErrorContains(t, err, "at or above warning")
}

func TestAnalyzeCommand_CIUsesConfigThreshold(t *testing.T) {
	root := project(t, map[string]string{
		"Dockerfile":       tidyDockerfile,
		".dockreview.yaml": "fail_on: warning\n",
	})
	_, err := run(t, "analyze", root, "--ci")
	assert.ErrorContains(t, err, "at or above warning")
}

func TestAnalyzeCommand_Badge(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": tidyDockerfile, ".dockerignore": ".git\n"})
	out, err := run(t, "analyze", root, "--badge")
	require.NoError(t, err)
	assert.Contains(t, out, "img.shields.io/badge/dockreview-10.0%2F10-brightgreen")
}

func TestAnalyzeCommand_DefaultTUI(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile})
	out, err := run(t, "analyze", root)
	require.NoError(t, err)
	assert.Contains(t, out, "dockreview")
	assert.Contains(t, out, "/ 10")
	assert.Contains(t, out, "DF010")
	assert.Contains(t, out, "fix:")
}

func TestAnalyzeCommand_SummaryOnly(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile})
	out, err := run(t, "analyze", root, "--summary-only")
	require.NoError(t, err)
	assert.Contains(t, out, "critical")
	assert.NotContains(t, out, "fix:")
}

func TestAnalyzeCommand_EstimateImpact(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile})
	out, err := run(t, "analyze", root, "--estimate-impact")
	require.NoError(t, err)
	assert.Contains(t, out, "Estimated Impact")
}

func TestAnalyzeCommand_MultiplePaths(t *testing.T) {
	root := project(t, map[string]string{
		"api/Dockerfile":     insecureDockerfile,
		"docker-compose.yml": "services:\n  web:\n    image: nginx:1.25\n",
	})
	out, err := run(t, "analyze", filepath.Join(root, "api"), filepath.Join(root, "docker-compose.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "2 files")
}

func TestAnalyzeCommand_ParseError(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": "FROM alpine\nRUN echo \"unterminated\n"})
	_, err := run(t, "analyze", root)
	assert.ErrorContains(t, err, "analysis failed")
}

func TestAnalyzeCommand_MissingPath(t *testing.T) {
	_, err := run(t, "analyze", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "file not found")
}

func TestAnalyzeCommand_RecordAndHistory(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": insecureDockerfile})

	_, err := run(t, "analyze", root, "--record")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, ".dockreview", "history", "scores.json"))

	out, err := run(t, "analyze", root, "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "Score History")
	assert.Contains(t, out, "Dockerfile")
}

func TestAnalyzeCommand_HistoryEmpty(t *testing.T) {
	root := project(t, map[string]string{"Dockerfile": tidyDockerfile})
	out, err := run(t, "analyze", root, "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "No score history found")
}
