package e2e_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/dockreview/dockreview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "dockreview-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "dockreview")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../..")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func fixturePath(name string) string {
	abs, _ := filepath.Abs(filepath.Join("../../testdata/docker", name))
	return abs
}

// run returns stdout, stderr and the exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(binaryPath, append(args, "--no-color")...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

type output struct {
	Reports []domain.Report `json:"reports"`
	Summary struct {
		Files      int `json:"files"`
		Critical   int `json:"critical"`
		Warning    int `json:"warning"`
		Suggestion int `json:"suggestion"`
	} `json:"summary"`
}

func analyzeJSON(t *testing.T, args ...string) output {
	t.Helper()
	out, stderr, code := run(t, append([]string{"analyze", "--json"}, args...)...)
	require.Equal(t, 0, code, stderr)

	var v output
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func ruleIDs(r domain.Report) []string {
	var ids []string
	for _, iss := range r.Issues {
		ids = append(ids, iss.RuleID)
	}
	return ids
}

// --- Analyze Tests ---

func TestE2E_AnalyzeInsecure(t *testing.T) {
	out, _, code := run(t, "analyze", fixturePath("insecure"))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Dockerfile")
	assert.Contains(t, out, "critical")
	assert.Contains(t, out, "DF010")
}

func TestE2E_AnalyzeInsecureJSON(t *testing.T) {
	v := analyzeJSON(t, fixturePath("insecure"))
	require.Len(t, v.Reports, 1)

	r := v.Reports[0]
	assert.Equal(t, domain.KindDockerfile, r.Kind)
	assert.Subset(t, ruleIDs(r), []string{"DF001", "DF002", "DF003", "DF004", "DF006", "DF007", "DF010", "DF011"})
	assert.Equal(t, 4, v.Summary.Critical)
	assert.Less(t, r.Score.Security, 5.0)

	for i := 1; i < len(r.Issues); i++ {
		assert.LessOrEqual(t, r.Issues[i-1].Severity.Rank(), r.Issues[i].Severity.Rank(), "issues sorted by severity")
	}
}

func TestE2E_AnalyzeSecureCI(t *testing.T) {
	_, stderr, code := run(t, "analyze", fixturePath("secure"), "--ci")
	assert.Equal(t, 0, code, stderr)

	v := analyzeJSON(t, fixturePath("secure"))
	assert.Zero(t, v.Summary.Critical)
	assert.GreaterOrEqual(t, v.Reports[0].Score.Overall, 9.0)
}

func TestE2E_AnalyzeInsecureCI(t *testing.T) {
	_, stderr, code := run(t, "analyze", fixturePath("insecure"), "--ci")
	assert.Equal(t, 1, code, "should exit 1 on critical issues")
	assert.Contains(t, stderr, "critical")
}

func TestE2E_AnalyzeCompose(t *testing.T) {
	v := analyzeJSON(t, fixturePath("compose"))
	require.Len(t, v.Reports, 1)

	r := v.Reports[0]
	assert.Equal(t, domain.KindCompose, r.Kind)
	assert.Subset(t, ruleIDs(r), []string{"DC002", "DC004", "DC005", "DC006"})
	for _, iss := range r.Issues {
		assert.NotNil(t, iss.Line, "compose issues carry the service line")
	}
}

func TestE2E_AnalyzeDirectory(t *testing.T) {
	v := analyzeJSON(t, fixturePath(""))
	assert.Equal(t, 4, v.Summary.Files)

	var files []string
	for _, r := range v.Reports {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{
		"compose/docker-compose.yml",
		"insecure/Dockerfile",
		"multistage/Dockerfile",
		"secure/Dockerfile",
	}, files)
}

func TestE2E_SeverityFilter(t *testing.T) {
	v := analyzeJSON(t, fixturePath("insecure"), "--severity", "critical")
	for _, iss := range v.Reports[0].Issues {
		assert.Equal(t, domain.SeverityCritical, iss.Severity)
	}
	assert.Zero(t, v.Summary.Warning)
}

func TestE2E_RecordHistory(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join(fixturePath("insecure"), "Dockerfile"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), data, 0644))

	_, _, code := run(t, "analyze", dir, "--record")
	require.Equal(t, 0, code)

	out, _, code := run(t, "analyze", dir, "--history")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Score History")
}

func TestE2E_ParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("# nothing here\n"), 0644))

	_, stderr, code := run(t, "analyze", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Dockerfile")
}

// --- Rules Tests ---

func TestE2E_Rules(t *testing.T) {
	out, _, code := run(t, "rules")
	assert.Equal(t, 0, code)
	for _, id := range []string{"DF001", "DF011", "DC001", "DC006"} {
		assert.Contains(t, out, id)
	}
}

func TestE2E_Explain(t *testing.T) {
	out, _, code := run(t, "explain", "dc005")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "DC005")

	_, stderr, code := run(t, "explain", "NOPE1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown rule")
}

func TestE2E_Version(t *testing.T) {
	out, _, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "dockreview")
}
