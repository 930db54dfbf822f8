package rules

import (
	"path"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

func curlPipeShell(mx *matchers) Rule {
	return Rule{
		ID:          "DF010",
		Name:        "Curl pipe to shell",
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySecurity,
		AppliesTo:   ScopeDockerfile,
		Description: "Piping curl or wget output directly to shell",
		Rationale: "Executing remote scripts via curl | bash is extremely dangerous. You cannot " +
			"verify what the script does before execution, the script could be modified " +
			"between when you test and when you deploy, and HTTPS doesn't prevent MITM " +
			"attacks if certificate validation is disabled.",
		Fix: "Download the script, verify its contents and checksum, then execute",
		Impact: Impact{
			Security:    "Critical - prevents remote code execution vulnerabilities",
			Reliability: "Reproducible builds",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, in := range m.Instructions {
				if in.Kind != domain.KindRun {
					continue
				}
				text := command(in)
				if pipesFetchToShell(mx, text) || (mx.curlShell != nil && mx.curlShell.MatchString(text)) {
					out = append(out, Finding{
						Line:    in.Line,
						Message: "Piping curl/wget to shell - remote code execution risk",
						Context: text,
					})
				}
			}
			return out
		},
	}
}

// pipesFetchToShell reports whether a pipeline stage running a fetch
// command feeds the next stage, which starts a shell.
func pipesFetchToShell(mx *matchers, text string) bool {
	stages := pipeline(text)
	for i := 0; i+1 < len(stages); i++ {
		if _, ok := mx.fetch.match(stages[i]); !ok {
			continue
		}
		words := stripPrefix(strings.Fields(stages[i+1]))
		if len(words) > 0 && mx.shells[strings.ToLower(path.Base(words[0]))] {
			return true
		}
	}
	return false
}

// pipeline splits text at single "|" characters, leaving "||" intact.
func pipeline(text string) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i < len(text); i++ {
		if text[i] != '|' {
			continue
		}
		if i+1 < len(text) && text[i+1] == '|' {
			i++
			continue
		}
		out = append(out, text[start:i])
		start = i + 1
	}
	return append(out, text[start:])
}
