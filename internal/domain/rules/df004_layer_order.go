package rules

import (
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

func layerOrder(mx *matchers) Rule {
	return Rule{
		ID:          "DF004",
		Name:        "Bad layer ordering",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryPerformance,
		AppliesTo:   ScopeDockerfile,
		Description: "COPY/ADD of frequently changing files before package installation",
		Rationale: "Docker caches each layer. If you COPY source files before installing dependencies, " +
			"any source change invalidates the cache for dependency installation. Order layers " +
			"from least to most frequently changing: system packages, dependencies, source code.",
		Fix: "Reorder: 1) System packages, 2) COPY dependency files (package.json, requirements.txt), " +
			"3) Install dependencies, 4) COPY source code",
		Impact: Impact{
			BuildTime:   "Can reduce rebuild time by 60-90%",
			Reliability: "More consistent CI builds",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, st := range m.Stages {
				if f, ok := contextCopyBeforeInstall(mx, st); ok {
					out = append(out, f)
				}
			}
			return out
		},
	}
}

func contextCopyBeforeInstall(mx *matchers, st domain.Stage) (Finding, bool) {
	var copied *domain.Instruction
	for i := range st.Instructions {
		in := st.Instructions[i]
		switch in.Kind {
		case domain.KindCopy, domain.KindAdd:
			if copied == nil && copiesWholeContext(mx, in) {
				copied = &st.Instructions[i]
			}
		case domain.KindRun:
			if copied == nil {
				continue
			}
			if phrase, ok := mx.install.match(command(in)); ok {
				return Finding{
					Line:    copied.Line,
					Message: "COPY of the whole build context before '" + phrase + "' invalidates the dependency cache",
					Context: copied.Text,
				}, true
			}
		}
	}
	return Finding{}, false
}

func copiesWholeContext(mx *matchers, in domain.Instruction) bool {
	if _, fromStage := in.Flag("from"); fromStage {
		return false
	}
	ops := in.Operands()
	if len(ops) < 2 {
		return false
	}
	for _, src := range ops[:len(ops)-1] {
		if mx.broad[strings.ToLower(src)] {
			return true
		}
	}
	return false
}
