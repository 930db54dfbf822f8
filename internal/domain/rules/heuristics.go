package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

// DefaultHeuristics returns the built-in tables.
func DefaultHeuristics() domain.Heuristics {
	return domain.Heuristics{
		SecretKeywords: []string{
			"password", "passwd", "secret", "token", "api_key", "apikey",
			"access_key", "private_key", "credential", "credentials",
		},
		SecretExemptSuffixes: []string{"_file", "_path", "_dir"},
		Placeholders: []string{
			"changeme", "change_me", "change-me", "placeholder", "example",
			"dummy", "redacted", "xxx", "none", "null",
			"true", "false", "yes", "no", "0", "1",
		},
		SecretValuePatterns: []string{
			`AKIA[0-9A-Z]{16}`,
			`-----BEGIN [A-Z ]*PRIVATE KEY-----`,
			`gh[pousr]_[A-Za-z0-9]{36,}`,
			`glpat-[A-Za-z0-9_-]{20,}`,
			`xox[abprs]-[A-Za-z0-9-]{10,}`,
			`sk_live_[A-Za-z0-9]{16,}`,
		},
		InstallCommands: []string{
			"apt-get install", "apt install", "apk add", "yum install", "dnf install",
			"npm install", "npm ci", "yarn install", "pip install", "pip3 install",
			"gem install", "bundle install", "go mod download", "cargo build",
			"mvn install", "gradle build", "composer install",
		},
		BuildTools: []string{
			"go build", "cargo build", "mvn package", "mvn install", "gradle build",
			"npm run build", "yarn build", "dotnet build", "dotnet publish",
			"make", "gcc", "g++", "rustc", "javac",
		},
		HeavyImages: []string{
			"ubuntu", "debian", "centos", "fedora", "amazonlinux", "oraclelinux",
			"rockylinux", "almalinux", "node", "python", "golang", "ruby", "openjdk",
		},
		SlimMarkers:   []string{"slim", "alpine", "distroless", "minimal", "micro"},
		FetchCommands: []string{"curl", "wget"},
		Shells:        []string{"sh", "bash", "zsh", "dash", "ash", "ksh"},
		BroadSources:  []string{".", "./"},
	}
}

// matchers are the compiled form of Heuristics shared by rule bodies.
type matchers struct {
	secrets   secretMatcher
	install   phraseSet
	build     phraseSet
	heavy     map[string]bool
	slim      []string
	broad     map[string]bool
	curlShell *regexp.Regexp // fetch output fed to a shell
	fetch     phraseSet
	shells    map[string]bool
}

func compile(h domain.Heuristics) (*matchers, error) {
	m := &matchers{
		install: newPhraseSet(h.InstallCommands),
		build:   newPhraseSet(h.BuildTools),
		fetch:   newPhraseSet(h.FetchCommands),
		heavy:   lowerSet(h.HeavyImages),
		broad:   lowerSet(h.BroadSources),
		shells:  lowerSet(h.Shells),
		slim:    lowerAll(h.SlimMarkers),
		secrets: secretMatcher{
			keywords:     lowerAll(h.SecretKeywords),
			exempt:       lowerAll(h.SecretExemptSuffixes),
			placeholders: lowerSet(h.Placeholders),
		},
	}

	for _, p := range h.SecretValuePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("secret value pattern %q: %w", p, err)
		}
		m.secrets.values = append(m.secrets.values, re)
	}

	if len(h.FetchCommands) > 0 && len(h.Shells) > 0 {
		fetch := alternation(h.FetchCommands)
		shells := alternation(h.Shells)
		expr := `(?i)\b(?:` + shells + `)\s+(?:-c\s+)?["']?(?:\$\(|<\(|` + "`" + `)\s*(?:` + fetch + `)\b`
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("fetch/shell tables: %w", err)
		}
		m.curlShell = re
	}
	return m, nil
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return strings.Join(quoted, "|")
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func lowerSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[strings.ToLower(s)] = true
	}
	return out
}
