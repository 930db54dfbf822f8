package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

// installer describes how one package manager names and pins packages.
type installer struct {
	words      []string        // leading command words
	valueFlags map[string]bool // flags that consume the next word
	pinAll     []string        // flags that pin every package on the line
	pinned     func(pkg string) bool
	example    string
}

func flagSet(flags ...string) map[string]bool {
	s := make(map[string]bool, len(flags))
	for _, f := range flags {
		s[f] = true
	}
	return s
}

func containsEq(pkg string) bool { return strings.Contains(pkg, "=") }

func atVersion(pkg string) bool {
	i := strings.LastIndex(pkg, "@")
	return i > 0 && !strings.EqualFold(pkg[i+1:], "latest") && pkg[i+1:] != ""
}

var (
	aptFlags = flagSet("-o", "-t", "--target-release")
	apkFlags = flagSet("-t", "--virtual", "-X", "--repository", "-p", "--root")
	pipFlags = flagSet("-r", "--requirement", "-c", "--constraint", "-e", "--editable",
		"-i", "--index-url", "--extra-index-url", "-t", "--target", "--prefix",
		"-f", "--find-links", "--trusted-host", "--root")
	npmFlags = flagSet("--prefix", "--registry", "-w", "--workspace")
	gemFlags = flagSet("-v", "--version", "-i", "--install-dir", "-n", "--bindir", "-s", "--source")
)

var installers = []installer{
	{words: []string{"apt-get", "install"}, valueFlags: aptFlags, pinned: containsEq, example: "apt-get install curl=7.88.1-10"},
	{words: []string{"apt", "install"}, valueFlags: aptFlags, pinned: containsEq, example: "apt install curl=7.88.1-10"},
	{words: []string{"apk", "add"}, valueFlags: apkFlags, pinned: containsEq, example: "apk add curl=8.5.0-r0"},
	{words: []string{"pip", "install"}, valueFlags: pipFlags, pinned: pipPinned, example: "pip install requests==2.31.0"},
	{words: []string{"pip3", "install"}, valueFlags: pipFlags, pinned: pipPinned, example: "pip3 install requests==2.31.0"},
	{words: []string{"npm", "install"}, valueFlags: npmFlags, pinned: atVersion, example: "npm install express@4.18.2"},
	{words: []string{"npm", "i"}, valueFlags: npmFlags, pinned: atVersion, example: "npm i express@4.18.2"},
	{words: []string{"yarn", "add"}, valueFlags: npmFlags, pinned: atVersion, example: "yarn add express@4.18.2"},
	{words: []string{"yarn", "global", "add"}, valueFlags: npmFlags, pinned: atVersion, example: "yarn global add typescript@5.3.3"},
	{words: []string{"gem", "install"}, valueFlags: gemFlags, pinAll: []string{"-v", "--version"},
		pinned: func(pkg string) bool { return strings.Contains(pkg, ":") }, example: "gem install rails -v 7.1.2"},
	{words: []string{"go", "install"}, pinned: atVersion, example: "go install golang.org/x/tools/gopls@v0.14.2"},
	{words: []string{"cargo", "install"}, valueFlags: flagSet("--version", "--vers", "--path", "--git", "--root", "--branch", "--tag", "--rev"),
		pinAll: []string{"--version", "--vers", "--path", "--git"}, pinned: atVersion, example: "cargo install ripgrep --version 14.1.0"},
	{words: []string{"composer", "require"}, pinned: func(pkg string) bool { return strings.Contains(pkg, ":") },
		example: "composer require monolog/monolog:3.5.0"},
}

func pipPinned(pkg string) bool {
	return strings.Contains(pkg, "==") || strings.Contains(pkg, "~=")
}

func versionPinning(_ *matchers) Rule {
	return Rule{
		ID:          "DF007",
		Name:        "No version pinning",
		Severity:    domain.SeverityWarning,
		Category:    domain.CategoryPerformance,
		AppliesTo:   ScopeDockerfile,
		Description: "Packages installed without version pinning",
		Rationale: "Installing packages without version pinning leads to unpredictable builds. " +
			"The same Dockerfile may install different package versions on different days, " +
			"causing subtle bugs and security issues. Pin versions for reproducibility.",
		Fix: "Pin package versions (e.g., 'apt-get install curl=7.68.0-1ubuntu2' or 'pip install requests==2.28.0')",
		Impact: Impact{
			Security:    "Prevents unexpected package changes",
			Reliability: "100% reproducible builds",
		},
		Dockerfile: func(m *domain.DockerfileModel) []Finding {
			var out []Finding
			for _, in := range m.Instructions {
				if in.Kind != domain.KindRun {
					continue
				}
				for _, seg := range segments(in.Operands()) {
					inst, pkgs := matchInstaller(seg)
					if inst == nil {
						continue
					}
					unpinned := unpinnedPackages(inst, pkgs)
					if len(unpinned) == 0 {
						continue
					}
					name := strings.Join(inst.words, " ")
					out = append(out, Finding{
						Line:    in.Line,
						Message: fmt.Sprintf("%s without version pinning: %s", name, strings.Join(unpinned, ", ")),
						Context: strings.Join(unpinned, " "),
						Fix:     fmt.Sprintf("Pin package versions (e.g., '%s')", inst.example),
					})
				}
			}
			return out
		},
	}
}

// matchInstaller identifies the package manager invoked by a simple command
// and returns the words after its leading command words.
func matchInstaller(words []string) (*installer, []string) {
	words = stripPrefix(words)
	if len(words) > 2 && strings.HasPrefix(path.Base(words[0]), "python") && words[1] == "-m" {
		words = words[2:]
	}
	if len(words) == 0 {
		return nil, nil
	}
	words = append([]string{path.Base(words[0])}, words[1:]...)

	for i := range installers {
		inst := &installers[i]
		if rest, ok := matchWords(words, inst.words); ok {
			return inst, rest
		}
	}
	return nil, nil
}

// matchWords matches cmd against the start of words, allowing flags between
// command words as in "apt-get -y install".
func matchWords(words, cmd []string) ([]string, bool) {
	i := 0
	for j, w := range cmd {
		for j > 0 && i < len(words) && strings.HasPrefix(words[i], "-") {
			i++
		}
		if i >= len(words) || words[i] != w {
			return nil, false
		}
		i++
	}
	return words[i:], true
}

func unpinnedPackages(inst *installer, args []string) []string {
	for _, a := range args {
		for _, f := range inst.pinAll {
			if a == f || strings.HasPrefix(a, f+"=") {
				return nil
			}
		}
	}

	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") {
			if inst.valueFlags[a] {
				i++
			}
			continue
		}
		if !packageName(a) || inst.pinned(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// packageName reports whether an argument names a registry package rather
// than a local path, URL, archive or unexpanded variable.
func packageName(a string) bool {
	switch {
	case a == "", strings.Contains(a, "$"), strings.Contains(a, "://"):
		return false
	case strings.HasPrefix(a, "."), strings.HasPrefix(a, "/"), strings.HasPrefix(a, "~"):
		return false
	case strings.HasPrefix(a, "git+"):
		return false
	}
	for _, ext := range []string{".deb", ".rpm", ".apk", ".whl", ".tar.gz", ".tgz", ".zip", ".gem"} {
		if strings.HasSuffix(a, ext) {
			return false
		}
	}
	return true
}
