package rules

import (
	"regexp"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/dockreview/dockreview/internal/domain"
)

// phraseSet matches whole-word phrases case-insensitively. "make" matches
// "cd src && make" but not "cmake" or "make-foo".
type phraseSet struct {
	phrases []string
	res     []*regexp.Regexp
}

const wordChars = `\w.+-`

func newPhraseSet(phrases []string) phraseSet {
	ps := phraseSet{}
	for _, p := range phrases {
		fields := strings.Fields(strings.ToLower(p))
		if len(fields) == 0 {
			continue
		}
		for i, f := range fields {
			fields[i] = regexp.QuoteMeta(f)
		}
		expr := `(?i)(?:^|[^` + wordChars + `])` + strings.Join(fields, `\s+`) + `(?:$|[^` + wordChars + `])`
		ps.phrases = append(ps.phrases, p)
		ps.res = append(ps.res, regexp.MustCompile(expr))
	}
	return ps
}

// match returns the first phrase found in text.
func (ps phraseSet) match(text string) (string, bool) {
	for i, re := range ps.res {
		if re.MatchString(text) {
			return ps.phrases[i], true
		}
	}
	return "", false
}

// secretMatcher decides whether a key/value pair looks like a hardcoded
// credential.
type secretMatcher struct {
	keywords     []string
	exempt       []string
	placeholders map[string]bool
	values       []*regexp.Regexp
}

func (sm secretMatcher) match(key, value string) bool {
	value = strings.TrimSpace(value)
	for _, re := range sm.values {
		if re.MatchString(value) {
			return true
		}
	}
	if value == "" || sm.placeholder(value) {
		return false
	}
	return sm.secretKey(key)
}

func (sm secretMatcher) placeholder(value string) bool {
	if strings.HasPrefix(value, "$") {
		return true
	}
	if strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">") {
		return true
	}
	return sm.placeholders[strings.ToLower(value)]
}

func (sm secretMatcher) secretKey(key string) bool {
	norm := normalizeKey(key)
	for _, suffix := range sm.exempt {
		if strings.HasSuffix(norm, suffix) {
			return false
		}
	}
	padded := "_" + norm + "_"
	for _, kw := range sm.keywords {
		if strings.Contains(padded, "_"+kw+"_") {
			return true
		}
	}
	return false
}

// normalizeKey lowercases a variable name and separates its words with
// underscores: "dbPassword", "DB_PASSWORD" and "db-password" all become
// "db_password".
func normalizeKey(key string) string {
	var words []string
	for _, part := range strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	}) {
		for _, w := range camelcase.Split(part) {
			words = append(words, strings.ToLower(w))
		}
	}
	return strings.Join(words, "_")
}

// command returns the shell text of a RUN instruction without its flags.
func command(in domain.Instruction) string {
	if in.ExecForm {
		return strings.Join(in.Operands(), " ")
	}
	text := in.Text
	for _, f := range in.Flags {
		text = strings.TrimSpace(strings.TrimPrefix(text, f))
	}
	return text
}

var separators = map[string]bool{"&&": true, "||": true, ";": true, "|": true}

// segments splits shell words into simple commands at &&, ||, ; and |.
func segments(words []string) [][]string {
	var (
		out [][]string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for _, w := range words {
		if separators[w] {
			flush()
			continue
		}
		if strings.HasSuffix(w, ";") && !strings.HasSuffix(w, `\;`) {
			if trimmed := strings.TrimSuffix(w, ";"); trimmed != "" {
				cur = append(cur, trimmed)
			}
			flush()
			continue
		}
		cur = append(cur, w)
	}
	flush()
	return out
}

// stripPrefix drops leading sudo and VAR=value assignments from a command.
func stripPrefix(words []string) []string {
	for len(words) > 0 {
		w := words[0]
		if w == "sudo" || (strings.Contains(w, "=") && !strings.HasPrefix(w, "-")) {
			words = words[1:]
			continue
		}
		break
	}
	return words
}

// envPairs returns the key/value pairs declared by an ENV or ARG
// instruction, in order.
func envPairs(in domain.Instruction) [][2]string {
	ops := in.Operands()
	var pairs [][2]string
	if in.Kind == domain.KindEnv && len(ops) > 0 && !strings.Contains(ops[0], "=") {
		// legacy "ENV key value with spaces"
		return append(pairs, [2]string{ops[0], strings.Join(ops[1:], " ")})
	}
	for _, op := range ops {
		k, v, _ := strings.Cut(op, "=")
		pairs = append(pairs, [2]string{k, v})
	}
	return pairs
}
