package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenize splits an instruction's argument text into shell words. Single
// quotes are literal, double quotes honour the escape token for
// `"`, `$`, "`" and the escape token itself, and an escape outside quotes
// makes the next rune literal. Adjacent quoted and bare parts join into one
// word. With shellComments set, an unquoted `#` that starts a word ends the
// input.
func tokenize(s string, escape rune, shellComments bool) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		runes   = []rune(s)
		escaped = func(r rune) bool { return r == '"' || r == '$' || r == '`' || r == escape }
	)

scan:
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
				continue
			}
			cur.WriteRune(r)

		case quote == '"':
			if r == escape && i+1 < len(runes) {
				next := runes[i+1]
				if escaped(next) {
					cur.WriteRune(next)
				} else {
					cur.WriteRune(r)
					cur.WriteRune(next)
				}
				i++
				continue
			}
			if r == '"' {
				quote = 0
				continue
			}
			cur.WriteRune(r)

		case r == escape:
			inWord = true
			if i+1 < len(runes) {
				cur.WriteRune(runes[i+1])
				i++
				continue
			}
			cur.WriteRune(r)

		case r == '\'' || r == '"':
			inWord = true
			quote = r

		case r == '#' && shellComments && !inWord:
			break scan

		case unicode.IsSpace(r):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}

		default:
			inWord = true
			cur.WriteRune(r)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}

// splitLeadingFlags separates leading --flag words from the rest of the
// argument text. Flags are taken up to the next whitespace.
func splitLeadingFlags(s string) (flags []string, rest string) {
	rest = strings.TrimLeftFunc(s, unicode.IsSpace)
	for strings.HasPrefix(rest, "--") {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return append(flags, rest), ""
		}
		flags = append(flags, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return flags, rest
}
