package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	bkparser "github.com/moby/buildkit/frontend/dockerfile/parser"

	"github.com/dockreview/dockreview/internal/domain"
)

// Parser turns raw Dockerfile and Compose text into the instruction model.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseDockerfile parses src into a DockerfileModel. bc may be nil when the
// build context is unknown.
func (p *Parser) ParseDockerfile(path string, src []byte, bc *domain.BuildContext) (*domain.DockerfileModel, error) {
	if !hasInstructions(src) {
		return nil, &domain.ParseError{File: path, Msg: "empty Dockerfile: no instructions"}
	}

	res, err := bkparser.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, &domain.ParseError{File: path, Line: errorLine(err), Msg: err.Error()}
	}

	model := &domain.DockerfileModel{Path: path, Context: bc}
	var current *domain.Stage
	for _, node := range res.AST.Children {
		in, err := buildInstruction(node, res.EscapeToken)
		if err != nil {
			return nil, &domain.ParseError{File: path, Line: node.StartLine, Msg: err.Error()}
		}
		model.Instructions = append(model.Instructions, in)

		if in.Kind == domain.KindFrom {
			if current != nil {
				model.Stages = append(model.Stages, *current)
			}
			current = &domain.Stage{Index: len(model.Stages), Alias: in.Image.Alias, From: in}
		}
		if current != nil {
			current.Instructions = append(current.Instructions, in)
		}
	}

	if current == nil {
		line := 0
		if len(model.Instructions) > 0 {
			line = model.Instructions[0].Line
		}
		return nil, &domain.ParseError{File: path, Line: line, Msg: "no FROM instruction"}
	}
	model.Stages = append(model.Stages, *current)
	return model, nil
}

// hasInstructions reports whether src has any line that is neither blank
// nor a comment.
func hasInstructions(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}

func errorLine(err error) int {
	var loc *bkparser.LocationError
	if errors.As(err, &loc) && len(loc.Locations) > 0 && len(loc.Locations[0]) > 0 {
		return loc.Locations[0][0].Start.Line
	}
	return 0
}

var flaggable = map[domain.InstructionKind]bool{
	domain.KindFrom:        true,
	domain.KindRun:         true,
	domain.KindCopy:        true,
	domain.KindAdd:         true,
	domain.KindHealthcheck: true,
}

// shellForm marks instructions whose shell-form body runs through /bin/sh.
var shellForm = map[domain.InstructionKind]bool{
	domain.KindRun:         true,
	domain.KindCmd:         true,
	domain.KindEntrypoint:  true,
	domain.KindHealthcheck: true,
}

func buildInstruction(node *bkparser.Node, escape rune) (domain.Instruction, error) {
	keyword, text := splitKeyword(node.Original)
	if keyword == "" {
		keyword = node.Value
	}
	in := domain.Instruction{
		Kind:    domain.KindOf(keyword),
		Keyword: strings.ToUpper(keyword),
		Text:    text,
		Line:    node.StartLine,
	}

	body := text
	if flaggable[in.Kind] {
		in.Flags, body = splitLeadingFlags(text)
	}

	if args, ok := execForm(body); ok {
		in.ExecForm = true
		in.Args = append(append([]string{}, in.Flags...), args...)
	} else {
		args, err := tokenize(body, escape, shellForm[in.Kind])
		if err != nil {
			return in, fmt.Errorf("%s: %w", in.Keyword, err)
		}
		in.Args = append(append([]string{}, in.Flags...), args...)
	}

	if in.Kind == domain.KindFrom {
		ref, err := fromImage(in.Operands())
		if err != nil {
			return in, err
		}
		in.Image = &ref
	}
	return in, nil
}

func splitKeyword(original string) (keyword, rest string) {
	s := strings.TrimLeftFunc(original, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}

// execForm decodes a JSON array of strings.
func execForm(body string) ([]string, bool) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "[") {
		return nil, false
	}
	var args []string
	if err := json.Unmarshal([]byte(body), &args); err != nil {
		return nil, false
	}
	return args, true
}

func fromImage(operands []string) (domain.ImageRef, error) {
	switch {
	case len(operands) == 1:
		return ParseImageRef(operands[0]), nil
	case len(operands) == 3 && strings.EqualFold(operands[1], "AS"):
		ref := ParseImageRef(operands[0])
		ref.Alias = operands[2]
		return ref, nil
	case len(operands) == 0:
		return domain.ImageRef{}, errors.New("FROM requires an image")
	default:
		return domain.ImageRef{}, errors.New("FROM requires either one argument or IMAGE AS NAME")
	}
}
