package domain

import "strings"

// InstructionKind is the normalized leading keyword of an instruction.
type InstructionKind string

const (
	KindFrom        InstructionKind = "FROM"
	KindRun         InstructionKind = "RUN"
	KindCopy        InstructionKind = "COPY"
	KindAdd         InstructionKind = "ADD"
	KindEnv         InstructionKind = "ENV"
	KindArg         InstructionKind = "ARG"
	KindUser        InstructionKind = "USER"
	KindHealthcheck InstructionKind = "HEALTHCHECK"
	KindExpose      InstructionKind = "EXPOSE"
	KindWorkdir     InstructionKind = "WORKDIR"
	KindCmd         InstructionKind = "CMD"
	KindEntrypoint  InstructionKind = "ENTRYPOINT"
	KindOther       InstructionKind = "OTHER"
)

var knownKinds = map[string]InstructionKind{
	"FROM":        KindFrom,
	"RUN":         KindRun,
	"COPY":        KindCopy,
	"ADD":         KindAdd,
	"ENV":         KindEnv,
	"ARG":         KindArg,
	"USER":        KindUser,
	"HEALTHCHECK": KindHealthcheck,
	"EXPOSE":      KindExpose,
	"WORKDIR":     KindWorkdir,
	"CMD":         KindCmd,
	"ENTRYPOINT":  KindEntrypoint,
}

// KindOf maps a leading keyword, in any case, to its kind.
func KindOf(keyword string) InstructionKind {
	if k, ok := knownKinds[strings.ToUpper(keyword)]; ok {
		return k
	}
	return KindOther
}

// ImageRef is a parsed FROM or service image reference.
type ImageRef struct {
	Name   string `json:"name"`
	Tag    string `json:"tag,omitempty"`    // empty means none (implicitly latest)
	Digest string `json:"digest,omitempty"` // e.g. sha256:abc...
	Alias  string `json:"alias,omitempty"`  // stage alias from "AS name"
}

// HasTag reports whether an explicit tag was given.
func (r ImageRef) HasTag() bool { return r.Tag != "" }

// Floating reports whether the reference resolves to whatever "latest" is
// at build time: no digest and a missing or "latest" tag.
func (r ImageRef) Floating() bool {
	if r.Digest != "" {
		return false
	}
	return r.Tag == "" || strings.EqualFold(r.Tag, "latest")
}

// BaseName returns the last path segment of the image name, lowercased.
// "docker.io/library/ubuntu" yields "ubuntu".
func (r ImageRef) BaseName() string {
	name := strings.ToLower(r.Name)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (r ImageRef) String() string {
	s := r.Name
	if r.Tag != "" {
		s += ":" + r.Tag
	}
	if r.Digest != "" {
		s += "@" + r.Digest
	}
	return s
}

// Instruction is one logical Dockerfile directive.
type Instruction struct {
	Kind     InstructionKind
	Keyword  string    // uppercased leading token as written
	Args     []string  // shell-unescaped argument tokens
	Flags    []string  // leading --flag tokens, also present in Args
	Text     string    // argument text after the keyword, continuations joined
	ExecForm bool      // arguments given as a JSON array
	Line     int       // 1-based line of the first physical line
	Image    *ImageRef // FROM only
}

// Flag returns the value of a leading --name=value flag.
func (in Instruction) Flag(name string) (string, bool) {
	prefix := "--" + name
	for _, f := range in.Flags {
		if f == prefix {
			return "", true
		}
		if strings.HasPrefix(f, prefix+"=") {
			return f[len(prefix)+1:], true
		}
	}
	return "", false
}

// Operands returns Args without the leading flags.
func (in Instruction) Operands() []string {
	return in.Args[len(in.Flags):]
}

// Stage is the run of instructions opened by one FROM.
type Stage struct {
	Index        int
	Alias        string
	From         Instruction
	Instructions []Instruction // From is the first element
}

// Last returns the last instruction of the given kind in the stage.
func (s Stage) Last(kind InstructionKind) (Instruction, bool) {
	for i := len(s.Instructions) - 1; i >= 0; i-- {
		if s.Instructions[i].Kind == kind {
			return s.Instructions[i], true
		}
	}
	return Instruction{}, false
}

// Has reports whether the stage contains an instruction of any given kind.
func (s Stage) Has(kinds ...InstructionKind) bool {
	for _, in := range s.Instructions {
		for _, k := range kinds {
			if in.Kind == k {
				return true
			}
		}
	}
	return false
}

// BuildContext carries facts about the directory a Dockerfile is built from.
type BuildContext struct {
	Dir             string
	HasDockerignore bool
}

// DockerfileModel is the parsed form of a Dockerfile.
type DockerfileModel struct {
	Path         string
	Stages       []Stage       // at least one
	Instructions []Instruction // every instruction in file order, including global ARGs
	Context      *BuildContext // nil when the build context is unknown
}

// FinalStage returns the stage that produces the image.
func (m *DockerfileModel) FinalStage() Stage {
	return m.Stages[len(m.Stages)-1]
}

// IsFinal reports whether the stage at index i is the final stage.
func (m *DockerfileModel) IsFinal(i int) bool {
	return i == len(m.Stages)-1
}
