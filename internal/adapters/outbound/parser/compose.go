package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dockreview/dockreview/internal/domain"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

// DecodeCompose decodes YAML text into a node tree. Decode failures become
// a ParseError carrying the line reported by the decoder.
func DecodeCompose(path string, data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		line := 0
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		return nil, &domain.ParseError{File: path, Line: line, Msg: err.Error()}
	}
	if doc.Kind == 0 {
		return nil, &domain.ParseError{File: path, Msg: "empty Compose file"}
	}
	return &doc, nil
}

// ParseCompose decodes data and projects it into a ComposeModel.
func (p *Parser) ParseCompose(path string, data []byte) (*domain.ComposeModel, error) {
	doc, err := DecodeCompose(path, data)
	if err != nil {
		return nil, err
	}
	return ProjectCompose(path, doc)
}

// ProjectCompose builds a ComposeModel from a decoded tree. Only the shape
// the rules depend on is checked; missing keys are recorded as absent.
func ProjectCompose(path string, doc *yaml.Node) (*domain.ComposeModel, error) {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if root.Kind != yaml.MappingNode {
		return nil, &domain.ParseError{File: path, Line: root.Line, Msg: "top level must be a mapping"}
	}

	model := &domain.ComposeModel{Path: path, Services: map[string]*domain.Service{}}
	services := resolve(lookup(root, "services"))
	if isNull(services) {
		return model, nil
	}
	if services.Kind != yaml.MappingNode {
		return nil, &domain.ParseError{File: path, Line: services.Line, Msg: "services must be a mapping"}
	}

	for _, e := range entries(services) {
		key, val := e.key, e.val
		name := key.Value
		if _, dup := model.Services[name]; dup {
			return nil, &domain.ParseError{File: path, Line: key.Line, Msg: fmt.Sprintf("duplicate service %q", name)}
		}
		svc, err := projectService(name, key.Line, val)
		if err != nil {
			return nil, &domain.ParseError{File: path, Line: val.Line, Msg: err.Error()}
		}
		model.Services[name] = svc
		model.Order = append(model.Order, name)
	}
	return model, nil
}

func projectService(name string, line int, n *yaml.Node) (*domain.Service, error) {
	svc := &domain.Service{Name: name, Line: line, Environment: map[string]string{}}
	n = resolve(n)
	if isNull(n) {
		return svc, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("service %q must be a mapping", name)
	}

	if img := lookup(n, "image"); !isNull(img) {
		s, err := scalar(img, "image")
		if err != nil {
			return nil, err
		}
		if s != "" {
			ref := ParseImageRef(s)
			svc.Image = &ref
		}
	}
	svc.Build = !isNull(lookup(n, "build"))

	if priv := lookup(n, "privileged"); !isNull(priv) {
		if err := priv.Decode(&svc.Privileged); err != nil {
			return nil, fmt.Errorf("privileged: %w", err)
		}
	}

	restart, err := restartPolicy(n)
	if err != nil {
		return nil, err
	}
	svc.RestartPolicy = restart

	limits, err := resourceLimits(n)
	if err != nil {
		return nil, err
	}
	svc.Limits = limits

	if err := environment(lookup(n, "environment"), svc.Environment); err != nil {
		return nil, err
	}
	ports, err := portList(lookup(n, "ports"))
	if err != nil {
		return nil, err
	}
	svc.Ports = ports
	return svc, nil
}

func restartPolicy(svc *yaml.Node) (*string, error) {
	if r := lookup(svc, "restart"); !isNull(r) {
		s, err := scalar(r, "restart")
		if err != nil {
			return nil, err
		}
		return &s, nil
	}
	policy := lookup(lookup(svc, "deploy"), "restart_policy")
	if isNull(policy) {
		return nil, nil
	}
	cond := "any"
	if c := lookup(policy, "condition"); !isNull(c) {
		s, err := scalar(c, "deploy.restart_policy.condition")
		if err != nil {
			return nil, err
		}
		cond = s
	}
	return &cond, nil
}

func resourceLimits(svc *yaml.Node) (*domain.ResourceLimits, error) {
	var limits domain.ResourceLimits
	deploy := lookup(lookup(lookup(svc, "deploy"), "resources"), "limits")

	for _, src := range []struct {
		node  *yaml.Node
		field string
		dst   **string
	}{
		{lookup(svc, "cpus"), "cpus", &limits.CPU},
		{lookup(svc, "mem_limit"), "mem_limit", &limits.Memory},
		{lookup(deploy, "cpus"), "deploy.resources.limits.cpus", &limits.CPU},
		{lookup(deploy, "memory"), "deploy.resources.limits.memory", &limits.Memory},
	} {
		if isNull(src.node) || *src.dst != nil {
			continue
		}
		s, err := scalar(src.node, src.field)
		if err != nil {
			return nil, err
		}
		*src.dst = &s
	}

	if limits.CPU == nil && limits.Memory == nil {
		return nil, nil
	}
	return &limits, nil
}

func environment(n *yaml.Node, env map[string]string) error {
	n = resolve(n)
	if isNull(n) {
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		for _, e := range entries(n) {
			k, v := e.key, e.val
			if isNull(v) {
				env[k.Value] = ""
				continue
			}
			s, err := scalar(v, "environment."+k.Value)
			if err != nil {
				return err
			}
			env[k.Value] = s
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			s, err := scalar(item, "environment")
			if err != nil {
				return err
			}
			k, v, _ := strings.Cut(s, "=")
			env[k] = v
		}
	default:
		return fmt.Errorf("environment must be a mapping or a list")
	}
	return nil
}

func portList(n *yaml.Node) ([]string, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("ports must be a list")
	}
	var ports []string
	for _, item := range n.Content {
		item = resolve(item)
		switch item.Kind {
		case yaml.ScalarNode:
			ports = append(ports, item.Value)
		case yaml.MappingNode:
			var p string
			if target := lookup(item, "target"); !isNull(target) {
				p = resolve(target).Value
			}
			if pub := lookup(item, "published"); !isNull(pub) {
				p = resolve(pub).Value + ":" + p
			}
			if proto := lookup(item, "protocol"); !isNull(proto) {
				p += "/" + resolve(proto).Value
			}
			ports = append(ports, p)
		}
	}
	return ports, nil
}

// resolve follows alias nodes to their anchored value.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

type entry struct {
	key, val *yaml.Node
}

// entries lists the key/value pairs of a mapping with `<<` merge keys
// expanded. Explicit keys win over merged ones, and earlier merge sources
// win over later ones. Values are alias-resolved.
func entries(m *yaml.Node) []entry {
	return mergedEntries(m, map[*yaml.Node]bool{})
}

func mergedEntries(m *yaml.Node, visiting map[*yaml.Node]bool) []entry {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode || visiting[m] {
		return nil
	}
	visiting[m] = true
	defer delete(visiting, m)

	explicit := map[string]bool{}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if !isMergeKey(m.Content[i]) {
			explicit[m.Content[i].Value] = true
		}
	}

	var out []entry
	seen := map[string]bool{}
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], resolve(m.Content[i+1])
		if !isMergeKey(k) {
			out = append(out, entry{k, v})
			continue
		}
		sources := []*yaml.Node{v}
		if v != nil && v.Kind == yaml.SequenceNode {
			sources = v.Content
		}
		for _, src := range sources {
			for _, e := range mergedEntries(src, visiting) {
				if explicit[e.key.Value] || seen[e.key.Value] {
					continue
				}
				seen[e.key.Value] = true
				out = append(out, e)
			}
		}
	}
	return out
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

// lookup returns the value node for key in a mapping, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for _, e := range entries(m) {
		if e.key.Value == key {
			return e.val
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func scalar(n *yaml.Node, field string) (string, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%s must be a scalar", field)
	}
	return n.Value, nil
}
