package parser

import (
	"strings"

	"github.com/dockreview/dockreview/internal/domain"
)

// ParseImageRef splits an image reference into name, tag and digest. The
// digest follows "@"; the tag follows the last ":" unless that colon is part
// of a registry host:port.
func ParseImageRef(s string) domain.ImageRef {
	var ref domain.ImageRef
	name := strings.TrimSpace(s)
	if i := strings.Index(name, "@"); i >= 0 {
		ref.Digest = name[i+1:]
		name = name[:i]
	}
	if i := strings.LastIndex(name, ":"); i >= 0 && !strings.Contains(name[i+1:], "/") {
		ref.Tag = name[i+1:]
		name = name[:i]
	}
	ref.Name = name
	return ref
}
