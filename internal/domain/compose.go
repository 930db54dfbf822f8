package domain

// ResourceLimits holds the configured service limits. A nil field means the
// limit is not set.
type ResourceLimits struct {
	CPU    *string `json:"cpu,omitempty"`
	Memory *string `json:"memory,omitempty"`
}

// Service is one Compose service.
type Service struct {
	Name          string            `json:"name"`
	Line          int               `json:"line,omitempty"`
	Image         *ImageRef         `json:"image,omitempty"`
	Build         bool              `json:"build,omitempty"`
	Privileged    bool              `json:"privileged"`
	RestartPolicy *string           `json:"restart_policy,omitempty"`
	Limits        *ResourceLimits   `json:"resource_limits,omitempty"`
	Environment   map[string]string `json:"environment,omitempty"`
	Ports         []string          `json:"ports,omitempty"`
}

// ComposeModel is the parsed form of a Compose file.
type ComposeModel struct {
	Path     string
	Services map[string]*Service
	Order    []string // service names in file order
}

// Each calls fn for every service in file order.
func (m *ComposeModel) Each(fn func(*Service)) {
	for _, name := range m.Order {
		fn(m.Services[name])
	}
}
