package domain

// Heuristics are the keyword and pattern tables rule bodies consult.
// Every list can be replaced from .dockreview.yaml.
type Heuristics struct {
	SecretKeywords       []string `yaml:"secret_keywords"        json:"secret_keywords,omitempty"`
	SecretExemptSuffixes []string `yaml:"secret_exempt_suffixes" json:"secret_exempt_suffixes,omitempty"`
	Placeholders         []string `yaml:"placeholders"           json:"placeholders,omitempty"`
	SecretValuePatterns  []string `yaml:"secret_value_patterns"  json:"secret_value_patterns,omitempty"`
	InstallCommands      []string `yaml:"install_commands"       json:"install_commands,omitempty"`
	BuildTools           []string `yaml:"build_tools"            json:"build_tools,omitempty"`
	HeavyImages          []string `yaml:"heavy_images"           json:"heavy_images,omitempty"`
	SlimMarkers          []string `yaml:"slim_markers"           json:"slim_markers,omitempty"`
	FetchCommands        []string `yaml:"fetch_commands"         json:"fetch_commands,omitempty"`
	Shells               []string `yaml:"shells"                 json:"shells,omitempty"`
	BroadSources         []string `yaml:"broad_sources"          json:"broad_sources,omitempty"`
}

// Merge returns h with every non-empty list of o replacing its counterpart.
func (h Heuristics) Merge(o Heuristics) Heuristics {
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	pick(&h.SecretKeywords, o.SecretKeywords)
	pick(&h.SecretExemptSuffixes, o.SecretExemptSuffixes)
	pick(&h.Placeholders, o.Placeholders)
	pick(&h.SecretValuePatterns, o.SecretValuePatterns)
	pick(&h.InstallCommands, o.InstallCommands)
	pick(&h.BuildTools, o.BuildTools)
	pick(&h.HeavyImages, o.HeavyImages)
	pick(&h.SlimMarkers, o.SlimMarkers)
	pick(&h.FetchCommands, o.FetchCommands)
	pick(&h.Shells, o.Shells)
	pick(&h.BroadSources, o.BroadSources)
	return h
}
