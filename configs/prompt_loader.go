package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// FacetPrompt is one explanation facet: its key, the JSON title it is reported under and its template.
type FacetPrompt struct {
	Key      string `yaml:"key"`
	Title    string `yaml:"title"`
	Template string `yaml:"template"`
}

// PromptConfig mirrors prompts.yaml
type PromptConfig struct {
	System   string        `yaml:"system"`
	Facets   []FacetPrompt `yaml:"facets"`
	Metadata struct {
		Version     string `yaml:"version"`
		LastUpdated string `yaml:"last_updated"`
	} `yaml:"metadata"`
}

// LoadPrompts reads prompt templates from path, or the embedded defaults when path is empty.
func LoadPrompts(path string) (*PromptConfig, error) {
	data := defaultPrompts
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", path, err)
		}
		data = raw
	}
	return ParsePrompts(data)
}

// ParsePrompts decodes and validates a prompts document.
func ParsePrompts(data []byte) (*PromptConfig, error) {
	var cfg PromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse prompt YAML: %w", err)
	}

	if strings.TrimSpace(cfg.System) == "" {
		cfg.System = "You are a helpful assistant."
	}
	if len(cfg.Facets) == 0 {
		return nil, fmt.Errorf("prompt config defines no facets")
	}

	seen := make(map[string]bool, len(cfg.Facets))
	for i, f := range cfg.Facets {
		if f.Key == "" || f.Title == "" || f.Template == "" {
			return nil, fmt.Errorf("facet %d: key, title and template are required", i)
		}
		if seen[f.Key] {
			return nil, fmt.Errorf("facet %q defined twice", f.Key)
		}
		seen[f.Key] = true
	}
	return &cfg, nil
}

// Facet returns the facet with the given key.
func (p *PromptConfig) Facet(key string) (FacetPrompt, bool) {
	for _, f := range p.Facets {
		if f.Key == key {
			return f, true
		}
	}
	return FacetPrompt{}, false
}

// Render fills the {species} and {evidence} placeholders of a facet template.
func (f FacetPrompt) Render(species, evidence string) string {
	return strings.NewReplacer("{species}", species, "{evidence}", evidence).Replace(f.Template)
}
