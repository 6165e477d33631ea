// Package preset holds the curated style presets offered alongside raw
// prompt generation. A preset pins a model and an optional prompt suffix
// that is appended to the caller's prompt before dispatch.
package preset

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset describes a named generation style.
type Preset struct {
	Slug         string `yaml:"slug" json:"slug"`
	Label        string `yaml:"label" json:"label"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	Model        string `yaml:"model,omitempty" json:"model,omitempty"`
	PromptSuffix string `yaml:"prompt_suffix,omitempty" json:"promptSuffix,omitempty"`
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// Catalog stores presets by slug.
type Catalog struct {
	presets map[string]Preset
}

// Load parses a preset catalog from YAML bytes.
func Load(source string, data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", source, err)
	}

	catalog := &Catalog{presets: make(map[string]Preset, len(file.Presets))}
	for _, p := range file.Presets {
		slug := strings.TrimSpace(p.Slug)
		if slug == "" {
			return nil, fmt.Errorf("presets %s: preset missing slug", source)
		}
		if _, ok := catalog.presets[slug]; ok {
			return nil, fmt.Errorf("presets %s: duplicate slug %q", source, slug)
		}
		if strings.TrimSpace(p.Label) == "" {
			return nil, fmt.Errorf("presets %s: preset %q missing label", source, slug)
		}
		p.Slug = slug
		catalog.presets[slug] = p
	}
	return catalog, nil
}

// LoadFile reads a preset catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- Preset path is user-provided
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	return Load(path, data)
}

// Get returns the preset for the slug.
func (c *Catalog) Get(slug string) (Preset, error) {
	if c == nil {
		return Preset{}, fmt.Errorf("preset catalog not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Preset{}, fmt.Errorf("preset slug is required")
	}
	p, ok := c.presets[slug]
	if !ok {
		return Preset{}, fmt.Errorf("preset %q not found", slug)
	}
	return p, nil
}

// List returns presets sorted by slug.
func (c *Catalog) List() []Preset {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.presets))
	for slug := range c.presets {
		keys = append(keys, slug)
	}
	sort.Strings(keys)
	result := make([]Preset, 0, len(keys))
	for _, slug := range keys {
		result = append(result, c.presets[slug])
	}
	return result
}

// Apply merges the preset into a model and prompt pair. The caller's model
// wins when set; the preset suffix is appended to the prompt.
func (p Preset) Apply(model, prompt string) (string, string) {
	if strings.TrimSpace(model) == "" {
		model = p.Model
	}
	if suffix := strings.TrimSpace(p.PromptSuffix); suffix != "" {
		prompt = strings.TrimSpace(prompt) + ", " + suffix
	}
	return model, prompt
}
