// Package prompt implements the lexical half of the generation pipeline:
// the style registry, prompt enhancement, and negative prompt synthesis.
package prompt

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var stylesYAML []byte

// SamplingSettings are the default sampling parameters suggested for a style.
type SamplingSettings struct {
	CFGScale float64 `yaml:"cfgScale" json:"cfg_scale"`
	Steps    int     `yaml:"steps" json:"steps"`
}

// StyleProfile describes a named aesthetic category. Profiles are immutable
// after registry load.
type StyleProfile struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Modifiers are the display modifiers exposed in the style listing.
	Modifiers []string `yaml:"modifiers" json:"modifiers"`

	// EnhancementPhrases is the ranked list of short augmenting phrases the
	// enhancer appends. Distinct from Modifiers; may be empty, in which case
	// the phrase step is skipped for this style.
	EnhancementPhrases []string `yaml:"enhancementPhrases" json:"-"`

	NegativePrompt string           `yaml:"negativePrompt" json:"negative_prompt"`
	Settings       SamplingSettings `yaml:"settings" json:"settings"`
}

// DefaultNegativePrompt is returned for styles with no configured negative
// prompt and for unknown style ids.
const DefaultNegativePrompt = "ugly, deformed, noisy, blurry, distorted, grainy, low quality, bad anatomy"

// Registry holds the style table and preset prompt catalog. It is loaded once
// at process start and read concurrently without synchronization afterwards.
type Registry struct {
	styles  map[string]StyleProfile
	order   []string
	presets map[string][]string
}

type registryFile struct {
	Styles  []StyleProfile      `yaml:"styles"`
	Presets map[string][]string `yaml:"presets"`
}

// LoadRegistry parses the embedded style tables into a Registry.
func LoadRegistry() (*Registry, error) {
	return loadRegistryFrom(stylesYAML)
}

func loadRegistryFrom(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("prompt: failed to parse style registry: %w", err)
	}
	if len(file.Styles) == 0 {
		return nil, fmt.Errorf("prompt: style registry is empty")
	}

	styles := make(map[string]StyleProfile, len(file.Styles))
	order := make([]string, 0, len(file.Styles))
	for _, s := range file.Styles {
		if s.ID == "" {
			return nil, fmt.Errorf("prompt: style entry with empty id")
		}
		if _, exists := styles[s.ID]; exists {
			return nil, fmt.Errorf("prompt: duplicate style id %q", s.ID)
		}
		styles[s.ID] = s
		order = append(order, s.ID)
	}

	return &Registry{
		styles:  styles,
		order:   order,
		presets: file.Presets,
	}, nil
}

// Style returns the profile for a style id.
func (r *Registry) Style(id string) (StyleProfile, bool) {
	s, ok := r.styles[id]
	return s, ok
}

// Styles returns all profiles in registry order.
func (r *Registry) Styles() []StyleProfile {
	result := make([]StyleProfile, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.styles[id])
	}
	return result
}

// Presets returns the preset prompt catalog grouped by category.
func (r *Registry) Presets() map[string][]string {
	return r.presets
}

// NegativePrompt returns the style's configured negative prompt, or the
// generic default for unknown styles. A caller-supplied override takes
// precedence over this value; that rule is enforced by the orchestrator.
func (r *Registry) NegativePrompt(styleID string) string {
	if s, ok := r.styles[styleID]; ok && s.NegativePrompt != "" {
		return s.NegativePrompt
	}
	return DefaultNegativePrompt
}
