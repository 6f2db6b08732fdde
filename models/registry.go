// Package models holds the model capability registry and the request
// normalization pipeline. The registry is the single source of truth for
// which models exist, which provider family serves each one, and which
// defaults a request inherits; the normalizer folds caller overrides on
// top of those defaults and resolves the seed.
package models

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

// Provider families. The family selects the adapter at dispatch time;
// FamilyPlaceholder models are always served synthetically.
const (
	FamilyStability   = "stability"
	FamilyOpenAI      = "openai"
	FamilyPlaceholder = "placeholder"
)

var (
	ErrEmptyRegistry = errors.New("models: registry contains no models")
	ErrUnknownModel  = errors.New("models: unknown model")
)

// Capabilities describes the advertised limits of a model. They are
// surfaced on the catalog endpoint and bound generated dimensions.
type Capabilities struct {
	MaxWidth        int      `yaml:"maxWidth" json:"maxWidth"`
	MaxHeight       int      `yaml:"maxHeight" json:"maxHeight"`
	Styles          []string `yaml:"styles" json:"styles"`
	SupportsBatch   bool     `yaml:"supportsBatch" json:"supportsBatch"`
	SupportsInpaint bool     `yaml:"supportsInpaint" json:"supportsInpaint"`
	SupportsOutpaint bool    `yaml:"supportsOutpaint" json:"supportsOutpaint"`
}

// Profile is one routable model.
type Profile struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	Family        string         `yaml:"family" json:"-"`
	Endpoint      string         `yaml:"endpoint" json:"-"`
	EndpointRef   string         `yaml:"endpointRef" json:"-"`
	CredentialRef string         `yaml:"credentialRef" json:"-"`
	Capabilities  Capabilities   `yaml:"capabilities" json:"capabilities"`
	DefaultParams map[string]any `yaml:"defaultParams" json:"defaultParams"`
	PricePerImage float64        `yaml:"pricePerImage" json:"pricePerImage"`
}

// RequiresCredential reports whether dispatching to this model needs a
// resolved credential. Placeholder-family models never call out, so a
// missing credential is not a configuration fault for them.
func (p *Profile) RequiresCredential() bool {
	return p.Family != FamilyPlaceholder && p.CredentialRef != ""
}

type registryFile struct {
	Models []Profile `yaml:"models"`
}

// Registry is the loaded model table. Lookup order is preserved from the
// source file so catalog listings stay stable.
type Registry struct {
	profiles map[string]*Profile
	order    []string
}

// LoadRegistry parses the embedded model tables.
func LoadRegistry() (*Registry, error) {
	return loadRegistryFrom(modelsYAML)
}

func loadRegistryFrom(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("models: parsing registry: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, ErrEmptyRegistry
	}

	reg := &Registry{profiles: make(map[string]*Profile, len(file.Models))}
	for i := range file.Models {
		p := &file.Models[i]
		if p.ID == "" {
			return nil, fmt.Errorf("models: model at index %d has no id", i)
		}
		if _, dup := reg.profiles[p.ID]; dup {
			return nil, fmt.Errorf("models: duplicate model id %q", p.ID)
		}
		switch p.Family {
		case FamilyStability, FamilyOpenAI, FamilyPlaceholder:
		default:
			return nil, fmt.Errorf("models: model %q has unknown family %q", p.ID, p.Family)
		}
		if p.DefaultParams == nil {
			p.DefaultParams = map[string]any{}
		}
		reg.profiles[p.ID] = p
		reg.order = append(reg.order, p.ID)
	}
	return reg, nil
}

// Profile returns the model with the given id.
func (r *Registry) Profile(id string) (*Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return p, nil
}

// Has reports whether a model id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.profiles[id]
	return ok
}

// Profiles returns all models in declaration order.
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}
