package models

import (
	"fmt"
	"math"
	"strings"

	"artgen_backend/core"
)

// Request-level defaults applied before normalization. Callers may omit
// everything except the prompt.
const (
	DefaultStyle   = "realistic"
	DefaultModelID = "stable-diffusion-xl"
	DefaultQuality = 75
)

// GenerationRequest is the caller-facing request body. Numeric fields are
// pointers so an omitted value is distinguishable from an explicit zero.
type GenerationRequest struct {
	Prompt         string   `json:"prompt"`
	Style          string   `json:"style"`
	Model          string   `json:"model"`
	Quality        *float64 `json:"quality"`
	Steps          *float64 `json:"steps"`
	CFGScale       *float64 `json:"cfg_scale"`
	NegativePrompt string   `json:"negative_prompt"`
	Width          *float64 `json:"width"`
	Height         *float64 `json:"height"`
	Seed           *float64 `json:"seed"`
}

// ApplyDefaults fills omitted fields in place.
func (r *GenerationRequest) ApplyDefaults() {
	if r.Style == "" {
		r.Style = DefaultStyle
	}
	if r.Model == "" {
		r.Model = DefaultModelID
	}
	if r.Quality == nil {
		q := float64(DefaultQuality)
		r.Quality = &q
	}
}

// Validate checks the request after defaults have been applied. Failures
// are reported as validation errors so the transport layer maps them to a
// client fault rather than a server one.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return core.NewValidationError("prompt is required")
	}
	if err := checkNumber("quality", r.Quality, 0, 100); err != nil {
		return err
	}
	if err := checkNumber("steps", r.Steps, 1, math.MaxFloat64); err != nil {
		return err
	}
	if err := checkNumber("cfg_scale", r.CFGScale, 0, math.MaxFloat64); err != nil {
		return err
	}
	if err := checkNumber("width", r.Width, 1, math.MaxFloat64); err != nil {
		return err
	}
	if err := checkNumber("height", r.Height, 1, math.MaxFloat64); err != nil {
		return err
	}
	// Seeds are 32-bit on the provider wire; larger values would overflow
	// the int64 conversion into negative territory.
	if err := checkNumber("seed", r.Seed, 0, math.MaxInt32); err != nil {
		return err
	}
	return nil
}

func checkNumber(name string, v *float64, min, max float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return core.NewValidationError(fmt.Sprintf("%s must be a finite number", name))
	}
	if *v < min || *v > max {
		return core.NewValidationError(fmt.Sprintf("%s is out of range", name))
	}
	return nil
}
