package models

// Fallback dimensions used when neither the model defaults nor the caller
// supply a size.
const (
	FallbackWidth  = 1024
	FallbackHeight = 1024
)

// Params is the fully-resolved parameter set handed to a provider adapter.
// Extra carries model-default keys that the adapters pass through untouched
// (sampler names, size strings, provider-specific knobs).
type Params struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	CFGScale       float64
	Width          int
	Height         int
	Samples        int
	Seed           int64
	Extra          map[string]any
}

// Normalize resolves the final parameter set for a request: model defaults
// first, caller overrides on top, then the seed. prompt and negativePrompt
// are the already-enhanced values, not the raw caller input.
//
// Seed resolution: an explicit caller seed is used verbatim, so two
// identical requests reproduce the same image; otherwise a fresh random
// seed is drawn per request.
func Normalize(req *GenerationRequest, profile *Profile, prompt, negativePrompt string) Params {
	p := Params{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		Samples:        1,
		Extra:          map[string]any{},
	}

	for key, value := range profile.DefaultParams {
		switch key {
		case "cfg_scale":
			p.CFGScale = asFloat(value)
		case "steps":
			p.Steps = asInt(value)
		case "samples":
			p.Samples = asInt(value)
		case "width":
			p.Width = asInt(value)
		case "height":
			p.Height = asInt(value)
		default:
			p.Extra[key] = value
		}
	}

	if req.CFGScale != nil {
		p.CFGScale = *req.CFGScale
	}
	if req.Steps != nil {
		p.Steps = int(*req.Steps)
	}
	// Caller dimensions pass through untouched, even past the profile's
	// capability maxima. Normalization is mechanical; what a model accepts
	// is the provider's concern.
	if req.Width != nil {
		p.Width = int(*req.Width)
	}
	if req.Height != nil {
		p.Height = int(*req.Height)
	}
	if p.Width <= 0 {
		p.Width = FallbackWidth
	}
	if p.Height <= 0 {
		p.Height = FallbackHeight
	}

	if req.Seed != nil {
		p.Seed = int64(*req.Seed)
	} else {
		p.Seed = RandomSeed()
	}
	return p
}

// AsMap flattens the params for result metadata and persistence.
func (p Params) AsMap() map[string]any {
	out := map[string]any{
		"prompt":          p.Prompt,
		"negative_prompt": p.NegativePrompt,
		"steps":           p.Steps,
		"cfg_scale":       p.CFGScale,
		"width":           p.Width,
		"height":          p.Height,
		"samples":         p.Samples,
		"seed":            p.Seed,
	}
	for key, value := range p.Extra {
		out[key] = value
	}
	return out
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
