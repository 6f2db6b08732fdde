// generator.go implements the Generator organism that drives a request
// through the whole pipeline: defaults and validation, prompt enhancement,
// parameter normalization, provider dispatch, fallback, and normalization
// of the output image.
//
// This organism composes:
//   - prompt.Enhancer and prompt.Registry: prompt synthesis
//   - models.Registry: routing and parameter defaults
//   - Provider adapters, Downloader, Processor: the generation path
//   - logging.Logger: structured logging
package imagegen

import (
	"context"
	"fmt"
	"time"

	"artgen_backend/core"
	"artgen_backend/logging"
	"artgen_backend/models"
	"artgen_backend/prompt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metadata describes how a result was produced. It is returned to the
// caller alongside the image and persisted with the generation record.
type Metadata struct {
	Model          string         `json:"model"`
	Style          string         `json:"style"`
	Prompt         string         `json:"prompt"`
	EnhancedPrompt string         `json:"enhancedPrompt"`
	NegativePrompt string         `json:"negativePrompt"`
	Parameters     map[string]any `json:"parameters"`
	Placeholder    bool           `json:"placeholder"`
	EstimatedCost  float64        `json:"estimatedCost"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Result is one completed generation.
type Result struct {
	ID       string   `json:"id"`
	Image    string   `json:"image"`
	Metadata Metadata `json:"metadata"`
}

// Generator orchestrates the generation pipeline.
//
// Provider adapters are built once at construction for every model whose
// credentials and endpoint resolve; requests for models that did not
// resolve fail fast with a configuration error before any provider work.
// Placeholder-family models need no adapter and always dispatch.
//
// Thread Safety: Generator is safe for concurrent use after construction.
type Generator struct {
	config      *core.Config
	logger      *logging.Logger
	enhancer    *prompt.Enhancer
	styles      *prompt.Registry
	models      *models.Registry
	providers   map[string]Provider
	placeholder *PlaceholderGenerator
	downloader  *Downloader
	processor   *Processor
}

// NewGenerator wires the pipeline. Models whose adapters cannot be built
// are logged and left undispatchable rather than failing startup; the
// placeholder route stays available regardless.
func NewGenerator(cfg *core.Config, logger *logging.Logger, styles *prompt.Registry, modelReg *models.Registry) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if styles == nil || modelReg == nil {
		return nil, fmt.Errorf("imagegen: registries cannot be nil")
	}

	downloader, err := NewDownloader(cfg)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		config:      cfg,
		logger:      logger.Named("imagegen"),
		enhancer:    prompt.NewEnhancer(styles),
		styles:      styles,
		models:      modelReg,
		providers:   make(map[string]Provider),
		placeholder: NewPlaceholderGenerator(),
		downloader:  downloader,
		processor:   NewProcessor(logger),
	}

	for _, profile := range modelReg.Profiles() {
		provider, err := buildProvider(cfg, profile)
		if err != nil {
			g.logger.Warn("model is not dispatchable",
				zap.String("model", profile.ID),
				zap.Error(err))
			continue
		}
		if provider != nil {
			g.providers[profile.ID] = provider
		}
	}

	return g, nil
}

// buildProvider returns the adapter for a profile, or nil for
// placeholder-family models.
func buildProvider(cfg *core.Config, profile *models.Profile) (Provider, error) {
	switch profile.Family {
	case models.FamilyStability:
		return NewStabilityProvider(cfg, profile)
	case models.FamilyOpenAI:
		return NewDALLEProvider(cfg, profile)
	case models.FamilyPlaceholder:
		return nil, nil
	default:
		return nil, fmt.Errorf("imagegen: no adapter for family %q", profile.Family)
	}
}

// Dispatchable reports whether a model routes to a real adapter, or to the
// placeholder for placeholder-family models. Used by the startup report.
func (g *Generator) Dispatchable(modelID string) bool {
	profile, err := g.models.Profile(modelID)
	if err != nil {
		return false
	}
	if profile.Family == models.FamilyPlaceholder {
		return true
	}
	_, ok := g.providers[profile.ID]
	return ok
}

// Generate runs one request through the pipeline.
//
// Error contract: validation faults and configuration faults return typed
// errors for the transport layer to map; provider and post-processing
// failures never surface as errors, they resolve through the placeholder
// and passthrough paths instead.
func (g *Generator) Generate(ctx context.Context, req *models.GenerationRequest) (*Result, error) {
	start := time.Now()

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Unknown ids are a configuration fault like a missing credential,
	// not a client fault.
	profile, err := g.models.Profile(req.Model)
	if err != nil {
		return nil, core.NewModelConfigError(fmt.Sprintf("unknown model %q", req.Model))
	}

	enhanced := g.enhancer.Enhance(req.Prompt, req.Style)
	negative := req.NegativePrompt
	if negative == "" {
		negative = g.styles.NegativePrompt(req.Style)
	}
	params := models.Normalize(req, profile, enhanced, negative)

	if profile.RequiresCredential() {
		if _, ok := g.providers[profile.ID]; !ok {
			return nil, core.NewModelConfigError(fmt.Sprintf("model %q is not configured", profile.ID))
		}
	}

	img, usedPlaceholder := g.dispatch(ctx, profile, params)

	dataURL, err := g.processor.Normalize(img, int(*req.Quality))
	if err != nil {
		return nil, fmt.Errorf("imagegen: normalizing output: %w", err)
	}

	result := &Result{
		ID:    uuid.NewString(),
		Image: dataURL,
		Metadata: Metadata{
			Model:          profile.ID,
			Style:          req.Style,
			Prompt:         req.Prompt,
			EnhancedPrompt: enhanced,
			NegativePrompt: negative,
			Parameters:     params.AsMap(),
			Placeholder:    usedPlaceholder,
			EstimatedCost:  profile.PricePerImage,
			Timestamp:      time.Now().UTC(),
		},
	}

	g.logger.Info("generation complete",
		zap.String("id", result.ID),
		zap.String("model", profile.ID),
		zap.String("style", req.Style),
		zap.Bool("placeholder", usedPlaceholder),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// dispatch runs the provider for a profile and falls back to the
// placeholder on any provider or fetch failure.
func (g *Generator) dispatch(ctx context.Context, profile *models.Profile, params models.Params) (*Image, bool) {
	provider, ok := g.providers[profile.ID]
	if !ok {
		// Placeholder-family models land here.
		img, _ := g.placeholder.Generate(ctx, params)
		return img, true
	}

	img, err := provider.Generate(ctx, params)
	if err != nil {
		g.logger.Warn("provider failed, falling back to placeholder",
			zap.String("model", profile.ID),
			zap.Error(err))
		fallback, _ := g.placeholder.Generate(ctx, params)
		return fallback, true
	}

	if img.URL != "" && len(img.Data) == 0 {
		data, mime, err := g.downloader.Fetch(ctx, img.URL)
		if err != nil {
			g.logger.Warn("image fetch failed, falling back to placeholder",
				zap.String("model", profile.ID),
				zap.Error(err))
			fallback, _ := g.placeholder.Generate(ctx, params)
			return fallback, true
		}
		img.Data = data
		if img.MIME == "" {
			img.MIME = mime
		}
	}

	return img, false
}
