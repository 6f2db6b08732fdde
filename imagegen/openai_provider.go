// openai_provider.go implements the adapter for OpenAI DALL-E models.
// Unlike the stability adapter, DALL-E returns a temporary hosted URL that
// the pipeline fetches afterwards.
package imagegen

import (
	"context"
	"fmt"

	"artgen_backend/core"
	"artgen_backend/models"

	"github.com/sashabaranov/go-openai"
)

// DALLEProvider implements Provider for OpenAI image generation.
//
// Thread Safety: DALLEProvider is safe for concurrent use. The underlying
// OpenAI client handles connection pooling.
type DALLEProvider struct {
	client *openai.Client
	model  string
}

// NewDALLEProvider builds the adapter for one openai-family model.
// Returns ErrMissingCredential if the model's credential reference does not
// resolve; the check happens before any network call.
func NewDALLEProvider(cfg *core.Config, profile *models.Profile) (*DALLEProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	if profile == nil {
		return nil, fmt.Errorf("imagegen: model profile cannot be nil")
	}

	apiKey := cfg.Credential(profile.CredentialRef)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, profile.CredentialRef)
	}

	endpoint := cfg.EndpointOverride(profile.EndpointRef)
	if endpoint == "" {
		endpoint = profile.Endpoint
	}
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = endpoint
	clientConfig.HTTPClient = core.GetHTTPClient(cfg, cfg.AITimeout)

	model := "dall-e-3"
	if m, ok := profile.DefaultParams["model"].(string); ok && m != "" {
		model = m
	}

	return &DALLEProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Generate creates an image and returns its temporary hosted URL.
// DALL-E URLs expire after about an hour, so the caller fetches promptly.
func (p *DALLEProvider) Generate(ctx context.Context, params models.Params) (*Image, error) {
	req := openai.ImageRequest{
		Prompt:         params.Prompt,
		Model:          p.model,
		Size:           p.sizeFor(params),
		ResponseFormat: openai.CreateImageResponseFormatURL,
		N:              1,
	}
	if quality, ok := params.Extra["quality"].(string); ok && quality != "" {
		req.Quality = quality
	}
	if p.model == "dall-e-3" {
		req.Style = openai.CreateImageStyleVivid
	}

	response, err := p.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: DALL-E generation failed: %w", err)
	}
	if len(response.Data) == 0 || response.Data[0].URL == "" {
		return nil, ErrEmptyResponse
	}

	return &Image{URL: response.Data[0].URL}, nil
}

// sizeFor maps normalized dimensions onto the fixed sizes DALL-E accepts.
// A model-default size string wins over inferred dimensions.
func (p *DALLEProvider) sizeFor(params models.Params) string {
	if size, ok := params.Extra["size"].(string); ok && size != "" {
		return size
	}
	switch {
	case params.Width > params.Height:
		return "1792x1024"
	case params.Height > params.Width:
		return "1024x1792"
	default:
		return "1024x1024"
	}
}

// Model returns the configured image model name.
func (p *DALLEProvider) Model() string {
	return p.model
}

// Ensure DALLEProvider implements Provider at compile time.
var _ Provider = (*DALLEProvider)(nil)
