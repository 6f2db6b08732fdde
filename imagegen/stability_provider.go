// stability_provider.go implements the adapter for Stability-compatible
// text-to-image endpoints. Both hosted Stability models and self-hosted
// custom endpoints speak the same wire format, so one adapter serves every
// stability-family model.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"artgen_backend/core"
	"artgen_backend/models"
)

// stabilityRequest is the JSON body of a text-to-image call.
type stabilityRequest struct {
	TextPrompts []stabilityTextPrompt `json:"text_prompts"`
	Height      int                   `json:"height,omitempty"`
	Width       int                   `json:"width,omitempty"`
	CFGScale    float64               `json:"cfg_scale,omitempty"`
	Steps       int                   `json:"steps,omitempty"`
	Samples     int                   `json:"samples,omitempty"`
	Seed        int64                 `json:"seed,omitempty"`
	Sampler     string                `json:"sampler,omitempty"`
}

type stabilityTextPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type stabilityResponse struct {
	Artifacts []stabilityArtifact `json:"artifacts"`
}

type stabilityArtifact struct {
	Seed         int64  `json:"seed"`
	Base64       string `json:"base64"`
	FinishReason string `json:"finishReason"`
}

// StabilityProvider calls a Stability-compatible endpoint and decodes the
// base64 artifact it returns.
//
// Thread Safety: StabilityProvider is safe for concurrent use. Each call
// builds its own request.
type StabilityProvider struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewStabilityProvider builds the adapter for one stability-family model.
//
// Returns ErrMissingCredential if the model's credential reference does not
// resolve, and ErrMissingEndpoint if neither the profile nor the environment
// supplies an endpoint. Both are configuration faults detected before any
// network call.
func NewStabilityProvider(cfg *core.Config, profile *models.Profile) (*StabilityProvider, error) {
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
		return nil, fmt.Errorf("%w: model %q", ErrMissingEndpoint, profile.ID)
	}

	return &StabilityProvider{
		client:   core.GetHTTPClient(cfg, cfg.AITimeout),
		endpoint: endpoint,
		apiKey:   apiKey,
	}, nil
}

// Generate posts the parameter set and returns the first decoded artifact.
func (p *StabilityProvider) Generate(ctx context.Context, params models.Params) (*Image, error) {
	body := stabilityRequest{
		TextPrompts: []stabilityTextPrompt{
			{Text: params.Prompt, Weight: 1},
		},
		Height:   params.Height,
		Width:    params.Width,
		CFGScale: params.CFGScale,
		Steps:    params.Steps,
		Samples:  params.Samples,
		Seed:     params.Seed,
	}
	if params.NegativePrompt != "" {
		body.TextPrompts = append(body.TextPrompts, stabilityTextPrompt{
			Text:   params.NegativePrompt,
			Weight: -1,
		})
	}
	if sampler, ok := params.Extra["sampler"].(string); ok {
		body.Sampler = sampler
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: encoding stability request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("imagegen: building stability request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: stability request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("imagegen: stability endpoint returned status %d: %s",
			resp.StatusCode, string(detail))
	}

	var parsed stabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("imagegen: decoding stability response: %w", err)
	}
	if len(parsed.Artifacts) == 0 || parsed.Artifacts[0].Base64 == "" {
		return nil, ErrEmptyResponse
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("imagegen: decoding stability artifact: %w", err)
	}

	return &Image{Data: data, MIME: "image/png"}, nil
}

// Endpoint returns the resolved endpoint URL.
func (p *StabilityProvider) Endpoint() string {
	return p.endpoint
}

// Ensure StabilityProvider implements Provider at compile time.
var _ Provider = (*StabilityProvider)(nil)
