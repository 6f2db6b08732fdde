package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"artgen_backend/core"
	"artgen_backend/models"
)

func testConfig() *core.Config {
	return &core.Config{
		AITimeout:       5 * time.Second,
		DownloadTimeout: 5 * time.Second,
		MaxDownloadSize: 10 * 1024 * 1024,
	}
}

func stabilityProfile(endpoint string) *models.Profile {
	return &models.Profile{
		ID:            "stable-diffusion-xl",
		Family:        models.FamilyStability,
		Endpoint:      endpoint,
		CredentialRef: "STABILITY_API_KEY",
	}
}

func TestNewStabilityProviderRequiresCredential(t *testing.T) {
	cfg := testConfig()

	_, err := NewStabilityProvider(cfg, stabilityProfile("https://example.test"))
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("error = %v, want ErrMissingCredential", err)
	}
}

func TestNewStabilityProviderRequiresEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.SetCredential("STABILITY_API_KEY", "sk-test")

	_, err := NewStabilityProvider(cfg, stabilityProfile(""))
	if !errors.Is(err, ErrMissingEndpoint) {
		t.Errorf("error = %v, want ErrMissingEndpoint", err)
	}
}

func TestStabilityProviderEndpointOverrideWins(t *testing.T) {
	cfg := testConfig()
	cfg.SetCredential("STABILITY_API_KEY", "sk-test")
	cfg.SetEndpointOverride("SDXL_ENDPOINT", "https://override.test")

	profile := stabilityProfile("https://default.test")
	profile.EndpointRef = "SDXL_ENDPOINT"

	p, err := NewStabilityProvider(cfg, profile)
	if err != nil {
		t.Fatalf("NewStabilityProvider() error = %v", err)
	}
	if p.Endpoint() != "https://override.test" {
		t.Errorf("endpoint = %q, want the override", p.Endpoint())
	}
}

func TestStabilityProviderGenerate(t *testing.T) {
	artifact := []byte("fake png bytes")
	var gotRequest stabilityRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(stabilityResponse{
			Artifacts: []stabilityArtifact{{
				Seed:   42,
				Base64: base64.StdEncoding.EncodeToString(artifact),
			}},
		})
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.SetCredential("STABILITY_API_KEY", "sk-test")
	p, err := NewStabilityProvider(cfg, stabilityProfile(server.URL))
	if err != nil {
		t.Fatalf("NewStabilityProvider() error = %v", err)
	}

	img, err := p.Generate(context.Background(), models.Params{
		Prompt:         "a castle",
		NegativePrompt: "blurry",
		Width:          1024,
		Height:         1024,
		CFGScale:       7,
		Steps:          30,
		Samples:        1,
		Seed:           42,
		Extra:          map[string]any{"sampler": "K_DPMPP_2M"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
	if len(gotRequest.TextPrompts) != 2 {
		t.Fatalf("text_prompts count = %d, want 2", len(gotRequest.TextPrompts))
	}
	if gotRequest.TextPrompts[0].Text != "a castle" || gotRequest.TextPrompts[0].Weight != 1 {
		t.Errorf("positive prompt = %+v", gotRequest.TextPrompts[0])
	}
	if gotRequest.TextPrompts[1].Text != "blurry" || gotRequest.TextPrompts[1].Weight != -1 {
		t.Errorf("negative prompt = %+v", gotRequest.TextPrompts[1])
	}
	if gotRequest.Sampler != "K_DPMPP_2M" {
		t.Errorf("sampler = %q, want K_DPMPP_2M", gotRequest.Sampler)
	}
	if gotRequest.Seed != 42 || gotRequest.Steps != 30 {
		t.Errorf("seed/steps = %d/%d, want 42/30", gotRequest.Seed, gotRequest.Steps)
	}

	if string(img.Data) != string(artifact) {
		t.Error("artifact bytes were not decoded verbatim")
	}
	if img.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", img.MIME)
	}
}

func TestStabilityProviderGenerateOmitsEmptyNegative(t *testing.T) {
	var gotRequest stabilityRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotRequest)
		json.NewEncoder(w).Encode(stabilityResponse{
			Artifacts: []stabilityArtifact{{Base64: base64.StdEncoding.EncodeToString([]byte("x"))}},
		})
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.SetCredential("STABILITY_API_KEY", "sk-test")
	p, _ := NewStabilityProvider(cfg, stabilityProfile(server.URL))

	if _, err := p.Generate(context.Background(), models.Params{Prompt: "x"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(gotRequest.TextPrompts) != 1 {
		t.Errorf("text_prompts count = %d, want 1 when negative is empty", len(gotRequest.TextPrompts))
	}
}

func TestStabilityProviderGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exhausted", http.StatusTooManyRequests)
		}},
		{"empty artifacts", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(stabilityResponse{})
		}},
		{"invalid base64", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(stabilityResponse{
				Artifacts: []stabilityArtifact{{Base64: "!!!not-base64!!!"}},
			})
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			cfg := testConfig()
			cfg.SetCredential("STABILITY_API_KEY", "sk-test")
			p, err := NewStabilityProvider(cfg, stabilityProfile(server.URL))
			if err != nil {
				t.Fatalf("NewStabilityProvider() error = %v", err)
			}

			if _, err := p.Generate(context.Background(), models.Params{Prompt: "x"}); err == nil {
				t.Error("Generate() succeeded, want error")
			}
		})
	}
}
