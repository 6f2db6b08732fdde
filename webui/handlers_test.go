package webui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"artgen_backend/core"
	"artgen_backend/db"
	"artgen_backend/imagegen"
	"artgen_backend/logging"
	"artgen_backend/models"
	"artgen_backend/prompt"
)

type testServerOption func(*ServerConfig)

func withRateLimit(limit int, window time.Duration) testServerOption {
	return func(cfg *ServerConfig) {
		cfg.RateLimitRequests = limit
		cfg.RateLimitWindow = window
	}
}

func newTestServer(t *testing.T, withStore bool, opts ...testServerOption) *Server {
	t.Helper()

	coreCfg := &core.Config{
		AITimeout:       5 * time.Second,
		DownloadTimeout: 5 * time.Second,
		MaxDownloadSize: 10 * 1024 * 1024,
	}

	styles, err := prompt.LoadRegistry()
	if err != nil {
		t.Fatalf("prompt.LoadRegistry() error = %v", err)
	}
	modelReg, err := models.LoadRegistry()
	if err != nil {
		t.Fatalf("models.LoadRegistry() error = %v", err)
	}
	generator, err := imagegen.NewGenerator(coreCfg, logging.NewNop(), styles, modelReg)
	if err != nil {
		t.Fatalf("imagegen.NewGenerator() error = %v", err)
	}

	var store *db.Store
	if withStore {
		store, err = db.Open(filepath.Join(t.TempDir(), "history.sqlite"), 100, logging.NewNop())
		if err != nil {
			t.Fatalf("db.Open() error = %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}

	cfg := ServerConfig{
		Host:              "localhost",
		Port:              0,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		UploadsDir:        t.TempDir(),
		MaxUploadSize:     1 << 20,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	server, err := NewServer(cfg, generator, store, styles, modelReg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server
}

func generateBody(t *testing.T, req map[string]any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	return bytes.NewReader(data)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body *bytes.Reader) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var parsed map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, parsed
}

func TestGenerateEndpointSuccess(t *testing.T) {
	server := newTestServer(t, false)
	handler := server.Handler()

	rec, resp := doJSON(t, handler, http.MethodPost, "/api/generate", generateBody(t, map[string]any{
		"prompt": "a castle at sunset",
		"model":  "midjourney",
		"width":  64,
		"height": 64,
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if resp["success"] != true {
		t.Error("success = false")
	}
	if resp["id"] == "" || resp["id"] == nil {
		t.Error("response has no id")
	}
	img, _ := resp["image"].(string)
	if !strings.HasPrefix(img, "data:image/jpeg;base64,") {
		t.Errorf("image = %.40q, want JPEG data URL", img)
	}
	metadata, ok := resp["metadata"].(map[string]any)
	if !ok {
		t.Fatal("response has no metadata object")
	}
	if metadata["model"] != "midjourney" || metadata["placeholder"] != true {
		t.Errorf("metadata = %v", metadata)
	}
}

func TestGenerateEndpointValidation(t *testing.T) {
	server := newTestServer(t, false)
	handler := server.Handler()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty prompt", map[string]any{"prompt": ""}},
		{"whitespace prompt", map[string]any{"prompt": "   "}},
		{"quality out of range", map[string]any{"prompt": "x", "quality": 9000}},
		{"non-numeric steps", map[string]any{"prompt": "x", "steps": "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doJSON(t, handler, http.MethodPost, "/api/generate", generateBody(t, tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if resp["error"] != string(core.KindValidation) {
				t.Errorf("error = %v, want %s", resp["error"], core.KindValidation)
			}
		})
	}
}

func TestGenerateEndpointUnconfiguredModel(t *testing.T) {
	server := newTestServer(t, false)
	handler := server.Handler()

	tests := []struct {
		name  string
		model string
	}{
		{"missing credential", "stable-diffusion-xl"},
		{"unknown model", "no-such-model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doJSON(t, handler, http.MethodPost, "/api/generate", generateBody(t, map[string]any{
				"prompt": "a castle",
				"model":  tt.model,
			}))
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			if resp["error"] != string(core.KindModelConfig) {
				t.Errorf("error = %v, want %s", resp["error"], core.KindModelConfig)
			}
		})
	}
}

func TestGenerateEndpointQuota(t *testing.T) {
	server := newTestServer(t, false, withRateLimit(10, time.Minute))
	handler := server.Handler()

	body := map[string]any{"prompt": "x", "model": "midjourney", "width": 32, "height": 32}
	for i := 0; i < 10; i++ {
		rec, _ := doJSON(t, handler, http.MethodPost, "/api/generate", generateBody(t, body))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec, resp := doJSON(t, handler, http.MethodPost, "/api/generate", generateBody(t, body))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("11th request status = %d, want 429", rec.Code)
	}
	if resp["error"] != string(core.KindQuota) {
		t.Errorf("error = %v, want %s", resp["error"], core.KindQuota)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response has no Retry-After header")
	}
}

func TestGenerateEndpointMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, false)

	rec, _ := doJSON(t, server.Handler(), http.MethodGet, "/api/generate", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server := newTestServer(t, true)
	handler := server.Handler()

	body := map[string]any{"prompt": "a castle", "model": "midjourney", "width": 32, "height": 32}
	for i := 0; i < 3; i++ {
		rec, _ := doJSON(t, handler, http.MethodPost, "/api/generate", generateBody(t, body))
		if rec.Code != http.StatusOK {
			t.Fatalf("generate status = %d", rec.Code)
		}
	}

	// Inserts are async; wait for the queue to flush.
	deadline := time.Now().Add(5 * time.Second)
	for server.store.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	var count float64
	deadline = time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, resp := doJSON(t, handler, http.MethodGet, "/api/history", nil)
		count = resp["count"].(float64)
		if count == 3 {
			history := resp["history"].([]any)
			entry := history[0].(map[string]any)
			if entry["model"] != "midjourney" || entry["prompt"] != "a castle" {
				t.Errorf("history entry = %v", entry)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("history count = %v, want 3", count)
}

func TestHistoryEndpointBadLimit(t *testing.T) {
	server := newTestServer(t, true)

	rec, _ := doJSON(t, server.Handler(), http.MethodGet, "/api/history?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	server := newTestServer(t, false)
	handler := server.Handler()

	t.Run("styles", func(t *testing.T) {
		rec, resp := doJSON(t, handler, http.MethodGet, "/api/styles", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		styles := resp["styles"].([]any)
		if len(styles) != 10 {
			t.Errorf("styles count = %d, want 10", len(styles))
		}
	})

	t.Run("models", func(t *testing.T) {
		rec, resp := doJSON(t, handler, http.MethodGet, "/api/models", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		list := resp["models"].([]any)
		if len(list) != 5 {
			t.Errorf("models count = %d, want 5", len(list))
		}
		first := list[0].(map[string]any)
		if _, leaked := first["credentialRef"]; leaked {
			t.Error("model catalog leaks credential references")
		}
	})

	t.Run("presets", func(t *testing.T) {
		rec, resp := doJSON(t, handler, http.MethodGet, "/api/presets", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		presets := resp["presets"].(map[string]any)
		if len(presets) == 0 {
			t.Error("presets are empty")
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, false)

	rec, resp := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %v, want ok", resp["status"])
	}
}

func TestUploadEndpoint(t *testing.T) {
	server := newTestServer(t, false)
	handler := server.Handler()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "test.png")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	if err := png.Encode(part, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	name, _ := resp["filename"].(string)
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("filename = %q, want .png extension", name)
	}
	url, _ := resp["url"].(string)
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %q, want /uploads/ prefix", url)
	}
}

func TestUploadEndpointRejectsNonImage(t *testing.T) {
	server := newTestServer(t, false)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("image", "notes.txt")
	fmt.Fprint(part, "plain text, not an image")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	server := newTestServer(t, false, func(cfg *ServerConfig) {
		cfg.AllowedOrigins = []string{"https://app.example.com"}
	})
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}
