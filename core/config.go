package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config holds all configuration values for the art generation backend.
// It is loaded once at startup from environment variables; the generation
// pipeline consumes this struct and never reads the environment directly.
type Config struct {
	// Server Configuration
	Port                 int
	Host                 string
	DevMode              bool
	AllowedOrigins       []string
	AllowSelfSignedCerts bool
	LogFilePath          string

	// Admission limiting (fixed window per client IP)
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Provider call tuning
	AITimeout       time.Duration
	DownloadTimeout time.Duration
	MaxDownloadSize int64

	// Upload handling
	UploadsDir    string
	MaxUploadSize int64
	PublicDir     string

	// History storage
	DatabasePath    string
	MaxHistoryItems int

	// credentials maps credential reference names (e.g. "STABILITY_API_KEY")
	// to their values as captured at load time. Empty value = unconfigured.
	credentials map[string]string

	// endpointOverrides maps endpoint override reference names
	// (e.g. "SDXL_ENDPOINT") to caller-supplied URLs.
	endpointOverrides map[string]string
}

// credentialRefs lists every credential reference name a model profile may
// declare. Captured eagerly so the pipeline never touches the environment.
var credentialRefs = []string{
	"STABILITY_API_KEY",
	"OPENAI_API_KEY",
	"MIDJOURNEY_API_KEY",
	"CUSTOM_MODEL_API_KEY",
}

// endpointRefs lists every endpoint override reference name.
var endpointRefs = []string{
	"SDXL_ENDPOINT",
	"SD2_ENDPOINT",
	"MIDJOURNEY_ENDPOINT",
	"CUSTOM_MODEL_ENDPOINT",
}

// parseAllowedOrigins parses the ALLOWED_ORIGINS environment variable
// (comma-separated). Returns nil if not set, which callers treat as "*".
func parseAllowedOrigins(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. No variable is strictly required: a deployment with no provider
// credentials still serves placeholder images.
func LoadConfig() (*Config, error) {
	// Capture provider credentials by reference name
	credentials := make(map[string]string, len(credentialRefs))
	for _, ref := range credentialRefs {
		credentials[ref] = os.Getenv(ref)
	}

	// Capture endpoint overrides by reference name
	endpointOverrides := make(map[string]string, len(endpointRefs))
	for _, ref := range endpointRefs {
		endpointOverrides[ref] = os.Getenv(ref)
	}

	// 10 requests per 60s window matches the public deployment quota
	rateLimitRequests := parseIntEnv("RATE_LIMIT_REQUESTS", 10)
	rateLimitWindow := parseDurationEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if rateLimitRequests < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", rateLimitRequests)
	}
	if rateLimitWindow < time.Second {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be at least 1, got %s", rateLimitWindow)
	}

	// 30s provider timeout accommodates slow generation queues without hanging
	aiTimeout := parseDurationEnv("AI_TIMEOUT", 30)
	// Generated-image URLs are short-lived; 60s is plenty for a single fetch
	downloadTimeout := parseDurationEnv("DOWNLOAD_TIMEOUT", 60)
	// 50MB cap prevents a hostile provider response from exhausting memory
	maxDownloadSize := parseInt64Env("MAX_DOWNLOAD_SIZE", 52428800)

	maxUploadSize := parseInt64Env("MAX_UPLOAD_SIZE", 10*1024*1024)

	port := parseIntEnv("PORT", 3000)
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}

	return &Config{
		Port:                 port,
		Host:                 getEnvOrDefault("HOST", ""),
		DevMode:              parseBoolEnv("DEV_MODE", false),
		AllowedOrigins:       parseAllowedOrigins("ALLOWED_ORIGINS"),
		AllowSelfSignedCerts: parseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
		LogFilePath:          getEnvOrDefault("LOG_FILE", "app.log"),

		RateLimitRequests: rateLimitRequests,
		RateLimitWindow:   rateLimitWindow,

		AITimeout:       aiTimeout,
		DownloadTimeout: downloadTimeout,
		MaxDownloadSize: maxDownloadSize,

		UploadsDir:    getEnvOrDefault("UPLOADS_DIR", "./uploads"),
		MaxUploadSize: maxUploadSize,
		PublicDir:     getEnvOrDefault("PUBLIC_DIR", "./public"),

		DatabasePath:    getEnvOrDefault("DATABASE_PATH", "./data/artgen.sqlite"),
		MaxHistoryItems: parseIntEnv("MAX_HISTORY_ITEMS", 100),

		credentials:       credentials,
		endpointOverrides: endpointOverrides,
	}, nil
}

// Credential resolves a credential reference name to its configured value.
// Returns "" when the reference is unknown or the variable was unset,
// which callers treat as "unconfigured".
func (c *Config) Credential(ref string) string {
	if ref == "" {
		return ""
	}
	return c.credentials[ref]
}

// HasCredential reports whether a credential reference resolved to a
// non-empty value at load time.
func (c *Config) HasCredential(ref string) bool {
	return c.Credential(ref) != ""
}

// EndpointOverride resolves an endpoint override reference name to its
// configured URL, or "" when no override was supplied.
func (c *Config) EndpointOverride(ref string) string {
	if ref == "" {
		return ""
	}
	return c.endpointOverrides[ref]
}

// SetCredential overrides a credential value. Intended for tests.
func (c *Config) SetCredential(ref, value string) {
	if c.credentials == nil {
		c.credentials = make(map[string]string)
	}
	c.credentials[ref] = value
}

// SetEndpointOverride overrides an endpoint URL. Intended for tests.
func (c *Config) SetEndpointOverride(ref, url string) {
	if c.endpointOverrides == nil {
		c.endpointOverrides = make(map[string]string)
	}
	c.endpointOverrides[ref] = url
}

// GetHTTPClient returns an HTTP client configured with TLS settings based on
// AllowSelfSignedCerts. This should be used for all requests to external
// provider APIs so the TLS configuration is respected.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with a 30s timeout configured
// with the TLS settings from cfg.
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, 30*time.Second)
}
