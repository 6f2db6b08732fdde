// server.go contains the Server organism that wires together the HTTP
// surface: API handlers, admission limiting, middleware, and static file
// serving.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"artgen_backend/core"
	"artgen_backend/db"
	"artgen_backend/imagegen"
	"artgen_backend/logging"
	"artgen_backend/models"
	"artgen_backend/prompt"

	"go.uber.org/zap"
)

// ServerConfig configures the Server.
type ServerConfig struct {
	// Host and Port to bind
	Host string
	Port int

	// AllowedOrigins for CORS
	AllowedOrigins []string

	// RateLimitRequests per RateLimitWindow per client on /api/generate
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// UploadsDir and MaxUploadSize for /api/upload
	UploadsDir    string
	MaxUploadSize int64

	// PublicDir is served at the root; empty disables static serving
	PublicDir string

	// ReadTimeout, WriteTimeout, IdleTimeout for the HTTP server
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout for graceful shutdown
	ShutdownTimeout time.Duration

	// LogSkipPaths are request paths excluded from request logging
	LogSkipPaths []string
}

// ServerConfigFromCore derives the server configuration from the
// application config.
func ServerConfigFromCore(cfg *core.Config) ServerConfig {
	return ServerConfig{
		Host:              cfg.Host,
		Port:              cfg.Port,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		UploadsDir:        cfg.UploadsDir,
		MaxUploadSize:     cfg.MaxUploadSize,
		PublicDir:         cfg.PublicDir,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
		LogSkipPaths:      []string{"/health"},
	}
}

// Server is the HTTP organism. It wires together:
//   - imagegen.Generator for the generation pipeline
//   - db.Store for history (optional, may be nil)
//   - AdmissionLimiter on the generate endpoint
//   - Logging and security middleware
//   - Static serving for the public directory and uploads
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	logger     *logging.Logger

	generator *imagegen.Generator
	store     *db.Store
	styles    *prompt.Registry
	models    *models.Registry
	limiter   *AdmissionLimiter
}

// NewServer creates a configured server. store may be nil when history is
// disabled.
func NewServer(
	config ServerConfig,
	generator *imagegen.Generator,
	store *db.Store,
	styles *prompt.Registry,
	modelReg *models.Registry,
	logger *logging.Logger,
) (*Server, error) {
	if generator == nil {
		return nil, fmt.Errorf("webui: generator cannot be nil")
	}
	if styles == nil || modelReg == nil {
		return nil, fmt.Errorf("webui: registries cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if config.RateLimitRequests <= 0 {
		config.RateLimitRequests = 10
	}
	if config.RateLimitWindow <= 0 {
		config.RateLimitWindow = time.Minute
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		logger:    logger.Named("webui"),
		generator: generator,
		store:     store,
		styles:    styles,
		models:    modelReg,
		limiter:   NewAdmissionLimiter(config.RateLimitRequests, config.RateLimitWindow),
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	s.logger.Info("server created",
		zap.String("addr", addr),
		zap.Int("rate_limit", config.RateLimitRequests),
		zap.Duration("rate_window", config.RateLimitWindow),
		zap.Bool("history_enabled", store != nil))
	return s, nil
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/styles", s.handleStyles)
	s.mux.HandleFunc("/api/models", s.handleModels)
	s.mux.HandleFunc("/api/presets", s.handlePresets)
	s.mux.HandleFunc("/api/upload", s.handleUpload)

	if s.config.UploadsDir != "" {
		s.mux.Handle("/uploads/",
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.config.UploadsDir))))
	}
	if s.config.PublicDir != "" {
		if _, err := os.Stat(s.config.PublicDir); err == nil {
			s.mux.Handle("/", http.FileServer(http.Dir(s.config.PublicDir)))
		} else {
			s.logger.Warn("public directory missing, static serving disabled",
				zap.String("dir", s.config.PublicDir))
		}
	}
}

// rootHandler wraps the mux with the middleware chain.
func (s *Server) rootHandler() http.Handler {
	var handler http.Handler = s.mux
	handler = NewSecurityMiddleware(s.config.AllowedOrigins).Handler(handler)
	handler = NewLoggingMiddleware(s.logger, s.config.LogSkipPaths).Handler(handler)
	return handler
}

// Start begins serving and blocks until the server is shut down. The
// limiter cleanup ticker runs until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.limiter.StartCleanupTicker(ctx, 5*time.Minute)

	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webui: http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webui: http shutdown error: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Addr returns the server's bind address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.rootHandler()
}
