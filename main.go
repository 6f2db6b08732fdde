package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"artgen_backend/core"
	"artgen_backend/db"
	"artgen_backend/imagegen"
	"artgen_backend/logging"
	"artgen_backend/models"
	"artgen_backend/prompt"
	"artgen_backend/shutdown"
	"artgen_backend/webui"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	appName    = "ArtGen Backend"
	appVersion = "1.0.0"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Best effort; production deployments set real environment variables
	_ = godotenv.Load()

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return core.ExitCodeError
	}

	logger, err := logging.NewLogger(cfg.DevMode, cfg.LogFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}

	report := core.NewStartupReport()
	report.Pass("config", fmt.Sprintf("listening on %s:%d", cfg.Host, cfg.Port))

	styles, err := prompt.LoadRegistry()
	if err != nil {
		report.Fail("styles", err.Error())
		report.Print(appName, appVersion)
		logger.Error("style registry failed to load", zap.Error(err))
		return core.ExitCodeError
	}
	report.Pass("styles", fmt.Sprintf("%d styles loaded", len(styles.Styles())))

	modelReg, err := models.LoadRegistry()
	if err != nil {
		report.Fail("models", err.Error())
		report.Print(appName, appVersion)
		logger.Error("model registry failed to load", zap.Error(err))
		return core.ExitCodeError
	}

	store, err := db.Open(cfg.DatabasePath, cfg.MaxHistoryItems, logger)
	if err != nil {
		// History is a convenience feature; generation works without it
		report.Warn("history", fmt.Sprintf("database unavailable: %v", err))
		logger.Warn("history store disabled", zap.Error(err))
		store = nil
	} else {
		report.Pass("history", fmt.Sprintf("database at %s", cfg.DatabasePath))
	}

	generator, err := imagegen.NewGenerator(cfg, logger, styles, modelReg)
	if err != nil {
		report.Fail("generator", err.Error())
		report.Print(appName, appVersion)
		logger.Error("generator failed to initialize", zap.Error(err))
		return core.ExitCodeError
	}
	reportModels(report, modelReg, generator)

	server, err := webui.NewServer(webui.ServerConfigFromCore(cfg), generator, store, styles, modelReg, logger)
	if err != nil {
		report.Fail("server", err.Error())
		report.Print(appName, appVersion)
		logger.Error("server failed to initialize", zap.Error(err))
		return core.ExitCodeError
	}

	report.Print(appName, appVersion)
	if report.Failed() {
		return core.ExitCodeError
	}

	manager := shutdown.NewManager(logger)
	ctx := manager.Start()

	// Server stops accepting first, then the write queue drains, then logs flush
	manager.Register("http-server", 10, server.Shutdown)
	if store != nil {
		manager.Register("history-store", 20, func(ctx context.Context) error {
			return store.Close()
		})
	}
	manager.Register("logger", 30, func(ctx context.Context) error {
		return logger.Sync()
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	exitCode := core.ExitCodeSuccess
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	}

	manager.Shutdown()
	return exitCode
}

// reportModels summarizes which models can reach a real provider. Models
// without credentials stay listed but fall back to placeholder output.
func reportModels(report *core.StartupReport, reg *models.Registry, gen *imagegen.Generator) {
	var ready, placeholder []string
	for _, p := range reg.Profiles() {
		if gen.Dispatchable(p.ID) {
			ready = append(ready, p.ID)
		} else {
			placeholder = append(placeholder, p.ID)
		}
	}

	if len(ready) > 0 {
		report.Pass("providers", strings.Join(ready, ", "))
	}
	if len(placeholder) > 0 {
		report.Warn("providers", fmt.Sprintf("placeholder only: %s", strings.Join(placeholder, ", ")))
	}
}
