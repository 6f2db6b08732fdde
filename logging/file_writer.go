package logging

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileWriterConfig controls log file rotation behavior.
type FileWriterConfig struct {
	// MaxSizeMB is the maximum size in megabytes before rotation (default: 100)
	MaxSizeMB int

	// MaxBackups is the maximum number of old log files to retain (default: 5)
	MaxBackups int

	// MaxAgeDays is the maximum number of days to retain old files (default: 30)
	MaxAgeDays int

	// Compress controls gzip compression of rotated files (default: true)
	Compress bool
}

// DefaultFileWriterConfig returns the standard rotation settings.
func DefaultFileWriterConfig() FileWriterConfig {
	return FileWriterConfig{
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// NewFileWriter returns a rotating file WriteSyncer with default settings.
func NewFileWriter(path string) zapcore.WriteSyncer {
	return NewFileWriterWithConfig(path, DefaultFileWriterConfig())
}

// NewFileWriterWithConfig returns a rotating file WriteSyncer with explicit
// rotation settings. Zero-valued fields fall back to defaults.
func NewFileWriterWithConfig(path string, config FileWriterConfig) zapcore.WriteSyncer {
	config = applyFileWriterDefaults(config)

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	})
}

func applyFileWriterDefaults(config FileWriterConfig) FileWriterConfig {
	defaults := DefaultFileWriterConfig()
	if config.MaxSizeMB <= 0 {
		config.MaxSizeMB = defaults.MaxSizeMB
	}
	if config.MaxBackups <= 0 {
		config.MaxBackups = defaults.MaxBackups
	}
	if config.MaxAgeDays <= 0 {
		config.MaxAgeDays = defaults.MaxAgeDays
	}
	return config
}
