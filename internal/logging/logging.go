// Package logging builds the zap logger from the logging settings.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/csheth/captionwizard/internal/config"
)

// Fallback picks the destination used when no log file is configured.
type Fallback int

const (
	// Discard drops every entry; the terminal UI owns stdout and stderr.
	Discard Fallback = iota
	// Stderr writes entries to standard error.
	Stderr
)

// New returns a logger writing to cfg.File, or to the fallback destination.
func New(cfg config.LoggingConfig, fallback Fallback) (*zap.Logger, error) {
	if cfg.File == "" && fallback == Discard {
		return zap.NewNop(), nil
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	if cfg.JSON {
		zcfg.Encoding = "json"
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.Sampling = nil

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	zcfg.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		zcfg.OutputPaths = []string{cfg.File}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
