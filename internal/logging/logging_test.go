package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/csheth/captionwizard/internal/config"
)

func TestNewDiscardsWithoutFile(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "debug"}, Discard)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewWritesFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wizard.log")
	logger, err := New(config.LoggingConfig{Level: "warn", File: path, JSON: true}, Discard)
	require.NoError(t, err)

	logger.Info("hidden entry")
	logger.Warn("caption generation failed", zap.String("platform", "instagram"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"caption generation failed"`)
	assert.Contains(t, out, `"platform":"instagram"`)
	assert.NotContains(t, out, "hidden entry")
}

func TestNewStderrFallback(t *testing.T) {
	logger, err := New(config.LoggingConfig{}, Stderr)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty", File: filepath.Join(t.TempDir(), "x.log")}, Discard)
	assert.ErrorContains(t, err, "log level")
}
