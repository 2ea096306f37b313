package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/csheth/captionwizard/internal/config"
)

// isolate points config discovery and provider credentials at an empty sandbox.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{
		config.EnvProvider, config.EnvModel, config.EnvEndpoint, config.EnvHistoryLimit,
		"GROQ_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func parsed(t *testing.T, args ...string) (*cobra.Command, *globalFlags) {
	t.Helper()
	flags := &globalFlags{}
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, flags
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)
	cmd, flags := parsed(t)

	cfg, err := loadConfig(cmd, flags)
	require.NoError(t, err)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Zero(t, cfg.HistoryLimit)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(file, []byte("llm:\n  provider: groq\n  model: file-model\nhistory_limit: 3\n"), 0o644))

	cmd, flags := parsed(t, "--provider", "OpenAI", "--history-limit", "7")
	cfg, err := loadConfig(cmd, flags)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv, "switching provider resets its credential variable")
	assert.Equal(t, 7, cfg.HistoryLimit)
	assert.Equal(t, config.FileName, cfg.Source)
}

func TestLoadConfigUnsetFlagsKeepFileValues(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("llm:\n  model: file-model\nhistory_limit: 3\n"), 0o644))

	cmd, flags := parsed(t, "--log-level", "debug")
	cfg, err := loadConfig(cmd, flags)
	require.NoError(t, err)

	assert.Equal(t, "file-model", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.HistoryLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	isolate(t)

	cmd, flags := parsed(t, "--provider", "carrier-pigeon")
	_, err := loadConfig(cmd, flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	cmd, flags = parsed(t, "--config", "missing.yaml")
	_, err = loadConfig(cmd, flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestBuildSessionWithoutCredentials(t *testing.T) {
	isolate(t)
	cfg := config.Default()

	sess, hint := buildSession(cfg, zap.NewNop())
	assert.False(t, sess.Available())
	assert.Equal(t, "Groq api key missing; set GROQ_API_KEY.", hint)
}

func TestBuildSessionWithCredentials(t *testing.T) {
	isolate(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")
	cfg := config.Default()
	cfg.HistoryLimit = 2

	sess, hint := buildSession(cfg, zap.NewNop())
	assert.True(t, sess.Available())
	assert.Empty(t, hint)
	assert.Contains(t, sess.ProviderName(), "groq")
}

func TestPrintOptionsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printOptions(&buf, false))

	out := buf.String()
	for _, want := range []string{"tones:", "audiences:", "platforms:", "witty", "Witty"} {
		assert.Contains(t, out, want)
	}
}

func TestOptionsCommandJSON(t *testing.T) {
	isolate(t)
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"options", "--json"})
	require.NoError(t, root.Execute())

	var groups []struct {
		Name    string `json:"name"`
		Options []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &groups))
	require.Len(t, groups, 3)
	assert.Equal(t, "tones", groups[0].Name)
	assert.NotEmpty(t, groups[2].Options)
}

func TestServeCommandNeedsProvider(t *testing.T) {
	isolate(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve", "--log-level", "error"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve needs a completion provider")
}

func TestServeStopsOnCancel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, "127.0.0.1:0", handler, zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
