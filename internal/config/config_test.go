package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvProvider, EnvModel, EnvEndpoint, EnvHistoryLimit, "GROQ_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", cfg.LLM.Endpoint)
	assert.Equal(t, "mixtral-8x7b-32768", cfg.LLM.Model)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 150, cfg.LLM.MaxTokens)
	assert.Equal(t, 1.0, cfg.LLM.TopP)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, time.Second, cfg.GetNotificationTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDiscoversWorkingDirectoryThenHome(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	homePath := writeFile(t, home, "history_limit: 7\n")

	wd := t.TempDir()
	t.Chdir(wd)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, homePath, cfg.Source)
	assert.Equal(t, 7, cfg.HistoryLimit)

	writeFile(t, wd, "history_limit: 3\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, FileName, cfg.Source)
	assert.Equal(t, 3, cfg.HistoryLimit)
}

func TestLoadExplicitFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), `
llm:
  provider: anthropic
  temperature: 0.2
  max_tokens: 80
  top_p: 0.9
request_timeout: 5s
notification_ttl: 1500ms
server:
  addr: 127.0.0.1:9000
logging:
  level: debug
  file: wizard.log
  json: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "https://api.anthropic.com/v1/messages", cfg.LLM.Endpoint)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 80, cfg.LLM.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 1500*time.Millisecond, cfg.GetNotificationTTL())
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, LoggingConfig{Level: "debug", File: "wizard.log", JSON: true}, cfg.Logging)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "llm: [unterminated\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("provider switch resets provider fields", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, t.TempDir(), "llm:\n  provider: groq\n  model: llama3-8b-8192\n")
		t.Setenv(EnvProvider, "OpenAI")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.LLM.Provider)
		assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
		assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	})

	t.Run("model endpoint and history limit", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, t.TempDir(), "history_limit: 2\n")
		t.Setenv(EnvModel, "llama3-70b-8192")
		t.Setenv(EnvEndpoint, "http://localhost:9999/v1/chat/completions")
		t.Setenv(EnvHistoryLimit, "25")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
		assert.Equal(t, "http://localhost:9999/v1/chat/completions", cfg.LLM.Endpoint)
		assert.Equal(t, 25, cfg.HistoryLimit)
	})

	t.Run("bad history limit", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, t.TempDir(), "")
		t.Setenv(EnvHistoryLimit, "lots")
		_, err := Load(path)
		assert.ErrorContains(t, err, EnvHistoryLimit)
	})
}

func TestAPIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.fillProviderDefaults()
	assert.Empty(t, cfg.APIKey())

	t.Setenv("GROQ_API_KEY", " from-env ")
	assert.Equal(t, "from-env", cfg.APIKey())

	cfg.LLM.APIKey = "from-file"
	assert.Equal(t, "from-file", cfg.APIKey())

	client := cfg.ClientConfig()
	assert.Equal(t, "from-file", client.APIKey)
	assert.Equal(t, "groq", client.Provider)
	assert.Equal(t, 150, client.Sampling.MaxTokens)
}

func TestSetProvider(t *testing.T) {
	cfg := Default()
	cfg.fillProviderDefaults()
	cfg.LLM.Model = "custom"

	cfg.SetProvider("groq")
	assert.Equal(t, "custom", cfg.LLM.Model)

	cfg.SetProvider("anthropic")
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Model)
	assert.Equal(t, "https://api.anthropic.com/v1/messages", cfg.LLM.Endpoint)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "cohere"
	cfg.LLM.Temperature = 3
	cfg.LLM.MaxTokens = 0
	cfg.LLM.TopP = 0
	cfg.HistoryLimit = -1
	cfg.RequestTimeout = "soon"
	cfg.Logging.Level = "chatty"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"invalid llm provider: cohere", "temperature", "max_tokens", "top_p", "history_limit", "request_timeout", "logging level"} {
		assert.ErrorContains(t, err, want)
	}
}
