// Package config loads the YAML settings file and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/csheth/captionwizard/internal/llm"
)

// FileName is the settings file looked up in the working directory and then in $HOME.
const FileName = ".captionwizard.yaml"

// Environment variables that override file values.
const (
	EnvProvider     = "CAPTIONWIZARD_PROVIDER"
	EnvModel        = "CAPTIONWIZARD_MODEL"
	EnvEndpoint     = "CAPTIONWIZARD_ENDPOINT"
	EnvHistoryLimit = "CAPTIONWIZARD_HISTORY_LIMIT"
)

// Config holds all Caption Wizard settings.
type Config struct {
	LLM             LLMConfig     `yaml:"llm"`
	RequestTimeout  string        `yaml:"request_timeout"`
	HistoryLimit    int           `yaml:"history_limit"`
	NotificationTTL string        `yaml:"notification_ttl"`
	Server          ServerConfig  `yaml:"server"`
	Logging         LoggingConfig `yaml:"logging"`

	// Source is the file the values were read from, empty when only defaults apply.
	Source string `yaml:"-"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // groq, openai, anthropic
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopP        float64 `yaml:"top_p"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in settings.
func Default() *Config {
	sampling := llm.DefaultSampling()
	return &Config{
		LLM: LLMConfig{
			Provider:    llm.ProviderGroq,
			Temperature: sampling.Temperature,
			MaxTokens:   sampling.MaxTokens,
			TopP:        sampling.TopP,
		},
		RequestTimeout:  "30s",
		NotificationTTL: "1s",
		Server:          ServerConfig{Addr: ":8080"},
		Logging:         LoggingConfig{Level: "info"},
	}
}

// Load reads path, or the first settings file found in the working directory and then
// $HOME when path is empty, and applies environment overrides. A missing implicit file
// yields the defaults; a missing explicit one is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = discover()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.Source = path
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillProviderDefaults()
	return cfg, nil
}

func discover() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homePath := filepath.Join(home, FileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath
	}
	return ""
}

func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		if !strings.EqualFold(v, c.LLM.Provider) {
			// Endpoint, model and key variable belong to the previous provider.
			c.LLM.Endpoint = ""
			c.LLM.Model = ""
			c.LLM.APIKeyEnv = ""
		}
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.LLM.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		c.LLM.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHistoryLimit, v, err)
		}
		c.HistoryLimit = n
	}
	return nil
}

// fillProviderDefaults fills the endpoint, model and key variable the file left empty.
func (c *Config) fillProviderDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = llm.ProviderGroq
	}
	d, ok := llm.DefaultsFor(c.LLM.Provider)
	if !ok {
		return
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = d.Endpoint
	}
	if c.LLM.Model == "" {
		c.LLM.Model = d.Model
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = d.APIKeyEnv
	}
}

// SetProvider switches provider and resets the provider-bound fields to its defaults.
func (c *Config) SetProvider(provider string) {
	if strings.EqualFold(provider, c.LLM.Provider) {
		return
	}
	c.LLM.Provider = provider
	c.LLM.Endpoint = ""
	c.LLM.Model = ""
	c.LLM.APIKeyEnv = ""
	c.fillProviderDefaults()
}

// APIKey returns the configured key, falling back to the provider's key variable.
func (c *Config) APIKey() string {
	if key := strings.TrimSpace(c.LLM.APIKey); key != "" {
		return key
	}
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.LLM.APIKeyEnv))
}

// ClientConfig converts the settings into an llm.Config.
func (c *Config) ClientConfig() llm.Config {
	return llm.Config{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		Endpoint: c.LLM.Endpoint,
		APIKey:   c.APIKey(),
		Sampling: llm.Sampling{
			Temperature: c.LLM.Temperature,
			MaxTokens:   c.LLM.MaxTokens,
			TopP:        c.LLM.TopP,
		},
	}
}

// GetRequestTimeout returns the completion timeout, 30s when unset or invalid.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, 30*time.Second)
}

// GetNotificationTTL returns how long acknowledgments stay visible.
func (c *Config) GetNotificationTTL() time.Duration {
	return parseDuration(c.NotificationTTL, time.Second)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := llm.DefaultsFor(c.LLM.Provider); !ok {
		errs = append(errs, fmt.Errorf("invalid llm provider: %s (valid: %s, %s, %s)",
			c.LLM.Provider, llm.ProviderGroq, llm.ProviderOpenAI, llm.ProviderAnthropic))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %.2f out of range [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.TopP <= 0 || c.LLM.TopP > 1 {
		errs = append(errs, fmt.Errorf("top_p %.2f out of range (0, 1]", c.LLM.TopP))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit))
	}
	for name, raw := range map[string]string{"request_timeout": c.RequestTimeout, "notification_ttl": c.NotificationTTL} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s %q is not a positive duration", name, raw))
		}
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("logging level: %w", err))
		}
	}
	return errors.Join(errs...)
}
