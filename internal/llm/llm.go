package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Supported completion providers.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 150
	defaultTopP        = 1.0
)

const defaultLLMHTTPTimeout = time.Minute

// Prompt is the two-message conversation sent to the completion endpoint.
type Prompt struct {
	System string
	User   string
}

// Sampling holds the generation parameters attached to every request.
type Sampling struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// DefaultSampling returns temperature 0.7, 150 output tokens and top-p 1.
func DefaultSampling() Sampling {
	return Sampling{
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		TopP:        defaultTopP,
	}
}

// ProviderDefaults describes where a provider lives when the config is silent.
type ProviderDefaults struct {
	Endpoint  string
	Model     string
	APIKeyEnv string
}

var providerDefaults = map[string]ProviderDefaults{
	ProviderGroq: {
		Endpoint:  "https://api.groq.com/openai/v1/chat/completions",
		Model:     "mixtral-8x7b-32768",
		APIKeyEnv: "GROQ_API_KEY",
	},
	ProviderOpenAI: {
		Endpoint:  "https://api.openai.com/v1/chat/completions",
		Model:     "gpt-4o-mini",
		APIKeyEnv: "OPENAI_API_KEY",
	},
	ProviderAnthropic: {
		Endpoint:  "https://api.anthropic.com/v1/messages",
		Model:     "claude-3-5-haiku-latest",
		APIKeyEnv: "ANTHROPIC_API_KEY",
	},
}

// DefaultsFor reports the endpoint, model and credential variable of a provider.
func DefaultsFor(provider string) (ProviderDefaults, bool) {
	d, ok := providerDefaults[strings.ToLower(strings.TrimSpace(provider))]
	return d, ok
}

// Config describes how to build a completion client.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	Sampling   Sampling
	HTTPClient *http.Client
}

// Client issues a single completion request per call.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}

// New builds the client for cfg.Provider, filling unset fields from the provider defaults.
func New(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGroq
	}
	defaults, ok := providerDefaults[provider]
	if !ok {
		return nil, fmt.Errorf("llm provider %q not supported", cfg.Provider)
	}
	cfg.Provider = provider
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Sampling == (Sampling{}) {
		cfg.Sampling = DefaultSampling()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s api key missing; set %s", provider, defaults.APIKeyEnv)
	}

	switch provider {
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return newOpenAIClient(cfg), nil
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}

// baseURL turns a full endpoint URL into the SDK base by dropping the operation path.
func baseURL(endpoint, operation string) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	base = strings.TrimSuffix(base, operation)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
