package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIClient talks to any OpenAI-compatible chat/completions endpoint (Groq included).
type openAIClient struct {
	provider string
	model    string
	sampling Sampling
	client   openai.Client
}

func newOpenAIClient(cfg Config) *openAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL(cfg.Endpoint, "chat/completions")),
		option.WithHTTPClient(pickHTTPClient(cfg.HTTPClient)),
		// One attempt per user action; a failed generation needs an explicit resubmit.
		option.WithMaxRetries(0),
		option.WithJSONSet("stream", false),
	}
	return &openAIClient{
		provider: cfg.Provider,
		model:    cfg.Model,
		sampling: cfg.Sampling,
		client:   openai.NewClient(opts...),
	}
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("%s (%s)", c.provider, c.model)
}

func (c *openAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	var failure errorBody
	capture := option.WithMiddleware(func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if err == nil {
			failure.capture(resp)
		}
		return resp, err
	})
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(c.sampling.Temperature),
		MaxTokens:   openai.Int(int64(c.sampling.MaxTokens)),
		TopP:        openai.Float(c.sampling.TopP),
	}, capture)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", failure.requestFailed(apiErr.StatusCode, apiErr.RawJSON())
		}
		return "", &TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &TransportError{Err: errNoChoices}
	}
	return resp.Choices[0].Message.Content, nil
}
