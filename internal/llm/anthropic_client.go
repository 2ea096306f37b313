package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicClient struct {
	model    string
	sampling Sampling
	client   anthropic.Client
}

func newAnthropicClient(cfg Config) *anthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL(cfg.Endpoint, "v1/messages")),
		option.WithHTTPClient(pickHTTPClient(cfg.HTTPClient)),
		option.WithMaxRetries(0),
	)
	return &anthropicClient{
		model:    cfg.Model,
		sampling: cfg.Sampling,
		client:   client,
	}
}

func (c *anthropicClient) Name() string {
	return fmt.Sprintf("anthropic (%s)", c.model)
}

func (c *anthropicClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	var failure errorBody
	capture := option.WithMiddleware(func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if err == nil {
			failure.capture(resp)
		}
		return resp, err
	})
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.sampling.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: prompt.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
		Temperature: anthropic.Float(c.sampling.Temperature),
	}
	// Recent models reject temperature and top_p together; 1 is the server default.
	if c.sampling.TopP != 1 {
		params.TopP = anthropic.Float(c.sampling.TopP)
	}
	resp, err := c.client.Messages.New(ctx, params, capture)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", failure.requestFailed(apiErr.StatusCode, apiErr.RawJSON())
		}
		return "", &TransportError{Err: err}
	}

	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}
	if output.Len() == 0 {
		return "", &TransportError{Err: errNoChoices}
	}
	return output.String(), nil
}
