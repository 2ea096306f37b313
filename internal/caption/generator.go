package caption

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/csheth/captionwizard/internal/llm"
)

const unknownErrorText = "An unknown error occurred. Please try again."

// Generator turns a completed form into a caption with a single completion request.
type Generator struct {
	client  llm.Client
	timeout time.Duration
}

// NewGenerator wraps client. A positive timeout bounds requests whose context has no deadline.
func NewGenerator(client llm.Client, timeout time.Duration) (*Generator, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	return &Generator{client: client, timeout: timeout}, nil
}

// Name reports the backing provider and model.
func (g *Generator) Name() string {
	return g.client.Name()
}

// Generate builds the prompt, sends it and normalizes the answer.
func (g *Generator) Generate(ctx context.Context, form FormState) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	raw, err := g.client.Complete(ctx, BuildPrompt(form))
	if err != nil {
		return "", err
	}
	return Normalize(raw, form.IncludeHashtags), nil
}

// DisplayText converts a generation error into the text shown in place of a caption.
func DisplayText(err error) string {
	if err == nil {
		return ""
	}
	var failed *llm.RequestFailedError
	if errors.As(err, &failed) {
		return "Error: " + failed.Error()
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return unknownErrorText
	}
	return "Error: " + msg
}
