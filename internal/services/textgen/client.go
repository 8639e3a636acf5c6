// Package textgen wraps the chat completion API used to write article bodies
// and turns raw model output into structured article documents.
package textgen

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"inkwell/internal/config"
	"inkwell/internal/services"
)

// Completer produces raw model text for a prompt. Satisfied by Client and by
// test stubs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewClient constructs a text generation client from configuration.
func NewClient(cfg config.TextGen) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "textgen", "new", "api key required", nil)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Complete sends a single-user-message chat completion and returns the text
// of the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "textgen", "complete", "prompt required", nil)
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "textgen", "complete", "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrExternalService, "textgen", "complete", "empty choices", errors.New("no content"))
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrExternalService, "textgen", "complete", "empty content", errors.New("no content"))
	}
	return content, nil
}
