// Package openai implements port.Completer on the OpenAI Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"docworker/internal/config"
	"docworker/internal/port"
	"docworker/internal/provider"
)

const defaultModel = "gpt-4o-mini"

// Completer sends single-turn chat completions to OpenAI or a compatible endpoint.
type Completer struct {
	client openai.Client
	model  string
}

// NewCompleter creates an OpenAI completer. cfg.Endpoint overrides the API base URL.
func NewCompleter(cfg *config.ProviderConfig) *Completer {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout(120 * time.Second)}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &Completer{client: openai.NewClient(opts...), model: model}
}

func (c *Completer) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("openai: response truncated at %d tokens", req.MaxTokens)
	}
	return resp.Choices[0].Message.Content, nil
}

func convertError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return provider.NewRateLimitError("openai", err, provider.RetryAfterFromResponse(apiErr.Response))
	}
	return fmt.Errorf("openai chat completion: %w", err)
}

var _ port.Completer = (*Completer)(nil)
