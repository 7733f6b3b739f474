// Package claude implements port.Completer on the Anthropic Messages API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docworker/internal/config"
	"docworker/internal/port"
	"docworker/internal/provider"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
)

// Completer sends single-turn requests to Claude.
type Completer struct {
	client anthropic.Client
	model  string
}

// NewCompleter creates a Claude completer. cfg.Endpoint overrides the API base URL.
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

	return &Completer{client: anthropic.NewClient(opts...), model: model}
}

func (c *Completer) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", convertError(err)
	}
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return "", fmt.Errorf("claude: response truncated at %d tokens", maxTokens)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

func convertError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return provider.NewRateLimitError("claude", err, provider.RetryAfterFromResponse(apiErr.Response))
	}
	return fmt.Errorf("claude messages: %w", err)
}

var _ port.Completer = (*Completer)(nil)
