// Package gemini implements port.Completer on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"docworker/internal/config"
	"docworker/internal/port"
	"docworker/internal/provider"
)

const defaultModel = "gemini-2.0-flash"

// Completer sends single-turn requests to a Gemini model.
type Completer struct {
	client *genai.Client
	model  string
}

// NewCompleter creates a Gemini completer. cfg.Endpoint overrides the API base URL.
func NewCompleter(cfg *config.ProviderConfig) (*Completer, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout(120 * time.Second)},
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions.BaseURL = cfg.Endpoint
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Completer{client: client, model: model}, nil
}

func (c *Completer) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	gc := &genai.GenerateContentConfig{}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", convertError(err)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("gemini: response truncated at %d tokens", req.MaxTokens)
	}
	return resp.Text(), nil
}

func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return provider.NewRateLimitError("gemini", err, 0)
	}
	return fmt.Errorf("gemini generate content: %w", err)
}

var _ port.Completer = (*Completer)(nil)
