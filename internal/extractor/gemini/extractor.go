package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"google.golang.org/genai"

	"docworker/internal/config"
	"docworker/internal/domain"
	"docworker/internal/port"
	"docworker/internal/provider"
)

const (
	defaultModel = "gemini-2.0-flash"

	extractionPrompt = `Transcribe all readable text in this document exactly as it appears.
Preserve reading order and paragraph breaks. Do not summarize, translate, or add commentary.
If the document contains no readable text, respond with an empty message.`
)

var supportedContentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

// Extractor implements port.TextExtractor by asking a Gemini model to transcribe the document.
type Extractor struct {
	client *genai.Client
	model  string
}

// NewExtractor creates a Gemini-based extractor. cfg.Endpoint overrides the API base URL.
func NewExtractor(cfg *config.ProviderConfig) (*Extractor, error) {
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
	return &Extractor{client: client, model: model}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	if !slices.Contains(supportedContentTypes, input.ContentType) {
		return "", fmt.Errorf("gemini: %s: %w", input.ContentType, domain.ErrUnsupportedContent)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(input.Content, input.ContentType),
			genai.NewPartFromText(extractionPrompt),
		}, genai.RoleUser),
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return "", convertError(err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return provider.NewRateLimitError("gemini", err, 0)
	}
	return fmt.Errorf("gemini generate content: %w", err)
}
