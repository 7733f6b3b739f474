package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"docworker/internal/config"
	"docworker/internal/domain"
	"docworker/internal/port"
	"docworker/internal/provider"
)

const (
	apiVersion          = "2024-11-30"
	defaultModel        = "prebuilt-read"
	defaultPollInterval = 2 * time.Second
)

var supportedContentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/tiff",
	"image/bmp",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Extractor implements port.TextExtractor using Azure AI Document Intelligence.
type Extractor struct {
	endpoint     string
	apiKey       string
	model        string
	client       *http.Client
	pollInterval time.Duration
}

// NewExtractor creates an Azure Document Intelligence extractor from a provider config.
func NewExtractor(cfg *config.ProviderConfig) (*Extractor, error) {
	return newExtractor(cfg, defaultPollInterval)
}

// NewExtractorWithPollInterval creates an extractor with a custom polling cadence (for testing).
func NewExtractorWithPollInterval(cfg *config.ProviderConfig, interval time.Duration) (*Extractor, error) {
	return newExtractor(cfg, interval)
}

func newExtractor(cfg *config.ProviderConfig, interval time.Duration) (*Extractor, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azure extractor: endpoint is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	return &Extractor{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:       cfg.APIKey,
		model:        model,
		client:       &http.Client{Timeout: cfg.Timeout(120 * time.Second)},
		pollInterval: interval,
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	if !slices.Contains(supportedContentTypes, input.ContentType) {
		return "", fmt.Errorf("azure: %s: %w", input.ContentType, domain.ErrUnsupportedContent)
	}

	operationURL, err := e.submit(ctx, input.Content)
	if err != nil {
		return "", err
	}
	return e.poll(ctx, operationURL)
}

func (e *Extractor) submit(ctx context.Context, content []byte) (string, error) {
	u, err := url.Parse(e.endpoint + "/documentintelligence/documentModels/" + e.model + ":analyze")
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	query := u.Query()
	query.Set("api-version", apiVersion)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling document intelligence: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		return "", convertError(resp)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("document intelligence: missing Operation-Location header")
	}
	return operationURL, nil
}

func (e *Extractor) poll(ctx context.Context, operationURL string) (string, error) {
	for {
		op, err := e.fetchOperation(ctx, operationURL)
		if err != nil {
			return "", err
		}

		switch op.Status {
		case statusSucceeded:
			return strings.TrimSpace(op.Result.Content), nil
		case statusRunning, statusNotStarted:
		default:
			msg := string(op.Status)
			if op.Error != nil {
				msg = fmt.Sprintf("%s: %s (%s)", op.Status, op.Error.Message, op.Error.Code)
			}
			return "", fmt.Errorf("document intelligence analysis %s", msg)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for analysis: %w", ctx.Err())
		case <-time.After(e.pollInterval):
		}
	}
}

func (e *Extractor) fetchOperation(ctx context.Context, operationURL string) (*analyzeOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling analysis: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	var op analyzeOperation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	return &op, nil
}

func convertError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	baseErr := fmt.Errorf("document intelligence error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode == http.StatusTooManyRequests {
		return provider.NewRateLimitError("azure", baseErr, provider.RetryAfterFromResponse(resp))
	}
	return baseErr
}
