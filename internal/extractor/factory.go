package extractor

import (
	"fmt"

	"github.com/rs/zerolog"

	"docworker/internal/config"
	"docworker/internal/extractor/azure"
	"docworker/internal/extractor/gemini"
	"docworker/internal/extractor/plaintext"
	"docworker/internal/limiter"
	"docworker/internal/port"
)

// ProviderFactory is a function that creates a TextExtractor from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.TextExtractor, error)

// registry of extractor provider factories. Built-ins are registered here;
// others can be added via RegisterProvider.
var providers = map[string]ProviderFactory{
	"azure": func(cfg *config.ProviderConfig) (port.TextExtractor, error) {
		return azure.NewExtractor(cfg)
	},
	"gemini": func(cfg *config.ProviderConfig) (port.TextExtractor, error) {
		return gemini.NewExtractor(cfg)
	},
	"plaintext": func(_ *config.ProviderConfig) (port.TextExtractor, error) {
		return plaintext.NewExtractor(), nil
	},
}

// RegisterProvider registers an extractor provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates a TextExtractor from a provider config using the registered factory.
func NewProvider(cfg *config.ProviderConfig) (port.TextExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// New builds the configured extraction pipeline: providers chained in
// fallback order, throttled to cfg.RatePerMin, behind content routing and
// PDF preflight.
func New(cfg *config.ExtractorConfig, logger zerolog.Logger) (port.TextExtractor, error) {
	var (
		extractors []port.TextExtractor
		names      []string
	)
	for _, pc := range cfg.Chain() {
		e, err := NewProvider(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s extractor: %w", pc.Provider, err)
		}
		extractors = append(extractors, e)
		names = append(names, pc.Provider)
	}

	var next port.TextExtractor = NewFallbackExtractor(extractors, names, logger)
	if len(extractors) == 1 {
		next = extractors[0]
	}
	next = limiter.NewExtractor(limiter.PerMinute(cfg.RatePerMin), next)
	return NewPipeline(next, cfg.PDFPreflight, logger), nil
}
