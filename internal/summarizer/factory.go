package summarizer

import (
	"fmt"

	"github.com/rs/zerolog"

	"docworker/internal/config"
	"docworker/internal/limiter"
	"docworker/internal/port"
	"docworker/internal/summarizer/claude"
	"docworker/internal/summarizer/gemini"
	"docworker/internal/summarizer/openai"
)

// ProviderFactory is a function that creates a Completer from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.Completer, error)

var providers = map[string]ProviderFactory{
	"claude": func(cfg *config.ProviderConfig) (port.Completer, error) {
		return claude.NewCompleter(cfg), nil
	},
	"openai": func(cfg *config.ProviderConfig) (port.Completer, error) {
		return openai.NewCompleter(cfg), nil
	},
	"gemini": func(cfg *config.ProviderConfig) (port.Completer, error) {
		return gemini.NewCompleter(cfg)
	},
}

// RegisterProvider registers a completer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates a Completer from a provider config using the registered factory.
func NewProvider(cfg *config.ProviderConfig) (port.Completer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown summarizer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// New builds the configured summarizer: completers chained in fallback
// order, throttled to cfg.RatePerMin, driven by a ChunkedSummarizer.
func New(cfg *config.SummarizerConfig, logger zerolog.Logger) (*ChunkedSummarizer, error) {
	var (
		completers []port.Completer
		names      []string
	)
	for _, pc := range cfg.Chain() {
		c, err := NewProvider(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s summarizer: %w", pc.Provider, err)
		}
		completers = append(completers, c)
		names = append(names, pc.Provider)
	}

	var completer port.Completer = NewFallbackCompleter(completers, names, logger)
	if len(completers) == 1 {
		completer = completers[0]
	}
	completer = limiter.NewCompleter(limiter.PerMinute(cfg.RatePerMin), completer)

	return NewChunkedSummarizer(completer, NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap), cfg.MaxTokens, logger), nil
}
