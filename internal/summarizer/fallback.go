package summarizer

import (
	"context"

	"github.com/rs/zerolog"

	"docworker/internal/port"
	"docworker/internal/provider"
)

// FallbackCompleter tries completers in order, skipping those with open circuits.
type FallbackCompleter struct {
	chain *provider.Fallback[port.Completer]
}

// NewFallbackCompleter creates a FallbackCompleter from an ordered list of completers and their names.
func NewFallbackCompleter(completers []port.Completer, names []string, logger zerolog.Logger) *FallbackCompleter {
	return &FallbackCompleter{chain: provider.NewFallback(completers, names, logger)}
}

func (f *FallbackCompleter) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	var out string
	err := f.chain.Do(func(c port.Completer) error {
		text, err := c.Complete(ctx, req)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}
