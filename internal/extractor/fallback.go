// Package extractor turns downloaded document bytes into text.
package extractor

import (
	"context"

	"github.com/rs/zerolog"

	"docworker/internal/port"
	"docworker/internal/provider"
)

// FallbackExtractor tries extractors in order, skipping those with open circuits.
// It implements port.TextExtractor.
type FallbackExtractor struct {
	chain *provider.Fallback[port.TextExtractor]
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.TextExtractor, names []string, logger zerolog.Logger) *FallbackExtractor {
	return &FallbackExtractor{chain: provider.NewFallback(extractors, names, logger)}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	var text string
	err := f.chain.Do(func(e port.TextExtractor) error {
		out, err := e.Extract(ctx, input)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}
