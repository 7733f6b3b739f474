// Package limiter throttles calls to extraction and summarization providers.
package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"docworker/internal/port"
)

// PerMinute returns a limiter admitting n calls per minute, or nil when n <= 0.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

type limitedExtractor struct {
	limiter  *rate.Limiter
	provider port.TextExtractor
}

// NewExtractor wraps p so each Extract waits for l. A nil limiter passes calls through.
func NewExtractor(l *rate.Limiter, p port.TextExtractor) port.TextExtractor {
	if l == nil {
		return p
	}
	return &limitedExtractor{limiter: l, provider: p}
}

func (e *limitedExtractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return e.provider.Extract(ctx, input)
}

type limitedCompleter struct {
	limiter  *rate.Limiter
	provider port.Completer
}

// NewCompleter wraps p so each Complete waits for l. A nil limiter passes calls through.
func NewCompleter(l *rate.Limiter, p port.Completer) port.Completer {
	if l == nil {
		return p
	}
	return &limitedCompleter{limiter: l, provider: p}
}

func (c *limitedCompleter) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.provider.Complete(ctx, req)
}
