package provider

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"docworker/internal/domain"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Fallback tries providers in order, skipping those whose circuit is open.
// A RateLimitError from a provider opens its circuit for the advertised Retry-After.
type Fallback[T any] struct {
	providers []T
	names     []string
	circuits  []*circuitState
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFallback creates a Fallback from an ordered list of providers and their names.
func NewFallback[T any](providers []T, names []string, logger zerolog.Logger) *Fallback[T] {
	circuits := make([]*circuitState, len(providers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &Fallback[T]{
		providers: providers,
		names:     names,
		circuits:  circuits,
		logger:    logger,
		now:       time.Now,
	}
}

// Do calls fn with each provider until one succeeds.
func (f *Fallback[T]) Do(fn func(p T) error) error {
	if len(f.providers) == 0 {
		return domain.ErrProviderUnavailable
	}

	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.providers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Debug().
				Str("provider", f.names[i]).
				Time("reset_at", resetAt).
				Msg("skipping provider with open circuit")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		err := fn(p)
		if err == nil {
			return nil
		}

		f.logger.Warn().Err(err).Str("provider", f.names[i]).Msg("provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return NewRateLimitError("all", errors.New("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return fmt.Errorf("all providers failed: %w", lastErr)
}
