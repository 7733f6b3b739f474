package provider_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworker/internal/domain"
	"docworker/internal/provider"
)

type stubProvider struct {
	name  string
	errs  []error
	calls atomic.Int32
}

func (s *stubProvider) call() error {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) {
		return s.errs[n]
	}
	return nil
}

func run(f *provider.Fallback[*stubProvider]) (string, error) {
	var used string
	err := f.Do(func(p *stubProvider) error {
		if err := p.call(); err != nil {
			return err
		}
		used = p.name
		return nil
	})
	return used, err
}

func newChain(ps ...*stubProvider) *provider.Fallback[*stubProvider] {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.name
	}
	return provider.NewFallback(ps, names, zerolog.Nop())
}

func TestFallback_FirstSucceeds(t *testing.T) {
	p1 := &stubProvider{name: "claude"}
	p2 := &stubProvider{name: "openai"}

	used, err := run(newChain(p1, p2))

	require.NoError(t, err)
	assert.Equal(t, "claude", used)
	assert.Equal(t, int32(0), p2.calls.Load())
}

func TestFallback_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := &stubProvider{name: "claude", errs: []error{errors.New("boom")}}
	p2 := &stubProvider{name: "openai"}

	used, err := run(newChain(p1, p2))

	require.NoError(t, err)
	assert.Equal(t, "openai", used)
}

func TestFallback_AllRateLimited(t *testing.T) {
	p1 := &stubProvider{name: "claude", errs: []error{provider.NewRateLimitError("claude", errors.New("429"), 60)}}
	p2 := &stubProvider{name: "openai", errs: []error{provider.NewRateLimitError("openai", errors.New("429"), 30)}}

	_, err := run(newChain(p1, p2))

	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallback_AllFail_KeepsLastError(t *testing.T) {
	p1 := &stubProvider{name: "azure", errs: []error{errors.New("error 1")}}
	p2 := &stubProvider{name: "gemini", errs: []error{domain.ErrUnsupportedContent}}

	_, err := run(newChain(p1, p2))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.ErrorIs(t, err, domain.ErrUnsupportedContent)

	var rlErr *provider.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallback_SkipsOpenCircuit(t *testing.T) {
	p1 := &stubProvider{name: "claude", errs: []error{provider.NewRateLimitError("claude", errors.New("429"), 60)}}
	p2 := &stubProvider{name: "openai"}
	chain := newChain(p1, p2)

	used, err := run(chain)
	require.NoError(t, err)
	assert.Equal(t, "openai", used)

	used, err = run(chain)
	require.NoError(t, err)
	assert.Equal(t, "openai", used)
	assert.Equal(t, int32(1), p1.calls.Load())
}

func TestFallback_OnlyOpenCircuitsLeft(t *testing.T) {
	p1 := &stubProvider{name: "claude", errs: []error{provider.NewRateLimitError("claude", errors.New("429"), 60)}}
	chain := newChain(p1)

	_, err := run(chain)
	require.Error(t, err)

	_, err = run(chain)
	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, int32(1), p1.calls.Load())
}

func TestFallback_NoProviders(t *testing.T) {
	_, err := run(newChain())
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestFallback_ConcurrentSafety(t *testing.T) {
	p1 := &stubProvider{name: "claude", errs: []error{provider.NewRateLimitError("claude", errors.New("429"), 5)}}
	p2 := &stubProvider{name: "openai"}
	chain := newChain(p1, p2)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := run(chain)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
