package summarizer_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworker/internal/config"
	"docworker/internal/port"
	"docworker/internal/summarizer"
)

type echoCompleter string

func (e echoCompleter) Complete(_ context.Context, _ port.CompletionRequest) (string, error) {
	return string(e), nil
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := summarizer.NewProvider(&config.ProviderConfig{Provider: "llama"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown summarizer provider")
}

func TestNewProvider_BuiltIns(t *testing.T) {
	for _, name := range []string{"claude", "openai", "gemini"} {
		t.Run(name, func(t *testing.T) {
			c, err := summarizer.NewProvider(&config.ProviderConfig{Provider: name, APIKey: "k"})
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestNew_RegisteredProvider(t *testing.T) {
	summarizer.RegisterProvider("echo", func(_ *config.ProviderConfig) (port.Completer, error) {
		return echoCompleter("echoed summary"), nil
	})

	s, err := summarizer.New(&config.SummarizerConfig{
		Primary:   config.ProviderConfig{Provider: "echo"},
		Secondary: config.ProviderConfig{Provider: "echo"},
		MaxTokens: 100,
		ChunkSize: 1000,
	}, zerolog.Nop())
	require.NoError(t, err)

	out, err := s.Summarize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "echoed summary", out)
}
