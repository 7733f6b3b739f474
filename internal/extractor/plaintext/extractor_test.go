package plaintext_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworker/internal/domain"
	"docworker/internal/extractor/plaintext"
	"docworker/internal/port"
)

func TestExtractor_Extract(t *testing.T) {
	e := plaintext.NewExtractor()

	text, err := e.Extract(context.Background(), port.ExtractInput{
		Filename:    "notes.md",
		ContentType: "text/markdown",
		Content:     []byte("\ufeff# Title\nbody"),
	})

	require.NoError(t, err)
	assert.Equal(t, "# Title\nbody", text)
}

func TestExtractor_Extract_InvalidUTF8(t *testing.T) {
	_, err := plaintext.NewExtractor().Extract(context.Background(), port.ExtractInput{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Content:     []byte{0xff, 0xfe, 0xfd},
	})

	assert.ErrorIs(t, err, domain.ErrMalformedContent)
}

func TestExtractor_Extract_NULByte(t *testing.T) {
	_, err := plaintext.NewExtractor().Extract(context.Background(), port.ExtractInput{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Content:     []byte("header\x00trailer"),
	})

	assert.ErrorIs(t, err, domain.ErrMalformedContent)
}

func TestExtractor_Extract_Binary(t *testing.T) {
	_, err := plaintext.NewExtractor().Extract(context.Background(), port.ExtractInput{
		Filename:    "scan.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedContent)
}

func TestSupports(t *testing.T) {
	tests := []struct {
		name  string
		input port.ExtractInput
		want  bool
	}{
		{name: "content type", input: port.ExtractInput{ContentType: "text/plain"}, want: true},
		{name: "extension", input: port.ExtractInput{Filename: "README.MD"}, want: true},
		{name: "sniffed text", input: port.ExtractInput{Filename: "blob", Content: []byte("plain words\n")}, want: true},
		{name: "sniffed binary", input: port.ExtractInput{Filename: "blob", Content: []byte{0x00, 0x01, 0x02}}, want: false},
		{name: "declared binary", input: port.ExtractInput{ContentType: "image/png", Content: []byte("looks like text")}, want: false},
		{name: "empty", input: port.ExtractInput{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plaintext.Supports(tt.input))
		})
	}
}
