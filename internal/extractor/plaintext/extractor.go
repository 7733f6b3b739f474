package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"docworker/internal/domain"
	"docworker/internal/port"
)

var (
	supportedExtensions   = []string{".txt", ".md", ".markdown", ".csv", ".log"}
	supportedContentTypes = []string{"text/plain", "text/markdown", "text/csv"}
)

// Extractor implements port.TextExtractor for documents that already are text.
type Extractor struct{}

// NewExtractor creates a plain-text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, input port.ExtractInput) (string, error) {
	if !Supports(input) {
		return "", fmt.Errorf("plaintext: %s: %w", input.ContentType, domain.ErrUnsupportedContent)
	}
	if !utf8.Valid(input.Content) {
		return "", fmt.Errorf("plaintext: invalid utf-8: %w", domain.ErrMalformedContent)
	}
	if bytes.IndexByte(input.Content, 0) >= 0 {
		return "", fmt.Errorf("plaintext: NUL byte in text: %w", domain.ErrMalformedContent)
	}
	return strings.TrimPrefix(string(input.Content), "\ufeff"), nil
}

// Supports reports whether input is text, by declared type, extension, or content sniffing.
func Supports(input port.ExtractInput) bool {
	if slices.Contains(supportedContentTypes, input.ContentType) {
		return true
	}
	if input.Filename != "" && slices.Contains(supportedExtensions, strings.ToLower(path.Ext(input.Filename))) {
		return true
	}
	if input.ContentType != "" && input.ContentType != domain.DefaultContentType {
		return false
	}
	return looksLikeText(input.Content)
}

func looksLikeText(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	var printable int
	for _, b := range content {
		if b == 0 {
			return false
		}
		if unicode.IsPrint(rune(b)) || b == '\n' || b == '\r' || b == '\t' {
			printable++
		}
	}
	return printable > len(content)*90/100
}
