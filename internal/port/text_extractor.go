package port

import "context"

// ExtractInput carries the data needed for text extraction.
type ExtractInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// TextExtractor turns document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (string, error)
}
