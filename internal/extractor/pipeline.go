package extractor

import (
	"context"

	"github.com/rs/zerolog"

	"docworker/internal/domain"
	"docworker/internal/extractor/plaintext"
	"docworker/internal/port"
)

// Pipeline routes a document to the cheapest extractor that can handle it.
// Text documents are read directly, PDFs are optionally preflighted, and
// everything else goes to the configured provider chain.
type Pipeline struct {
	next         port.TextExtractor
	text         *plaintext.Extractor
	pdfPreflight bool
	logger       zerolog.Logger
}

// NewPipeline wraps next with content routing.
func NewPipeline(next port.TextExtractor, pdfPreflight bool, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		next:         next,
		text:         plaintext.NewExtractor(),
		pdfPreflight: pdfPreflight,
		logger:       logger,
	}
}

func (p *Pipeline) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	if input.ContentType == "" {
		input.ContentType = domain.ContentTypeForFilename(input.Filename)
	}

	if plaintext.Supports(input) {
		return p.text.Extract(ctx, input)
	}

	if p.pdfPreflight && input.ContentType == domain.AllowedFileTypes[domain.FileTypePDF] {
		pages, err := ValidatePDF(input.Content)
		if err != nil {
			return "", err
		}
		p.logger.Debug().Str("filename", input.Filename).Int("pages", pages).Msg("pdf preflight passed")
	}

	return p.next.Extract(ctx, input)
}
