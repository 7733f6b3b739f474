package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"docworker/internal/domain"
	"docworker/internal/port"
)

const (
	// statusWriteTimeout bounds the error-status write, which runs even when
	// the attempt's own deadline has passed.
	statusWriteTimeout = 30 * time.Second
	maxReasonLength    = 2000
)

// DocumentProcessor runs one processing attempt for a pending document.
type DocumentProcessor interface {
	// Process leaves doc either completed or in error. The returned error has
	// already been recorded on the document and logged.
	Process(ctx context.Context, session port.DocumentSession, doc *domain.Document) error
}

type documentProcessor struct {
	storage    port.ObjectStorage
	extractor  port.TextExtractor
	summarizer port.Summarizer
	logger     zerolog.Logger
}

// NewDocumentProcessor creates a DocumentProcessor.
func NewDocumentProcessor(
	storage port.ObjectStorage,
	extractor port.TextExtractor,
	summarizer port.Summarizer,
	logger zerolog.Logger,
) DocumentProcessor {
	return &documentProcessor{
		storage:    storage,
		extractor:  extractor,
		summarizer: summarizer,
		logger:     logger,
	}
}

func (p *documentProcessor) Process(ctx context.Context, session port.DocumentSession, doc *domain.Document) error {
	log := p.logger.With().
		Str("document_id", doc.ID.String()).
		Str("filename", doc.Filename).
		Logger()
	start := time.Now()

	if err := session.UpdateStatus(ctx, doc.ID, domain.DocumentStatusProcessing, ""); err != nil {
		return p.fail(ctx, session, doc, log, fmt.Errorf("marking processing: %w", err))
	}

	text, summary, err := p.run(ctx, doc)
	if err != nil {
		return p.fail(ctx, session, doc, log, err)
	}

	if err := session.UpdateTextAndSummary(ctx, doc.ID, text, summary); err != nil {
		return p.fail(ctx, session, doc, log, fmt.Errorf("saving results: %w", err))
	}

	log.Info().
		Int("text_length", len(text)).
		Int("summary_length", len(summary)).
		Dur("elapsed", time.Since(start)).
		Msg("document processed")
	return nil
}

// run downloads, extracts, and summarizes doc. A panic in any collaborator
// is returned as an error.
func (p *documentProcessor) run(ctx context.Context, doc *domain.Document) (text, summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while processing: %v", r)
		}
	}()

	content, err := p.storage.Download(ctx, doc.Filename)
	if err != nil {
		return "", "", fmt.Errorf("downloading %s: %w", doc.Filename, err)
	}

	text, err = p.extractor.Extract(ctx, port.ExtractInput{
		Filename:    doc.Filename,
		ContentType: doc.ResolvedContentType(),
		Content:     content,
	})
	if err != nil {
		return "", "", fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", domain.ErrNoTextExtracted
	}

	summary, err = p.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", "", fmt.Errorf("summarizing: %w", err)
	}
	if strings.TrimSpace(summary) == "" {
		return "", "", domain.ErrEmptySummary
	}

	return text, summary, nil
}

// fail records cause on the document as status error and returns cause.
// A failed status write is only logged.
func (p *documentProcessor) fail(
	ctx context.Context,
	session port.DocumentSession,
	doc *domain.Document,
	log zerolog.Logger,
	cause error,
) error {
	log.Error().Stack().Err(errors.WithStack(cause)).Msg("document processing failed")

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	if err := session.UpdateStatus(writeCtx, doc.ID, domain.DocumentStatusError, sanitizeReason(cause.Error())); err != nil {
		log.Error().Stack().Err(errors.WithStack(err)).Msg("failed to mark document as error")
	}
	return cause
}

// sanitizeReason makes s storable in a Postgres text column: invalid UTF-8
// is replaced, NUL bytes are dropped, and the result is cut to
// maxReasonLength bytes on a rune boundary.
func sanitizeReason(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.ReplaceAll(s, "\x00", "")
	if len(s) <= maxReasonLength {
		return s
	}
	s = s[:maxReasonLength]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
