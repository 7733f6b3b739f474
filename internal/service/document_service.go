package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docworker/internal/domain"
	"docworker/internal/export"
	"docworker/internal/port"
)

const exportPageSize = 500

// UploadInput is the DTO for adding a document to the queue.
type UploadInput struct {
	Filename string
	Body     io.Reader
	Size     int64
}

// DocumentService defines operator actions on documents.
type DocumentService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, status domain.DocumentStatus, offset, limit int) ([]domain.Document, int, error)
	Requeue(ctx context.Context, id uuid.UUID) error
	Resummarize(ctx context.Context, id uuid.UUID, instruction string) (*domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListBlobs(ctx context.Context, prefix string) ([]port.ObjectInfo, error)
	Export(ctx context.Context, w io.Writer, format export.Format, status domain.DocumentStatus) (int, error)
}

type documentService struct {
	repo       port.DocumentRepository
	storage    port.ObjectStorage
	summarizer port.InstructedSummarizer
	logger     zerolog.Logger
}

// NewDocumentService creates a new DocumentService. summarizer may be nil,
// in which case Resummarize reports ErrProviderUnavailable.
func NewDocumentService(repo port.DocumentRepository, storage port.ObjectStorage, summarizer port.InstructedSummarizer, logger zerolog.Logger) DocumentService {
	return &documentService{repo: repo, storage: storage, summarizer: summarizer, logger: logger}
}

// Upload stores the blob first and then creates the pending row, so the
// worker never sees a document whose bytes are missing.
func (s *documentService) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w", input.Filename, domain.ErrUnsupportedContent)
	}

	id := uuid.New()
	doc := &domain.Document{
		ID:               id,
		Filename:         id.String() + "." + ext,
		OriginalFilename: filepath.Base(input.Filename),
		ContentType:      domain.AllowedFileTypes[fileType],
		FileSize:         input.Size,
		Status:           domain.DocumentStatusPending,
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         doc.Filename,
		Body:        input.Body,
		ContentType: doc.ContentType,
		Size:        input.Size,
	}); err != nil {
		return nil, fmt.Errorf("uploading blob: %w", err)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if derr := s.storage.Delete(ctx, doc.Filename); derr != nil {
			s.logger.Warn().Err(derr).Str("filename", doc.Filename).Msg("failed to remove orphaned blob")
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}

	s.logger.Info().
		Str("document_id", doc.ID.String()).
		Str("filename", doc.Filename).
		Str("original_filename", doc.OriginalFilename).
		Int64("size", doc.FileSize).
		Msg("document queued")
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *documentService) List(ctx context.Context, status domain.DocumentStatus, offset, limit int) ([]domain.Document, int, error) {
	return s.repo.List(ctx, status, offset, limit)
}

func (s *documentService) Requeue(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Requeue(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("document_id", id.String()).Msg("document requeued")
	return nil
}

// Resummarize regenerates the summary of a completed document from its stored
// text, following the operator's instruction instead of the default prompt.
func (s *documentService) Resummarize(ctx context.Context, id uuid.UUID, instruction string) (*domain.Document, error) {
	if s.summarizer == nil {
		return nil, fmt.Errorf("resummarize: summarizer not configured: %w", domain.ErrProviderUnavailable)
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusCompleted {
		return nil, fmt.Errorf("document is %s: %w", doc.Status, domain.ErrNotCompleted)
	}
	if doc.ExtractedText == nil || strings.TrimSpace(*doc.ExtractedText) == "" {
		return nil, domain.ErrNoTextExtracted
	}

	summary, err := s.summarizer.SummarizeWithInstruction(ctx, *doc.ExtractedText, instruction)
	if err != nil {
		return nil, fmt.Errorf("summarizing: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, domain.ErrEmptySummary
	}

	if err := s.repo.UpdateSummary(ctx, id, summary); err != nil {
		return nil, err
	}
	doc.Summary = &summary

	s.logger.Info().
		Str("document_id", id.String()).
		Int("summary_length", len(summary)).
		Bool("custom_instruction", strings.TrimSpace(instruction) != "").
		Msg("summary regenerated")
	return doc, nil
}

// Delete removes the blob and then the row. A blob that is already gone is not an error.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.Filename); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("document_id", id.String()).Str("filename", doc.Filename).Msg("document deleted")
	return nil
}

func (s *documentService) ListBlobs(ctx context.Context, prefix string) ([]port.ObjectInfo, error) {
	return s.storage.List(ctx, prefix)
}

// Export writes every document matching status to w and returns how many were written.
func (s *documentService) Export(ctx context.Context, w io.Writer, format export.Format, status domain.DocumentStatus) (int, error) {
	ew, err := export.NewWriter(format, w)
	if err != nil {
		return 0, err
	}
	if err := ew.WriteHeader(); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	written := 0
	for offset := 0; ; offset += exportPageSize {
		docs, total, err := s.repo.List(ctx, status, offset, exportPageSize)
		if err != nil {
			return written, err
		}
		if err := ew.WriteDocuments(docs); err != nil {
			return written, fmt.Errorf("writing rows: %w", err)
		}
		written += len(docs)
		if len(docs) < exportPageSize || offset+len(docs) >= total {
			break
		}
	}

	if err := ew.Close(); err != nil {
		return written, err
	}
	return written, nil
}
