package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docworker/internal/domain"
	"docworker/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) OpenSession(ctx context.Context) (port.DocumentSession, error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.OpenSession: %w", err)
	}
	return &documentSession{conn: conn}, nil
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = domain.DocumentStatusPending
	}

	query := `INSERT INTO documents (
		id, filename, original_filename, content_type, file_size,
		status, extracted_text, summary, processing_error,
		processing_started_at, processed_at, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Filename, doc.OriginalFilename, doc.ContentType, doc.FileSize,
		doc.Status, doc.ExtractedText, doc.Summary, doc.ProcessingError,
		doc.ProcessingStartedAt, doc.ProcessedAt, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, status domain.DocumentStatus, offset, limit int) ([]domain.Document, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.ErrInvalidStatus
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE ($1 = '' OR status = $1)", string(status))
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) Requeue(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $1, processing_error = '', updated_at = NOW()
		 WHERE id = $2 AND status IN ($3, $4)`,
		domain.DocumentStatusPending, id, domain.DocumentStatusError, domain.DocumentStatusProcessing)
	if err != nil {
		return fmt.Errorf("documentRepo.Requeue: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (r *documentRepo) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET summary = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		summary, id, domain.DocumentStatusCompleted)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateSummary: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrNotCompleted
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("documentRepo.Ping: %w", err)
	}
	return nil
}

// documentSession pins one pooled connection for the lifetime of a poll cycle.
type documentSession struct {
	conn *sqlx.Conn
}

func (s *documentSession) ListPending(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.conn.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE status = $1 ORDER BY created_at ASC, id ASC",
		domain.DocumentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("documentSession.ListPending: %w", err)
	}
	return docs, nil
}

func (s *documentSession) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, reason string) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE documents SET
			status = $1::text,
			processing_error = $2,
			processing_started_at = CASE WHEN $1::text = 'processing' THEN NOW() ELSE processing_started_at END,
			updated_at = NOW()
		 WHERE id = $3`,
		string(status), reason, id)
	if err != nil {
		return fmt.Errorf("documentSession.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (s *documentSession) UpdateTextAndSummary(ctx context.Context, id uuid.UUID, text, summary string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE documents SET
			extracted_text = $1,
			summary = $2,
			status = $3,
			processing_error = '',
			processed_at = NOW(),
			updated_at = NOW()
		 WHERE id = $4`,
		text, summary, domain.DocumentStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("documentSession.UpdateTextAndSummary: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (s *documentSession) RequeueStale(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE documents SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND processing_started_at < $3`,
		domain.DocumentStatusPending, domain.DocumentStatusProcessing, before)
	if err != nil {
		return 0, fmt.Errorf("documentSession.RequeueStale: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (s *documentSession) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("documentSession.Close: %w", err)
	}
	return nil
}
