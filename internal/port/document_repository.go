package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docworker/internal/domain"
)

// DocumentRepository provides access to document records.
type DocumentRepository interface {
	// OpenSession acquires a dedicated connection for one poll cycle.
	OpenSession(ctx context.Context) (DocumentSession, error)
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	// List returns documents newest first. An empty status matches every document.
	List(ctx context.Context, status domain.DocumentStatus, offset, limit int) ([]domain.Document, int, error)
	// Requeue moves an errored or stuck document back to pending.
	Requeue(ctx context.Context, id uuid.UUID) error
	// UpdateSummary replaces the summary of a completed document.
	UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// DocumentSession is the per-cycle unit of work. Callers must Close it.
type DocumentSession interface {
	// ListPending returns every pending document ordered by creation time.
	ListPending(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, reason string) error
	// UpdateTextAndSummary stores both results and marks the document completed.
	UpdateTextAndSummary(ctx context.Context, id uuid.UUID, text, summary string) error
	// RequeueStale moves documents stuck in processing since before the cutoff back to pending.
	RequeueStale(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
