package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a unit of work for the processing worker: an uploaded blob
// plus the text and summary derived from it.
type Document struct {
	ID                  uuid.UUID      `db:"id" json:"id"`
	Filename            string         `db:"filename" json:"filename"`
	OriginalFilename    string         `db:"original_filename" json:"original_filename"`
	ContentType         string         `db:"content_type" json:"content_type"`
	FileSize            int64          `db:"file_size" json:"file_size"`
	Status              DocumentStatus `db:"status" json:"status"`
	ExtractedText       *string        `db:"extracted_text" json:"extracted_text"`
	Summary             *string        `db:"summary" json:"summary"`
	ProcessingError     string         `db:"processing_error" json:"processing_error"`
	ProcessingStartedAt *time.Time     `db:"processing_started_at" json:"processing_started_at"`
	ProcessedAt         *time.Time     `db:"processed_at" json:"processed_at"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// ResolvedContentType returns the stored content type, falling back to the
// type implied by the filename extension.
func (d *Document) ResolvedContentType() string {
	if d.ContentType != "" {
		return d.ContentType
	}
	return ContentTypeForFilename(d.Filename)
}
