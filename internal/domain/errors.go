package domain

import "errors"

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrBlobNotFound        = errors.New("blob not found")
	ErrBlobExists          = errors.New("blob already exists")
	ErrUnsupportedContent  = errors.New("unsupported content type")
	ErrMalformedContent    = errors.New("malformed document content")
	ErrNoTextExtracted     = errors.New("no text extracted from document")
	ErrEmptySummary        = errors.New("summarizer returned an empty summary")
	ErrInvalidStatus       = errors.New("invalid document status")
	ErrInvalidTransition   = errors.New("document cannot be requeued from its current status")
	ErrNotCompleted        = errors.New("document has not completed processing")
	ErrProviderUnavailable = errors.New("no provider available")
)
