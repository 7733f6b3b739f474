package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"docworker/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// BOM is the UTF-8 byte order mark, written ahead of CSV for Excel on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer writes a header followed by batches of documents. Close must be
// called to finish the output.
type Writer interface {
	WriteHeader() error
	WriteDocuments(docs []domain.Document) error
	Close() error
}

// NewWriter returns a Writer producing format on w.
func NewWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(w, true)
	case FormatXLSX:
		return NewXLSXWriter(w)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// CSVWriter wraps csv.Writer for exporting documents as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter, optionally prefixing the output with BOM.
func NewCSVWriter(w io.Writer, withBOM bool) (*CSVWriter, error) {
	if withBOM {
		if _, err := w.Write(BOM); err != nil {
			return nil, err
		}
	}
	return &CSVWriter{csv: csv.NewWriter(w)}, nil
}

func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

func (w *CSVWriter) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.csv.Write(documentToRow(&docs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows.
func (w *CSVWriter) Close() error {
	w.csv.Flush()
	return w.csv.Error()
}
