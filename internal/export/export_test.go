package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docworker/internal/domain"
	"docworker/internal/export"
)

func strPtr(s string) *string { return &s }

func sampleDocs() []domain.Document {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	processed := created.Add(2 * time.Minute)
	return []domain.Document{
		{
			ID:               uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Filename:         "a.pdf",
			OriginalFilename: "Quarterly Report.pdf",
			ContentType:      "application/pdf",
			FileSize:         2048,
			Status:           domain.DocumentStatusCompleted,
			ExtractedText:    strPtr("héllo"),
			Summary:          strPtr("hi"),
			ProcessedAt:      &processed,
			CreatedAt:        created,
		},
		{
			ID:              uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Filename:        "b.png",
			Status:          domain.DocumentStatusError,
			ProcessingError: "extracting text: unsupported content type",
			CreatedAt:       created,
		},
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := export.NewWriter(export.FormatCSV, &buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteDocuments(sampleDocs()))
	require.NoError(t, w.Close())

	require.True(t, bytes.HasPrefix(buf.Bytes(), export.BOM))
	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Created At", rows[0][len(rows[0])-1])

	assert.Equal(t, "11111111-1111-1111-1111-111111111111", rows[1][0])
	assert.Equal(t, "Quarterly Report.pdf", rows[1][2])
	assert.Equal(t, "2048", rows[1][4])
	assert.Equal(t, "completed", rows[1][5])
	assert.Equal(t, "hi", rows[1][7])
	assert.Equal(t, "5", rows[1][8])
	assert.Equal(t, "2025-03-01T09:32:00Z", rows[1][10])
	assert.Equal(t, "2025-03-01T09:30:00Z", rows[1][11])

	assert.Equal(t, "error", rows[2][5])
	assert.Equal(t, "extracting text: unsupported content type", rows[2][6])
	assert.Empty(t, rows[2][7])
	assert.Empty(t, rows[2][8])
	assert.Empty(t, rows[2][10])
}

func TestCSVWriter_WithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	w, err := export.NewCSVWriter(&buf, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Close())

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("ID,Filename,")))
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := export.NewWriter(export.FormatXLSX, &buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteDocuments(sampleDocs()))
	require.NoError(t, w.Close())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "a.pdf", rows[1][1])
	assert.Equal(t, "completed", rows[1][5])
	assert.Equal(t, "b.png", rows[2][1])
	assert.Equal(t, "error", rows[2][5])
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	_, err := export.NewWriter("pdf", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"documents", "documents"},
		{"error docs (March)", "error_docs_March"},
		{"__a//b__", "a_b"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, export.SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "documents_error_2025-03-01.xlsx", export.BuildFilename("documents error", export.FormatXLSX, now))
}
