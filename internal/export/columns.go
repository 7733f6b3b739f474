// Package export writes document rows as CSV or XLSX.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"docworker/internal/domain"
)

// columns defines the header row.
var columns = []string{
	"ID",
	"Filename",
	"Original Filename",
	"Content Type",
	"File Size",
	"Status",
	"Processing Error",
	"Summary",
	"Text Length",
	"Processing Started At",
	"Processed At",
	"Created At",
}

// documentToRow converts a single document to one cell per column. The
// extracted text itself is left out; only its length is exported.
func documentToRow(doc *domain.Document) []string {
	row := make([]string, len(columns))
	row[0] = doc.ID.String()
	row[1] = doc.Filename
	row[2] = doc.OriginalFilename
	row[3] = doc.ContentType
	row[4] = strconv.FormatInt(doc.FileSize, 10)
	row[5] = string(doc.Status)
	row[6] = doc.ProcessingError
	row[7] = deref(doc.Summary)
	if doc.ExtractedText != nil {
		row[8] = strconv.Itoa(utf8.RuneCountInString(*doc.ExtractedText))
	}
	row[9] = formatTime(doc.ProcessingStartedAt)
	row[10] = formatTime(doc.ProcessedAt)
	row[11] = doc.CreatedAt.Format(time.RFC3339)
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters other than letters, digits, - and _
// with _, collapses runs of underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_prefix}_{YYYY-MM-DD}.{format}.
func BuildFilename(prefix string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(prefix), now.Format("2006-01-02"), format)
}
