package domain

import (
	"path/filepath"
	"strings"
)

// DocumentStatus tracks how far a document has progressed through processing.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusError      DocumentStatus = "error"
)

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusError:
		return true
	}
	return false
}

// FileType represents the document formats the pipeline knows how to route.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeTIFF FileType = "tiff"
	FileTypeBMP  FileType = "bmp"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
	FileTypeMD   FileType = "md"
)

// DefaultContentType is used when a filename carries no recognised extension.
const DefaultContentType = "application/octet-stream"

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeTIFF: "image/tiff",
	FileTypeBMP:  "image/bmp",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeTXT:  "text/plain",
	FileTypeMD:   "text/markdown",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"tif":  FileTypeTIFF,
	"tiff": FileTypeTIFF,
	"bmp":  FileTypeBMP,
	"docx": FileTypeDOCX,
	"txt":  FileTypeTXT,
	"md":   FileTypeMD,
}

// ContentTypeForFilename derives a MIME type from the filename extension.
func ContentTypeForFilename(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ft, ok := AllowedExtensions[ext]; ok {
		return AllowedFileTypes[ft]
	}
	return DefaultContentType
}
