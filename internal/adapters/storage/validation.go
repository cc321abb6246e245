package storage

import (
	"fmt"
	"path"
	"strings"
)

// allowedContentTypes are the MIME types browsers send for CSV files.
var allowedContentTypes = map[string]bool{
	"text/csv":                 true,
	"text/plain":               true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

// NormalizeContentType strips parameters and lower-cases the media type.
func NormalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))
	if normalized == "" {
		return "text/csv"
	}
	return normalized
}

// ValidateUpload checks the declared type, the extension and the size of an upload.
func ValidateUpload(contentType, fileName string, size, maxSize int64) error {
	if !allowedContentTypes[NormalizeContentType(contentType)] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	if ext := strings.ToLower(path.Ext(fileName)); ext != ".csv" && ext != ".txt" {
		return fmt.Errorf("file %q must be a .csv file", fileName)
	}
	if size <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", size, maxSize)
	}
	return nil
}
