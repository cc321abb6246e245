// Package storage archives raw lead upload files in S3-compatible object
// storage and hands out short-lived download links for them.
package storage

import (
	"context"
	"io"
	"time"

	"leaddesk_backend/platform/config"
)

// PresignedURL is a time-limited link to one stored object.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Archive is the object storage surface the lead module depends on.
type Archive interface {
	// ArchiveUpload stores r under folder and returns the object key.
	ArchiveUpload(ctx context.Context, folder, fileName, contentType string, r io.Reader, size int64) (string, error)
	// DownloadURL presigns a GET for a stored object.
	DownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)
	// EnsureBucket creates the uploads bucket when missing.
	EnsureBucket(ctx context.Context) error
}

// Config is the subset of settings storage reads.
type Config = config.StorageConfig
