package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL bounds how long a batch download link stays valid.
const PresignedURLTTL = 15 * time.Minute

// MinIOArchive implements Archive on a single MinIO bucket.
type MinIOArchive struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

// NewMinIOArchive connects to MinIO. It fails when storage is not configured.
func NewMinIOArchive(cfg Config) (*MinIOArchive, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOArchive{
		client:      client,
		bucket:      cfg.GetMinIOBucketUploads(),
		maxFileSize: cfg.GetMaxUploadSize(),
	}, nil
}

func (a *MinIOArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

func (a *MinIOArchive) ArchiveUpload(ctx context.Context, folder, fileName, contentType string, r io.Reader, size int64) (string, error) {
	if err := ValidateUpload(contentType, fileName, size, a.maxFileSize); err != nil {
		return "", err
	}

	key := ObjectKey(folder, fileName, time.Now())
	_, err := a.client.PutObject(ctx, a.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: NormalizeContentType(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", key, err)
	}
	return key, nil
}

func (a *MinIOArchive) DownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error) {
	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(fileKey)))

	expiresAt := time.Now().Add(PresignedURLTTL)
	u, err := a.client.PresignedGetObject(ctx, a.bucket, fileKey, PresignedURLTTL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return &PresignedURL{URL: u.String(), FileKey: fileKey, ExpiresAt: expiresAt}, nil
}

// ObjectKey builds folder/YYYY/MM/<base>_<short id><ext>. Path separators in
// the client-supplied name are dropped.
func ObjectKey(folder, fileName string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload.csv"
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	unique := fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext)
	return path.Join(folder, now.UTC().Format("2006/01"), unique)
}
