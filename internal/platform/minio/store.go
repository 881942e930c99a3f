// Package minio provides an artifact.Store backed by S3-compatible object storage.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/phrazzld/futureview-api/internal/artifact"
	"github.com/phrazzld/futureview-api/internal/config"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
)

const contentType = "image/png"

// ErrMissingBucket is returned when no bucket name is configured.
var ErrMissingBucket = errors.New("minio bucket name is required")

// objectPutter is the subset of *minio.Client the store depends on.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store uploads generated images to a bucket.
type Store struct {
	client  objectPutter
	bucket  string
	baseURL string
	logger  *slog.Logger
}

var _ artifact.Store = (*Store)(nil)

// NewStore connects to the configured endpoint and makes sure the bucket exists.
func NewStore(ctx context.Context, cfg config.ArtifactsConfig, log *slog.Logger) (*Store, error) {
	if cfg.MinioBucket == "" {
		return nil, ErrMissingBucket
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	baseURL := cfg.MinioPublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.MinioEndpoint
	}

	return newStore(client, cfg.MinioBucket, baseURL, log), nil
}

func newStore(client objectPutter, bucket, baseURL string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.With(slog.String("component", "minio_artifact_store")),
	}
}

// Save implements artifact.Store.
func (s *Store) Save(ctx context.Context, viewingID uuid.UUID, data []byte) (string, error) {
	if len(data) == 0 {
		return "", artifact.ErrEmptyArtifact
	}

	name := artifact.FileName(viewingID)
	info, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", name, s.bucket, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("artifact uploaded",
		slog.String("viewing_id", viewingID.String()),
		slog.String("bucket", s.bucket),
		slog.String("etag", info.ETag),
		slog.Int64("size", info.Size))

	return s.baseURL + "/" + s.bucket + "/" + name, nil
}
