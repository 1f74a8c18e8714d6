package filestorage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ogrenly/platform/pkg/config"
)

// Storage stores uploaded media (post and course cover images) in an
// S3-compatible object store.
type Storage interface {
	// Put stores content under a generated key in the given folder and
	// returns the object key
	Put(ctx context.Context, folder, filename, contentType string, content io.Reader, size int64) (string, error)
	// Remove deletes the object with the given key
	Remove(ctx context.Context, key string) error
}

// MinioStorage implements Storage with a MinIO (or any S3-compatible) backend
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage creates the client and ensures the bucket exists
func NewMinioStorage(ctx context.Context, cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		slog.Info("Created storage bucket", "bucket", cfg.Bucket)
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket}, nil
}

// Put stores content under "<folder>/<uuid><ext>" and returns the key
func (s *MinioStorage) Put(ctx context.Context, folder, filename, contentType string, content io.Reader, size int64) (string, error) {
	key := folder + "/" + uuid.New().String() + path.Ext(filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}
	return key, nil
}

// Remove deletes the object with the given key
func (s *MinioStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
