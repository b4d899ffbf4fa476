package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hrcore/internal/platform/config"
)

// Store is the object storage boundary. The core only records object keys and
// ownership; the bytes live in the bucket.
type Store interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

var ErrNotConfigured = errors.New("blob storage not configured")

type minioStore struct {
	client *minio.Client
	bucket string
}

func New(cfg config.Config) (Store, error) {
	if cfg.BlobEndpoint == "" {
		return noopStore{}, nil
	}
	client, err := minio.New(cfg.BlobEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.BlobAccessKey, cfg.BlobSecretKey, ""),
		Secure: cfg.BlobUseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("blob client: %w", err)
	}
	return &minioStore{client: client, bucket: cfg.BlobBucket}, nil
}

func (s *minioStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

type noopStore struct{}

func (noopStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return ErrNotConfigured
}

func (noopStore) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", ErrNotConfigured
}

// ObjectKey builds the org/employee scoped key a document lives under.
func ObjectKey(orgID, employeeID, fileName string) string {
	return path.Join(orgID, employeeID, fileName)
}
