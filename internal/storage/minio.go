package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrIncompleteConfig = errors.New("blob store configuration incomplete")
	ErrInvalidEndpoint  = errors.New("invalid blob store endpoint")
	ErrMissingBucket    = errors.New("blob store bucket does not exist")
)

// BlobStore keeps uploaded photos and hands out URLs that resolve to them.
type BlobStore interface {
	Upload(ctx context.Context, key string, upload *models.Upload) (string, error)
	Ping(ctx context.Context) error
}

// MinioStore is a BlobStore backed by any S3-compatible service.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase *url.URL
}

// NewMinioStore connects to the configured endpoint and checks that the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, ErrIncompleteConfig
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	store, err := newStore(client, cfg.Bucket, cfg.PublicURL)
	if err != nil {
		return nil, err
	}

	if err = store.Ping(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func newStore(client *minio.Client, bucket, publicURL string) (*MinioStore, error) {
	base := client.EndpointURL()
	if publicURL != "" {
		parsed, err := url.Parse(publicURL)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("%w: public url %q", ErrInvalidEndpoint, publicURL)
		}
		base = parsed
	}

	return &MinioStore{client: client, bucket: bucket, publicBase: base}, nil
}

// Upload writes the buffered file under key and returns its URL.
func (s *MinioStore) Upload(ctx context.Context, key string, upload *models.Upload) (string, error) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(upload.Data), upload.Size(),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return s.ObjectURL(key), nil
}

// Ping verifies the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to reach blob store: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrMissingBucket, s.bucket)
	}

	return nil
}

// ObjectURL returns the path-style URL of key in the store's bucket.
func (s *MinioStore) ObjectURL(key string) string {
	return s.publicBase.JoinPath(s.bucket, key).String()
}

// ObjectKey builds the photo key `<prefix>/<unix millis>-<file name>`.
// Two uploads with the same name in the same millisecond share a key.
func ObjectKey(prefix string, now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}

	return path.Join(prefix, fmt.Sprintf("%d-%s", now.UnixMilli(), name))
}

func normaliseEndpoint(raw string) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("%w: empty endpoint", ErrInvalidEndpoint)
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if !strings.Contains(raw, "://") {
		return raw, false, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if parsed.Host == "" {
		return "", false, fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	if parsed.Path != "" && parsed.Path != "/" {
		return "", false, fmt.Errorf("%w: endpoint must not contain a path", ErrInvalidEndpoint)
	}

	return parsed.Host, parsed.Scheme == "https", nil
}
