package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage keeps dataset snapshots in a Cloud Storage bucket, using
// Application Default Credentials.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage opens a client for bucket.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs snapshot store: bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs snapshot store: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) object(key string) *gcs.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(key)
}

// Put uploads a snapshot, replacing any previous one under key.
func (s *GCSStorage) Put(ctx context.Context, key string, data []byte) error {
	w := s.object(key).NewWriter(ctx)
	w.ContentType = snapshotContentType
	w.CacheControl = "no-cache"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload snapshot gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize snapshot gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Get downloads a snapshot. A missing object yields ErrSnapshotNotFound.
func (s *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("gs://%s/%s: %w", s.bucket, key, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("download snapshot gs://%s/%s: %w", s.bucket, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot gs://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}
