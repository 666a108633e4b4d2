// Package source loads the operational records the engines read, from a
// SQL database or from dataset snapshots kept in blob storage, optionally
// overlaying live invoice status from Stripe.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrSnapshotNotFound is returned by every StorageClient when the key does
// not exist.
var ErrSnapshotNotFound = errors.New("dataset snapshot not found")

const snapshotContentType = "application/json"

// StorageClient abstracts blob storage for dataset snapshots.
type StorageClient interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(key))
}

// Put stores a blob, creating parent directories as needed.
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get retrieves a blob.
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path(key), ErrSnapshotNotFound)
	}
	return data, err
}

// Location is a parsed dataset location.
type Location struct {
	Scheme string // "file", "s3" or "gs"
	Bucket string // bucket, or base directory for files
	Key    string
}

// ParseLocation splits s3://bucket/key, gs://bucket/key or a local path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("empty dataset location")
	}
	if !strings.Contains(raw, "://") {
		return Location{Scheme: "file", Bucket: filepath.Dir(raw), Key: filepath.Base(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse dataset location %q: %w", raw, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "s3", "gs":
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("dataset location %q needs a bucket and a key", raw)
		}
		return Location{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
	case "file":
		return Location{Scheme: "file", Bucket: filepath.Dir(u.Path), Key: filepath.Base(u.Path)}, nil
	default:
		return Location{}, fmt.Errorf("unsupported dataset scheme %q", u.Scheme)
	}
}

// OpenStorage returns the storage client serving a location.
func OpenStorage(ctx context.Context, loc Location) (StorageClient, error) {
	switch loc.Scheme {
	case "s3":
		return NewS3Storage(ctx, S3ConfigFromEnv(loc.Bucket))
	case "gs":
		return NewGCSStorage(ctx, loc.Bucket)
	case "file":
		return NewLocalStorage(loc.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported dataset scheme %q", loc.Scheme)
	}
}
