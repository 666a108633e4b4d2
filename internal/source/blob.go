package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agencypulse/agencypulse/pkg/records"
)

// Source loads a point-in-time Dataset. Collections that fail to load are
// recorded in Dataset.Unavailable rather than failing the whole load.
type Source interface {
	Load(ctx context.Context) (*records.Dataset, error)
}

// BlobSource reads a dataset snapshot stored as one JSON document.
type BlobSource struct {
	storage StorageClient
	key     string
}

// NewBlobSource creates a source reading key from storage.
func NewBlobSource(storage StorageClient, key string) *BlobSource {
	return &BlobSource{storage: storage, key: key}
}

// OpenBlobSource resolves a local path or s3:// / gs:// URL into a source.
func OpenBlobSource(ctx context.Context, location string) (*BlobSource, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	storage, err := OpenStorage(ctx, loc)
	if err != nil {
		return nil, err
	}
	return NewBlobSource(storage, loc.Key), nil
}

// Load fetches and decodes the snapshot. A snapshot is all-or-nothing, so
// any failure is returned as an error.
func (s *BlobSource) Load(ctx context.Context) (*records.Dataset, error) {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", s.key, err)
	}
	ds, err := records.DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", s.key, err)
	}
	return ds, nil
}

// Publish writes a dataset snapshot to storage under key.
func Publish(ctx context.Context, storage StorageClient, key string, ds *records.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := storage.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store dataset %s: %w", key, err)
	}
	return nil
}
