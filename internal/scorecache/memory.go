package scorecache

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps records in process memory without expiry.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (m *MemoryStore) Get(ctx context.Context, clientID string) (*Record, error) {
	v, found := m.cache.Get(clientID)
	if !found {
		return nil, fmt.Errorf("get %s: %w", clientID, ErrNotFound)
	}
	rec := v.(Record)
	return &rec, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, rec Record) error {
	if rec.ClientID == "" {
		return fmt.Errorf("upsert: client ID is required")
	}
	m.cache.Set(rec.ClientID, rec, gocache.NoExpiration)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Len returns the number of cached clients.
func (m *MemoryStore) Len() int { return m.cache.ItemCount() }
