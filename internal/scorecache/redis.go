package scorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON value per client under prefix:client_id.
// Records never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis at addr.
func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:        20,
		MinIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(clientID string) string {
	return s.prefix + ":" + clientID
}

func (s *RedisStore) Get(ctx context.Context, clientID string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %s: %w", clientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", clientID, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode cached record %s: %w", clientID, err)
	}
	return &rec, nil
}

func (s *RedisStore) Upsert(ctx context.Context, rec Record) error {
	if rec.ClientID == "" {
		return fmt.Errorf("upsert: client ID is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ClientID, err)
	}
	if err := s.client.Set(ctx, s.key(rec.ClientID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", rec.ClientID, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
