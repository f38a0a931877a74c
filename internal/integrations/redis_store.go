package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists integration records as JSON documents in Redis.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. Keys are namespaced by prefix
// so several businesses can share one Redis.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("integrations: redis client required")
	}
	if prefix == "" {
		prefix = "default"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(provider Provider) string {
	return fmt.Sprintf("integration:%s:%s", s.prefix, provider)
}

func (s *RedisStore) Get(ctx context.Context, provider Provider) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(provider)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("integrations: redis get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("integrations: unmarshal record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("integrations: marshal record: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(rec.Provider), data, 0).Err(); err != nil {
		return fmt.Errorf("integrations: redis set: %w", err)
	}
	return nil
}
