package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Cache holds client-side mapping sets keyed by dashboard session. Cached
// data is advisory: anything unreadable loads as an empty set.
type Cache interface {
	Load(ctx context.Context, sessionID string) (*Set, error)
	Save(ctx context.Context, sessionID string, set *Set) error
}

// decodeSet parses cached bytes, falling back to an empty set.
func decodeSet(logger *logging.Logger, sessionID string, data []byte) *Set {
	set := NewSet()
	if len(data) == 0 {
		return set
	}
	if err := json.Unmarshal(data, set); err != nil {
		logger.Warn("discarding malformed cached mappings", "session_id", sessionID, "error", err)
		return NewSet()
	}
	return set
}

// MemoryCache keeps encoded sets in process memory.
type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	logger *logging.Logger
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache(logger *logging.Logger) *MemoryCache {
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryCache{data: make(map[string][]byte), logger: logger}
}

func (c *MemoryCache) Load(_ context.Context, sessionID string) (*Set, error) {
	c.mu.RLock()
	data := c.data[sessionID]
	c.mu.RUnlock()
	return decodeSet(c.logger, sessionID, data), nil
}

func (c *MemoryCache) Save(_ context.Context, sessionID string, set *Set) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("mapping: marshal set: %w", err)
	}
	c.mu.Lock()
	c.data[sessionID] = data
	c.mu.Unlock()
	return nil
}

// RedisCache stores sets as JSON strings with a sliding TTL.
type RedisCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisCache creates a Redis-backed cache. ttl <= 0 keeps entries forever.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisCache {
	if client == nil {
		panic("mapping: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{redis: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) key(sessionID string) string {
	return "booking-mappings:" + sessionID
}

func (c *RedisCache) Load(ctx context.Context, sessionID string) (*Set, error) {
	data, err := c.redis.Get(ctx, c.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("mapping: redis get: %w", err)
	}
	return decodeSet(c.logger, sessionID, data), nil
}

func (c *RedisCache) Save(ctx context.Context, sessionID string, set *Set) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("mapping: marshal set: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(sessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("mapping: redis set: %w", err)
	}
	return nil
}
