// Package cache provides Redis-backed implementations of the caching ports.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

const (
	dedupKeyPrefix = "m21:dedup:"
	focusKeyPrefix = "m21:focus:"
)

// Connect opens and validates a Redis client.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisEventDedupStore keys processed event IDs with a TTL.
type RedisEventDedupStore struct {
	client *redis.Client
}

var _ ports.EventDedupStore = (*RedisEventDedupStore)(nil)

func NewRedisEventDedupStore(client *redis.Client) *RedisEventDedupStore {
	return &RedisEventDedupStore{client: client}
}

func (s *RedisEventDedupStore) IsDuplicate(ctx context.Context, eventID string, _ time.Time) (bool, error) {
	n, err := s.client.Exists(ctx, dedupKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("check event dedup: %w", err)
	}
	return n > 0, nil
}

func (s *RedisEventDedupStore) MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, dedupKeyPrefix+eventID, eventType, ttl).Err(); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

// RedisFocusListCache holds one serialized focus list per agent.
type RedisFocusListCache struct {
	client *redis.Client
}

var _ ports.FocusListCache = (*RedisFocusListCache)(nil)

func NewRedisFocusListCache(client *redis.Client) *RedisFocusListCache {
	return &RedisFocusListCache{client: client}
}

func (c *RedisFocusListCache) Get(ctx context.Context, agentID string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, focusKeyPrefix+agentID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get focus list cache: %w", err)
	}
	return payload, true, nil
}

func (c *RedisFocusListCache) Set(ctx context.Context, agentID string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, focusKeyPrefix+agentID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set focus list cache: %w", err)
	}
	return nil
}

func (c *RedisFocusListCache) Invalidate(ctx context.Context, agentID string) error {
	if err := c.client.Del(ctx, focusKeyPrefix+agentID).Err(); err != nil {
		return fmt.Errorf("invalidate focus list cache: %w", err)
	}
	return nil
}
