package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"kali/internal/logger"
)

// Client wraps redis.Client but fails safe: every error behaves like a miss.
// A nil *Client is a valid, always-empty cache.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// Ping reports whether Redis is reachable. The cache works either way.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// GetJSON decodes the cached value into dst and reports whether it was found.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.DebugContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.WarnContext(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON stores value with TTL, ignoring redis errors.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.DebugContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// AddJSON stores value with TTL only if key is absent and reports whether it
// was stored. Errors count as not stored.
func (c *Client) AddJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return false
	}
	stored, err := c.client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.DebugContext(ctx, "cache add failed", "key", key, "error", err)
		return false
	}
	return stored
}

// Delete removes keys, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.DebugContext(ctx, "cache delete failed", "keys", keys, "error", err)
	}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
