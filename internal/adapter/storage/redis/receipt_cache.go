package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReceiptCache implements ports.ReceiptCache. It remembers the outcome of
// each processed notification so gateway retries short-circuit before the
// database is touched.
type ReceiptCache struct {
	client goredis.Cmdable
	prefix string
}

// NewReceiptCache creates a Redis-backed receipt cache.
func NewReceiptCache(client goredis.Cmdable) *ReceiptCache {
	return &ReceiptCache{
		client: client,
		prefix: "pos:receipt:",
	}
}

// Get returns the cached outcome, or nil when the key is absent or expired.
func (c *ReceiptCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis receipt get: %w", err)
	}
	return val, nil
}

// Set stores the outcome for ttl. An existing receipt is overwritten.
func (c *ReceiptCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis receipt set: %w", err)
	}
	return nil
}
