package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered catalog responses in Redis as JSON blobs.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

// GetJSON loads the cached value for key into dst. The second return is
// false on a miss or decode failure.
func (c Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c.R == nil {
		return false
	}
	raw, err := c.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON stores v under key with the configured TTL. Errors are swallowed,
// a cold cache only costs a database round trip.
func (c Cache) SetJSON(ctx context.Context, key string, v any) {
	if c.R == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.R.Set(ctx, key, raw, c.TTL).Err()
}

// Invalidate drops cached catalog entries matching the given pattern.
func (c Cache) Invalidate(ctx context.Context, pattern string) error {
	if c.R == nil {
		return nil
	}
	iter := c.R.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.R.Del(ctx, keys...).Err()
}
