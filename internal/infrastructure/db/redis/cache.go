package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RollupCache is a fail-safe cache for analytics rollups. Redis errors are
// logged and then behave like misses, so an unavailable cache never takes the
// analytics endpoints down with it.
type RollupCache struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRollupCache(client *redis.Client, log zerolog.Logger) *RollupCache {
	return &RollupCache{client: client, log: log}
}

// Get returns the cached value and whether it was present.
func (c *RollupCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("rollup cache read failed")
		return nil, false
	}
	return raw, true
}

// Set stores the value with a TTL, swallowing Redis errors.
func (c *RollupCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("rollup cache write failed")
	}
}
