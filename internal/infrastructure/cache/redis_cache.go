package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AnalyticsCache is a short-TTL read-through cache in front of the analytics
// queries. It is strictly best effort: cache failures are logged and treated
// as misses, never surfaced to callers. A nil *AnalyticsCache is valid and
// disables caching.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewAnalyticsCache connects to Redis and verifies the connection.
func NewAnalyticsCache(addr string, ttl time.Duration, logger zerolog.Logger) (*AnalyticsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &AnalyticsCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get unmarshals a cached value into dest. Returns false on miss or on any
// cache failure.
func (c *AnalyticsCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache entry corrupt, ignoring")
		return false
	}
	return true
}

// Set stores a value under the configured TTL, best effort.
func (c *AnalyticsCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Close releases the underlying client.
func (c *AnalyticsCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
