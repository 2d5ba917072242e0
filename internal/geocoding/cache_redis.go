package geocoding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const defaultRedisPrefix = "fipsgeo:geocode:"

// RedisCache keeps results as JSON strings with a Redis TTL.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache returns a RedisCache. An empty prefix uses the default key prefix.
func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "geocoding: redis get")
	}

	var r Result
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, false, eris.Wrap(err, "geocoding: decode cached result")
	}
	return &r, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, r *Result, ttl time.Duration) error {
	b, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "geocoding: encode result")
	}
	if err := c.client.Set(ctx, c.prefix+key, b, ttl).Err(); err != nil {
		return eris.Wrap(err, "geocoding: redis set")
	}
	return nil
}
