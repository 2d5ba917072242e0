package geocoding

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fips-geocoder/internal/config"
	"github.com/sells-group/fips-geocoder/internal/db"
)

// Cache stores enriched geocode results by address key.
type Cache interface {
	// Get returns the cached result for key. ok is false on a miss.
	Get(ctx context.Context, key string) (r *Result, ok bool, err error)
	// Set stores r under key for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, r *Result, ttl time.Duration) error
}

// CacheKey returns SHA-256 hex of the normalized address for cache lookup.
// dataVersion is the FIPS table fingerprint, so results enriched against
// older reference data are never served after the tables change.
func CacheKey(dataVersion, address string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(address), " "))
	h := sha256.Sum256([]byte(dataVersion + "\x00" + normalized))
	return fmt.Sprintf("%x", h)
}

// OpenCache builds the cache named by cfg.Driver. The returned close func
// releases its connections; both are nil for the "none" driver.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (Cache, func(), error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, eris.Wrap(err, "geocoding: parse redis url")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, eris.Wrap(err, "geocoding: ping redis")
		}
		return NewRedisCache(client, ""), func() { _ = client.Close() }, nil

	case "postgres":
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, eris.Wrap(err, "geocoding: connect cache database")
		}
		c := NewPostgresCache(pool, cfg.Table)
		if err := c.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return c, pool.Close, nil

	default:
		return nil, nil, eris.Errorf("geocoding: unknown cache driver %q", cfg.Driver)
	}
}
