package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fips-geocoder/internal/db"
)

// PostgresCache keeps results as JSONB rows keyed by address hash.
type PostgresCache struct {
	pool  db.Pool
	table string
}

// NewPostgresCache returns a PostgresCache over table. An empty table uses
// public.geocode_cache.
func NewPostgresCache(pool db.Pool, table string) *PostgresCache {
	if table == "" {
		table = "public.geocode_cache"
	}
	return &PostgresCache{pool: pool, table: table}
}

// EnsureSchema creates the cache table if it does not exist.
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			address_hash TEXT PRIMARY KEY,
			result JSONB NOT NULL,
			expires_at TIMESTAMPTZ,
			cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, db.SanitizeTable(c.table)))
	if err != nil {
		return eris.Wrapf(err, "geocoding: create cache table %s", c.table)
	}
	return nil
}

// Get implements Cache. Expired rows read as misses.
func (c *PostgresCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	query := fmt.Sprintf(
		"SELECT result FROM %s WHERE address_hash = $1 AND (expires_at IS NULL OR expires_at > now())",
		db.SanitizeTable(c.table),
	)

	var raw []byte
	if err := c.pool.QueryRow(ctx, query, key).Scan(&raw); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocoding: read cache")
	}

	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, eris.Wrap(err, "geocoding: decode cached result")
	}
	return &r, true, nil
}

// Set implements Cache.
func (c *PostgresCache) Set(ctx context.Context, key string, r *Result, ttl time.Duration) error {
	b, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "geocoding: encode result")
	}

	query, err := db.UpsertSQL(db.UpsertConfig{
		Table:        c.table,
		Columns:      []string{"address_hash", "result", "expires_at"},
		ConflictKeys: []string{"address_hash"},
		Touch:        "cached_at",
	})
	if err != nil {
		return eris.Wrap(err, "geocoding: build cache upsert")
	}

	if _, err := c.pool.Exec(ctx, query, key, b, expiresAt(ttl)); err != nil {
		return eris.Wrap(err, "geocoding: store cache")
	}
	return nil
}

// expiresAt returns nil for a zero ttl, allowing NULL storage in Postgres.
func expiresAt(ttl time.Duration) any {
	if ttl <= 0 {
		return nil
	}
	return time.Now().Add(ttl).UTC()
}
