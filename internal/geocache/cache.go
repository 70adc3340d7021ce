// Package geocache persists the fetched EPCI feature collection in a local
// SQLite store so a map session can skip the network for a week.
package geocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/diag360/territory-cli/internal/geodata"
)

// DefaultTTL bounds how long a cached collection stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// cacheKey is the single entry key; the cache holds one dataset.
const cacheKey = "epci_geojson"

// Cache is a time-boxed single-entry store for the geographic asset.
// Reads never fail: corruption and expiry degrade to a miss.
type Cache struct {
	db  *sql.DB
	ttl time.Duration

	mu      sync.Mutex
	onClear []func()

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the default 7-day time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithNow sets a fixed clock for testing.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.nowFunc = now }
}

// Open opens (or creates) the cache database at the given path and runs
// the schema migration. WAL mode keeps concurrent CLI invocations safe.
func Open(dsn string, opts ...Option) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocache: exec %s", pragma)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS geo_cache (
			key       TEXT PRIMARY KEY,
			payload   BLOB NOT NULL,
			stored_at INTEGER NOT NULL
		)`); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "geocache: migrate")
	}

	c := &Cache{db: db, ttl: DefaultTTL, nowFunc: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Read returns the cached feature collection when present and younger than
// the TTL. Expired entries are evicted. A payload that no longer parses is
// treated as a miss and logged, never surfaced as an error.
func (c *Cache) Read(ctx context.Context) (*geodata.FeatureCollection, bool) {
	var payload []byte
	var storedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, stored_at FROM geo_cache WHERE key = ?`, cacheKey,
	).Scan(&payload, &storedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			zap.L().Warn("geocache: read failed", zap.Error(err))
		}
		return nil, false
	}

	age := c.nowFunc().UnixMilli() - storedAt
	if age > c.ttl.Milliseconds() {
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM geo_cache WHERE key = ?`, cacheKey); err != nil {
			zap.L().Warn("geocache: evict expired entry failed", zap.Error(err))
		}
		return nil, false
	}

	var fc geodata.FeatureCollection
	if err := json.Unmarshal(payload, &fc); err != nil {
		zap.L().Warn("geocache: cached payload corrupt, treating as miss", zap.Error(err))
		return nil, false
	}
	return &fc, true
}

// Write stores the raw payload with the current timestamp. The payload is
// stored unfiltered so a later session can re-filter it. Returns false on
// storage failure (disk full, locked database); prior cache state is then
// undefined.
func (c *Cache) Write(ctx context.Context, payload []byte) bool {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geo_cache (key, payload, stored_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at`,
		cacheKey, payload, c.nowFunc().UnixMilli(),
	)
	if err != nil {
		zap.L().Warn("geocache: write failed", zap.Error(err))
		return false
	}
	return true
}

// Clear removes the cached entry unconditionally and fires the registered
// reset hooks (the session uses one to re-arm its one-shot debug dump).
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM geo_cache WHERE key = ?`, cacheKey); err != nil {
		return eris.Wrap(err, "geocache: clear")
	}

	c.mu.Lock()
	hooks := make([]func(), len(c.onClear))
	copy(hooks, c.onClear)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	zap.L().Info("geocache: cleared")
	return nil
}

// RegisterOnClear registers a hook invoked after every Clear.
func (c *Cache) RegisterOnClear(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClear = append(c.onClear, fn)
}

// Status describes the current cache entry for inspection commands.
type Status struct {
	Present  bool
	StoredAt time.Time
	Age      time.Duration
	Expired  bool
	Bytes    int
}

// Stat reports on the cache entry without evicting it.
func (c *Cache) Stat(ctx context.Context) (Status, error) {
	var payload []byte
	var storedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, stored_at FROM geo_cache WHERE key = ?`, cacheKey,
	).Scan(&payload, &storedAt)
	if err == sql.ErrNoRows {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, eris.Wrap(err, "geocache: stat")
	}

	stored := time.UnixMilli(storedAt)
	age := c.nowFunc().Sub(stored)
	return Status{
		Present:  true,
		StoredAt: stored,
		Age:      age,
		Expired:  age > c.ttl,
		Bytes:    len(payload),
	}, nil
}
