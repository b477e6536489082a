// Package cache provides the response cache used by the request client.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"hihimaps/pkg/db"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// SQLiteCache implements Cacher on top of pkg/db. Entries live until
// PruneCache evicts them; the cache holds API responses only, never app state.
type SQLiteCache struct {
	db *db.DB
}

// NewSQLiteCache creates a new cache.
func NewSQLiteCache(d *db.DB) *SQLiteCache {
	return &SQLiteCache{db: d}
}

func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := c.db.QueryRowContext(ctx, "SELECT value FROM cache WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *SQLiteCache) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO cache (key, value, created_at) VALUES (?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = CURRENT_TIMESTAMP",
		key, val)
	return err
}

// NullCache is a Cacher that never hits. Used where caching is undesirable.
type NullCache struct{}

func (NullCache) GetCache(context.Context, string) ([]byte, bool) { return nil, false }
func (NullCache) SetCache(context.Context, string, []byte) error  { return nil }
