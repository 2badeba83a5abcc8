// Package sqlite stores cache entries in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/and161185/neverland-admin/internal/cache"
	"github.com/and161185/neverland-admin/internal/migrate"
)

// DBTX is the subset of *sql.DB used by the cache.
type DBTX interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

// Cache implements cache.Cache on the cache_entries table.
type Cache struct {
	db  DBTX
	now func() time.Time
}

var _ cache.Cache = (*Cache)(nil)

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY between concurrent collection saves
	db.SetMaxOpenConns(1)
	if err := migrate.UpSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite cache migrate: %w", err)
	}
	return New(db), nil
}

// New wraps an already migrated handle.
func New(db DBTX) *Cache { return &Cache{db: db, now: time.Now} }

// Get implements cache.Cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	return value, true, nil
}

// Put implements cache.Cache.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, c.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set cache[%s]: %w", key, err)
	}
	return nil
}

// Close implements cache.Cache.
func (c *Cache) Close() error { return c.db.Close() }
