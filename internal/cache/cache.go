// Package cache persists collection snapshots between sessions.
//
// Backends store opaque values per key; this package wraps records in a
// versioned envelope and degrades to defaults when an entry cannot be used.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CurrentSchemaVersion is written into every envelope. Entries with another
// version are ignored on load.
const CurrentSchemaVersion = 1

// KeyPrefix namespaces collection keys.
const KeyPrefix = "dashboard_"

// Key returns the storage key of a collection, e.g. "dashboard_games".
func Key(collection string) string { return KeyPrefix + collection }

// Cache is a durable key/value store.
type Cache interface {
	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Close releases backend resources.
	Close() error
}

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	SavedAt       time.Time       `json:"savedAt"`
	Records       json.RawMessage `json:"records"`
}

// Load reads the records stored under key.
// A missing, unreadable, corrupt or foreign-schema entry yields def; Load never fails.
func Load[T any](ctx context.Context, c Cache, log *zap.Logger, key string, def []T) []T {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed, using defaults", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn("cache entry corrupt, using defaults", zap.String("key", key), zap.Error(err))
		return def
	}
	if env.SchemaVersion != CurrentSchemaVersion {
		log.Warn("cache schema mismatch, using defaults",
			zap.String("key", key),
			zap.Int("found", env.SchemaVersion),
			zap.Int("want", CurrentSchemaVersion),
		)
		return def
	}

	var out []T
	if err := json.Unmarshal(env.Records, &out); err != nil || out == nil {
		log.Warn("cache records unreadable, using defaults", zap.String("key", key), zap.Error(err))
		return def
	}
	return out
}

// Save replaces the records stored under key.
func Save[T any](ctx context.Context, c Cache, key string, records []T, now time.Time) error {
	if records == nil {
		records = []T{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	raw, err := json.Marshal(envelope{SchemaVersion: CurrentSchemaVersion, SavedAt: now.UTC(), Records: body})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
