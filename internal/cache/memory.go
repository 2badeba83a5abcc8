package cache

import (
	"bytes"
	"context"
	"sync"
)

// Memory is a process-local Cache used for offline sessions without a data directory.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory { return &Memory{m: map[string][]byte{}} }

// Get implements Cache.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return bytes.Clone(v), ok, nil
}

// Put implements Cache.
func (c *Memory) Put(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = bytes.Clone(value)
	return nil
}

// Close implements Cache.
func (c *Memory) Close() error { return nil }
