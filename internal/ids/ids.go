// Package ids mints client-side identifiers that never collide within a process.
package ids

import (
	"strconv"
	"sync"
	"time"

	"github.com/and161185/neverland-admin/internal/model"
)

// Generator produces strictly increasing millisecond-derived numbers.
// Two calls within the same millisecond still yield distinct values.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewGenerator builds a generator reading the given clock; nil means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns max(now in ms, last+1).
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return n
}

// LocalID returns a fresh identifier in the local namespace, e.g. "local-1712345678901".
func (g *Generator) LocalID() string {
	return model.LocalIDPrefix + strconv.FormatInt(g.Next(), 10)
}
