package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/neverland-admin/internal/cache"
	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/feed"
	"github.com/and161185/neverland-admin/internal/gateway"
	"github.com/and161185/neverland-admin/internal/ids"
	"github.com/and161185/neverland-admin/internal/model"
)

// Entity is implemented by pointers to the record types in package model.
type Entity[T any] interface {
	*T
	Ref() *model.Meta
	Label() string
	Clone() T
}

// env is shared by all collections of a store.
type env struct {
	log      *zap.Logger
	cache    cache.Cache
	sync     *SyncState
	activity *feed.Activity
	ids      *ids.Generator
	now      func() time.Time
}

// Collection is the in-memory authority for one record type.
// Every command holds the collection lock until it has settled.
type Collection[T any, P Entity[T]] struct {
	name   string
	noun   string
	remote gateway.Gateway // nil for local-only collections
	env    *env

	mu    sync.Mutex
	items []T
}

func newCollection[T any, P Entity[T]](
	ctx context.Context, e *env, name, noun string, remote gateway.Gateway, def []T,
) *Collection[T, P] {
	return &Collection[T, P]{
		name:   name,
		noun:   noun,
		remote: remote,
		env:    e,
		items:  cache.Load(ctx, e.cache, e.log, cache.Key(name), def),
	}
}

// Name returns the collection name.
func (c *Collection[T, P]) Name() string { return c.name }

// List returns a deep copy of the records, newest first.
func (c *Collection[T, P]) List() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	for i := range c.items {
		out[i] = P(&c.items[i]).Clone()
	}
	return out
}

// Len returns the number of records.
func (c *Collection[T, P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get returns a deep copy of the record with the given id.
func (c *Collection[T, P]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return P(&c.items[i]).Clone(), true
	}
	var zero T
	return zero, false
}

func (c *Collection[T, P]) indexOf(id string) int {
	for i := range c.items {
		if P(&c.items[i]).Ref().ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T, P]) online() bool {
	return c.remote != nil && c.env.sync.Available()
}

func (c *Collection[T, P]) degrade(op, id string, err error) {
	c.env.log.Warn("remote call failed, continuing locally",
		zap.String("collection", c.name),
		zap.String("op", op),
		zap.String("id", id),
		zap.Error(err),
	)
	c.env.sync.MarkDown(err)
}

func (c *Collection[T, P]) persist(ctx context.Context, next []T) error {
	if err := cache.Save(ctx, c.env.cache, cache.Key(c.name), next, c.env.now()); err != nil {
		c.env.log.Error("cache write failed", zap.String("collection", c.name), zap.Error(err))
		return err
	}
	return nil
}

func (c *Collection[T, P]) decode(raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("malformed %s record: %w", c.name, err)
	}
	if P(&v).Ref().ID == "" {
		return v, fmt.Errorf("malformed %s record: missing id", c.name)
	}
	return v, nil
}

// Add stores a new record at the front of the collection.
// The remote assigns id and version when reachable; otherwise the record gets a local id.
func (c *Collection[T, P]) Add(ctx context.Context, rec T) (Saved[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec = P(&rec).Clone()
	saved, origin := c.createRemote(ctx, rec)
	if origin == OriginNone {
		saved = rec
		*P(&saved).Ref() = model.Meta{ID: c.env.ids.LocalID()}
		if cs, ok := any(P(&saved)).(model.CreationStamper); ok {
			cs.StampCreated(c.env.now())
		}
		origin = OriginLocal
	}

	next := make([]T, 0, len(c.items)+1)
	next = append(next, saved)
	next = append(next, c.items...)
	if err := c.persist(ctx, next); err != nil {
		return Saved[T]{}, err
	}
	c.items = next
	c.env.activity.Record(c.name, fmt.Sprintf("%s added: %s", c.noun, P(&saved).Label()))
	return Saved[T]{Record: P(&saved).Clone(), Origin: origin}, nil
}

func (c *Collection[T, P]) createRemote(ctx context.Context, rec T) (T, Origin) {
	var zero T
	if !c.online() {
		return zero, OriginNone
	}
	body := rec
	*P(&body).Ref() = model.Meta{}

	raw, err := json.Marshal(body)
	if err == nil {
		raw, err = c.remote.Create(ctx, c.name, raw)
	}
	var got T
	if err == nil {
		got, err = c.decode(raw)
	}
	if err != nil {
		c.degrade("create", "", err)
		return zero, OriginNone
	}
	return got, OriginRemote
}

// Update replaces the record with the given id by patch.
//
// An unknown id is a no-op. A non-zero patch version must match the stored
// version, otherwise errs.ErrVersionConflict is returned and nothing changes.
// A conflict reported by the remote is returned the same way.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch T) (Saved[T], error) {
	return c.modify(ctx, id, func(cur T) (T, bool, error) {
		base, have := P(&patch).Ref().Version, P(&cur).Ref().Version
		if base != 0 && base != have {
			return patch, false, fmt.Errorf("%s %s: base version %d, stored %d: %w",
				c.name, id, base, have, errs.ErrVersionConflict)
		}
		return P(&patch).Clone(), true, nil
	}, func(rec *T) string {
		return fmt.Sprintf("%s updated: %s", c.noun, P(rec).Label())
	})
}

// Modify applies fn to a deep copy of the stored record and saves the result like Update.
func (c *Collection[T, P]) Modify(ctx context.Context, id string, fn func(*T) error) (Saved[T], error) {
	return c.modify(ctx, id, func(cur T) (T, bool, error) {
		err := fn(&cur)
		return cur, err == nil, err
	}, func(rec *T) string {
		return fmt.Sprintf("%s updated: %s", c.noun, P(rec).Label())
	})
}

// mutate returns the replacement record; changed=false turns the command into a no-op.
type mutateFn[T any] func(cur T) (next T, changed bool, err error)

func (c *Collection[T, P]) modify(
	ctx context.Context, id string, mutate mutateFn[T], message func(*T) string,
) (Saved[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return Saved[T]{}, nil
	}
	cur := c.items[i]
	next, changed, err := mutate(P(&cur).Clone())
	if err != nil {
		return Saved[T]{}, err
	}
	if !changed {
		return Saved[T]{Record: P(&cur).Clone()}, nil
	}
	*P(&next).Ref() = *P(&cur).Ref()

	origin := OriginLocal
	if c.online() && !model.IsLocalID(id) {
		got, err := c.updateRemote(ctx, id, next)
		switch {
		case err == nil:
			next, origin = got, OriginRemote
		case errors.Is(err, errs.ErrVersionConflict):
			c.env.log.Info("remote rejected stale update",
				zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
			return Saved[T]{}, fmt.Errorf("%s %s: %w", c.name, id, err)
		default:
			c.degrade("update", id, err)
		}
	}

	updated := slices.Clone(c.items)
	updated[i] = next
	if err := c.persist(ctx, updated); err != nil {
		return Saved[T]{}, err
	}
	c.items = updated
	c.env.activity.Record(c.name, message(&next))
	return Saved[T]{Record: P(&next).Clone(), Origin: origin}, nil
}

func (c *Collection[T, P]) updateRemote(ctx context.Context, id string, next T) (T, error) {
	var zero T
	raw, err := json.Marshal(next)
	if err != nil {
		return zero, err
	}
	raw, err = c.remote.Update(ctx, c.name, id, P(&next).Ref().Version, raw)
	if err != nil {
		return zero, err
	}
	return c.decode(raw)
}

// Remove deletes the record with the given id locally whatever the remote answers.
// An unknown id is a no-op.
func (c *Collection[T, P]) Remove(ctx context.Context, id string) (Saved[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return Saved[T]{}, nil
	}
	cur := c.items[i]

	origin := OriginLocal
	if c.online() && !model.IsLocalID(id) {
		err := c.remote.Delete(ctx, c.name, id, P(&cur).Ref().Version)
		switch {
		case err == nil, errors.Is(err, errs.ErrNotFound):
			origin = OriginRemote
		case errors.Is(err, errs.ErrVersionConflict):
			c.env.log.Warn("remote copy changed since last sync, removing locally only",
				zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
		default:
			c.degrade("delete", id, err)
		}
	}

	next := slices.Delete(slices.Clone(c.items), i, i+1)
	if err := c.persist(ctx, next); err != nil {
		return Saved[T]{}, err
	}
	c.items = next
	c.env.activity.Record(c.name, fmt.Sprintf("%s deleted: %s", c.noun, P(&cur).Label()))
	return Saved[T]{Record: cur, Origin: origin}, nil
}

// Refresh replaces the collection with the remote copy, keeping records that
// only exist locally. It always contacts the remote regardless of the sync
// state and marks the remote available on success. On failure the local copy
// stays in place and OriginLocal is returned.
func (c *Collection[T, P]) Refresh(ctx context.Context) (Origin, error) {
	if c.remote == nil {
		return OriginNone, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	raws, err := c.remote.List(ctx, c.name)
	if err != nil {
		c.degrade("list", "", err)
		return OriginLocal, nil
	}
	fetched := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := c.decode(raw)
		if err != nil {
			c.degrade("list", "", err)
			return OriginLocal, nil
		}
		fetched = append(fetched, v)
	}

	next := make([]T, 0, len(fetched))
	for _, it := range c.items {
		if model.IsLocalID(P(&it).Ref().ID) {
			next = append(next, it)
		}
	}
	next = append(next, fetched...)

	if err := c.persist(ctx, next); err != nil {
		return OriginNone, err
	}
	c.items = next
	c.env.sync.MarkUp()
	return OriginRemote, nil
}
