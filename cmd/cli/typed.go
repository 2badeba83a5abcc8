package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/model"
	"github.com/and161185/neverland-admin/internal/store"
)

// collectionCmd is the console view of one store collection.
type collectionCmd interface {
	list() any
	count() int
	get(id string) (any, bool)
	add(ctx context.Context, raw []byte) (any, store.Origin, error)
	update(ctx context.Context, id string, raw []byte) (any, store.Origin, error)
	remove(ctx context.Context, id string) (any, store.Origin, error)
}

type validator interface{ Validate() error }

type typed[T any, P store.Entity[T]] struct {
	c *store.Collection[T, P]
}

func (t typed[T, P]) list() any { return t.c.List() }

func (t typed[T, P]) count() int { return t.c.Len() }

func (t typed[T, P]) get(id string) (any, bool) {
	return t.c.Get(id)
}

func decodeInto[T any, P store.Entity[T]](raw []byte, rec *T) error {
	if err := json.Unmarshal(raw, rec); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	if v, ok := any(P(rec)).(validator); ok {
		return v.Validate()
	}
	return nil
}

func (t typed[T, P]) add(ctx context.Context, raw []byte) (any, store.Origin, error) {
	var rec T
	if err := decodeInto[T, P](raw, &rec); err != nil {
		return nil, store.OriginNone, err
	}
	saved, err := t.c.Add(ctx, rec)
	return saved.Record, saved.Origin, err
}

// update merges raw over the stored record, so partial objects only touch the given fields.
func (t typed[T, P]) update(ctx context.Context, id string, raw []byte) (any, store.Origin, error) {
	cur, ok := t.c.Get(id)
	if !ok {
		return nil, store.OriginNone, fmt.Errorf("%s %s: %w", t.c.Name(), id, errs.ErrNotFound)
	}
	if err := decodeInto[T, P](raw, &cur); err != nil {
		return nil, store.OriginNone, err
	}
	saved, err := t.c.Update(ctx, id, cur)
	return saved.Record, saved.Origin, err
}

func (t typed[T, P]) remove(ctx context.Context, id string) (any, store.Origin, error) {
	saved, err := t.c.Remove(ctx, id)
	if err == nil && !saved.Changed() {
		return nil, store.OriginNone, fmt.Errorf("%s %s: %w", t.c.Name(), id, errs.ErrNotFound)
	}
	return saved.Record, saved.Origin, err
}

func collections(st *store.Store) map[string]collectionCmd {
	return map[string]collectionCmd{
		"games":        typed[model.Game, *model.Game]{st.Games},
		"orders":       typed[model.Order, *model.Order]{st.Orders},
		"sales":        typed[model.FlashSale, *model.FlashSale]{st.FlashSales},
		"testimonials": typed[model.Testimonial, *model.Testimonial]{st.Testimonials},
		"faqs":         typed[model.FAQ, *model.FAQ]{st.FAQs},
		"users":        typed[model.User, *model.User]{st.Users},
	}
}
