// Package service contains the application services of the records server.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/model"
	"github.com/and161185/neverland-admin/internal/repository"
)

// RecordService validates storefront records and stores them with versioning.
type RecordService interface {
	// List returns every record of a collection, newest first.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	// Create validates and stores a new record. An empty id is assigned by the server.
	Create(ctx context.Context, collection string, record json.RawMessage, by string) (json.RawMessage, error)
	// Update replaces a record with optimistic concurrency (baseVer 0 skips the check).
	Update(ctx context.Context, collection, id string, baseVer int64, record json.RawMessage, by string) (json.RawMessage, error)
	// Delete removes a record with optimistic concurrency (baseVer 0 skips the check).
	Delete(ctx context.Context, collection, id string, baseVer int64) error
}

// codec converts between wire records and stored documents of one collection.
type codec interface {
	// normalize decodes and validates a record, returning its id and the document without metadata.
	// A non-zero created defaults the creation time of records that carry one.
	normalize(raw json.RawMessage, created time.Time) (id string, doc []byte, err error)
	// present renders a stored record with its metadata.
	present(rec model.StoredRecord) (json.RawMessage, error)
}

type validated[T any] interface {
	*T
	Ref() *model.Meta
	Validate() error
}

type typedCodec[T any, P validated[T]] struct{}

func (typedCodec[T, P]) normalize(raw json.RawMessage, created time.Time) (string, []byte, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	p := P(&v)
	if cs, ok := any(p).(model.CreationStamper); ok && !created.IsZero() {
		cs.StampCreated(created)
	}
	if err := p.Validate(); err != nil {
		return "", nil, err
	}
	id := p.Ref().ID
	*p.Ref() = model.Meta{}
	doc, err := json.Marshal(p)
	return id, doc, err
}

func (typedCodec[T, P]) present(rec model.StoredRecord) (json.RawMessage, error) {
	var v T
	if err := json.Unmarshal(rec.Doc, &v); err != nil {
		return nil, fmt.Errorf("stored %s/%s: %w", rec.Collection, rec.ID, err)
	}
	p := P(&v)
	*p.Ref() = model.Meta{ID: rec.ID, Version: rec.Ver, UpdatedAt: rec.UpdatedAt}
	return json.Marshal(p)
}

var codecs = map[string]codec{
	model.CollectionGames:        typedCodec[model.Game, *model.Game]{},
	model.CollectionOrders:       typedCodec[model.Order, *model.Order]{},
	model.CollectionFlashSales:   typedCodec[model.FlashSale, *model.FlashSale]{},
	model.CollectionTestimonials: typedCodec[model.Testimonial, *model.Testimonial]{},
	model.CollectionFAQs:         typedCodec[model.FAQ, *model.FAQ]{},
}

// RecordServiceImpl is the default RecordService.
type RecordServiceImpl struct {
	repo  repository.RecordRepository
	newID func() (uuid.UUID, error)
	now   func() time.Time
}

// NewRecordService constructs RecordService over a repository.
func NewRecordService(repo repository.RecordRepository) *RecordServiceImpl {
	return &RecordServiceImpl{repo: repo, newID: uuid.NewV7, now: time.Now}
}

func codecFor(collection string) (codec, error) {
	c, ok := codecs[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownCollection, collection)
	}
	return c, nil
}

// List implements RecordService.
func (s *RecordServiceImpl) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	c, err := codecFor(collection)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		raw, err := c.present(r)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// Create implements RecordService.
func (s *RecordServiceImpl) Create(ctx context.Context, collection string, record json.RawMessage, by string) (json.RawMessage, error) {
	c, err := codecFor(collection)
	if err != nil {
		return nil, err
	}
	id, doc, err := c.normalize(record, s.now())
	if err != nil {
		return nil, err
	}
	if model.IsLocalID(id) {
		return nil, fmt.Errorf("%w: client-local id %q", errs.ErrValidation, id)
	}
	if id == "" {
		u, err := s.newID()
		if err != nil {
			return nil, err
		}
		id = u.String()
	}
	rec, err := s.repo.Insert(ctx, model.StoredRecord{Collection: collection, ID: id, Doc: doc, UpdatedBy: by})
	if err != nil {
		return nil, err
	}
	return c.present(rec)
}

// Update implements RecordService.
func (s *RecordServiceImpl) Update(
	ctx context.Context, collection, id string, baseVer int64, record json.RawMessage, by string,
) (json.RawMessage, error) {
	c, err := codecFor(collection)
	if err != nil {
		return nil, err
	}
	if id == "" || baseVer < 0 {
		return nil, fmt.Errorf("%w: empty id or negative base version", errs.ErrValidation)
	}
	_, doc, err := c.normalize(record, time.Time{})
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.Update(ctx, collection, id, baseVer, doc, by)
	if err != nil {
		return nil, err
	}
	return c.present(rec)
}

// Delete implements RecordService.
func (s *RecordServiceImpl) Delete(ctx context.Context, collection, id string, baseVer int64) error {
	if _, err := codecFor(collection); err != nil {
		return err
	}
	if id == "" || baseVer < 0 {
		return fmt.Errorf("%w: empty id or negative base version", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, collection, id, baseVer)
}
