// Package repository declares storage contracts of the records service.
package repository

import (
	"context"

	"github.com/and161185/neverland-admin/internal/model"
)

// RecordRepository provides versioned access to record documents.
type RecordRepository interface {
	// List returns all records of a collection, newest first.
	List(ctx context.Context, collection string) ([]model.StoredRecord, error)

	// Insert stores a new record at version 1.
	Insert(ctx context.Context, rec model.StoredRecord) (model.StoredRecord, error)

	// Update replaces the document (ver++). baseVer 0 skips the version check.
	Update(ctx context.Context, collection, id string, baseVer int64, doc []byte, by string) (model.StoredRecord, error)

	// Delete removes a record. baseVer 0 skips the version check.
	Delete(ctx context.Context, collection, id string, baseVer int64) error
}
