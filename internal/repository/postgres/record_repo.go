package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/model"
	"github.com/and161185/neverland-admin/internal/repository"
	"github.com/jackc/pgx/v5"
)

// RecordRepo implements RecordRepository using PostgreSQL.
type RecordRepo struct{ db *DB }

var _ repository.RecordRepository = (*RecordRepo)(nil)

// NewRecordRepo constructs a record repository.
func NewRecordRepo(db *DB) *RecordRepo { return &RecordRepo{db: db} }

const (
	selRecords = `SELECT id, ver, doc, created_at, updated_at, updated_by FROM records WHERE collection=$1 ORDER BY created_at DESC, id`
	selLock    = `SELECT ver FROM records WHERE collection=$1 AND id=$2 FOR UPDATE`
	insRecord  = `INSERT INTO records (collection, id, ver, doc, updated_by) VALUES ($1,$2,1,$3,$4) RETURNING created_at, updated_at`
	updRecord  = `UPDATE records SET doc=$3, ver=$4, updated_at=now(), updated_by=$5 WHERE collection=$1 AND id=$2 RETURNING created_at, updated_at`
	delRecord  = `DELETE FROM records WHERE collection=$1 AND id=$2`
)

// List returns every record of the collection, newest first.
func (r *RecordRepo) List(ctx context.Context, collection string) ([]model.StoredRecord, error) {
	rows, err := r.db.Pool.Query(ctx, selRecords, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.StoredRecord, 0)
	for rows.Next() {
		rec := model.StoredRecord{Collection: collection}
		if err := rows.Scan(&rec.ID, &rec.Ver, &rec.Doc, &rec.CreatedAt, &rec.UpdatedAt, &rec.UpdatedBy); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Insert stores a new record at version 1.
func (r *RecordRepo) Insert(ctx context.Context, rec model.StoredRecord) (model.StoredRecord, error) {
	row := r.db.Pool.QueryRow(ctx, insRecord, rec.Collection, rec.ID, rec.Doc, rec.UpdatedBy)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if isDuplicateID(err) {
			return model.StoredRecord{}, fmt.Errorf("%s/%s: %w", rec.Collection, rec.ID, errs.ErrAlreadyExists)
		}
		return model.StoredRecord{}, err
	}
	rec.Ver = 1
	return rec, nil
}

// Update replaces the document with optimistic concurrency.
func (r *RecordRepo) Update(
	ctx context.Context, collection, id string, baseVer int64, doc []byte, by string,
) (rec model.StoredRecord, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.StoredRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	cur, err := lockVersion(ctx, tx, collection, id, baseVer)
	if err != nil {
		return model.StoredRecord{}, err
	}

	rec = model.StoredRecord{Collection: collection, ID: id, Ver: cur + 1, Doc: doc, UpdatedBy: by}
	if err = tx.QueryRow(ctx, updRecord, collection, id, doc, rec.Ver, by).Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return model.StoredRecord{}, err
	}
	return rec, nil
}

// Delete removes a record with optimistic concurrency.
func (r *RecordRepo) Delete(ctx context.Context, collection, id string, baseVer int64) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if _, err = lockVersion(ctx, tx, collection, id, baseVer); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, delRecord, collection, id)
	return err
}

// lockVersion locks the row and checks baseVer against the stored version.
func lockVersion(ctx context.Context, tx pgx.Tx, collection, id string, baseVer int64) (int64, error) {
	var cur int64
	if err := tx.QueryRow(ctx, selLock, collection, id).Scan(&cur); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s/%s: %w", collection, id, errs.ErrNotFound)
		}
		return 0, err
	}
	if baseVer != 0 && baseVer != cur {
		return 0, fmt.Errorf("%s/%s at %d, base %d: %w", collection, id, cur, baseVer, errs.ErrVersionConflict)
	}
	return cur, nil
}
