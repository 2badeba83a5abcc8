// Package gateway is the client side of the records service.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/neverland-admin/internal/api/recordsv1"
	"github.com/and161185/neverland-admin/internal/convert"
	"github.com/and161185/neverland-admin/internal/errs"
)

// Gateway performs CRUD against the remote records service.
// Every failure is reported as an error; callers decide how to degrade.
type Gateway interface {
	// List returns every record of a collection.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	// Create stores a new record and returns it with server-assigned id and version.
	Create(ctx context.Context, collection string, record json.RawMessage) (json.RawMessage, error)
	// Update replaces record id. baseVersion 0 skips the version check.
	Update(ctx context.Context, collection, id string, baseVersion int64, record json.RawMessage) (json.RawMessage, error)
	// Delete removes record id. baseVersion 0 skips the version check.
	Delete(ctx context.Context, collection, id string, baseVersion int64) error
}

// DefaultTimeout bounds a single remote call when none is configured.
const DefaultTimeout = 10 * time.Second

// GRPC implements Gateway over the Records service.
type GRPC struct {
	client  recordsv1.RecordsClient
	timeout time.Duration
}

var _ Gateway = (*GRPC)(nil)

// NewGRPC binds a gateway to a connection. timeout <= 0 selects DefaultTimeout.
func NewGRPC(cc grpc.ClientConnInterface, timeout time.Duration) *GRPC {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GRPC{client: recordsv1.NewRecordsClient(cc), timeout: timeout}
}

// List implements Gateway.
func (g *GRPC) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	in, err := convert.ToStruct(recordsv1.ListRequest{Collection: collection})
	if err != nil {
		return nil, err
	}
	resp, err := g.client.List(ctx, in)
	if err != nil {
		return nil, mapError(err)
	}
	var out recordsv1.ListResponse
	if err := convert.FromStruct(resp, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out.Records, nil
}

// Create implements Gateway.
func (g *GRPC) Create(ctx context.Context, collection string, record json.RawMessage) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	in, err := convert.ToStruct(recordsv1.CreateRequest{Collection: collection, Record: record})
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Create(ctx, in)
	if err != nil {
		return nil, mapError(err)
	}
	return recordOf(resp)
}

// Update implements Gateway.
func (g *GRPC) Update(ctx context.Context, collection, id string, baseVersion int64, record json.RawMessage) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	in, err := convert.ToStruct(recordsv1.UpdateRequest{
		Collection: collection, ID: id, BaseVersion: baseVersion, Record: record,
	})
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Update(ctx, in)
	if err != nil {
		return nil, mapError(err)
	}
	return recordOf(resp)
}

// Delete implements Gateway.
func (g *GRPC) Delete(ctx context.Context, collection, id string, baseVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	in, err := convert.ToStruct(recordsv1.DeleteRequest{Collection: collection, ID: id, BaseVersion: baseVersion})
	if err != nil {
		return err
	}
	if _, err := g.client.Delete(ctx, in); err != nil {
		return mapError(err)
	}
	return nil
}

func recordOf(s *structpb.Struct) (json.RawMessage, error) {
	var out recordsv1.RecordResponse
	if err := convert.FromStruct(s, &out); err != nil {
		return nil, err
	}
	if len(out.Record) == 0 {
		return nil, errors.New("empty record in response")
	}
	return out.Record, nil
}

// mapError translates gRPC status codes into sentinels.
// Codes without a dedicated sentinel count as the remote being unavailable.
func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", errs.ErrNotFound, st.Message())
	case codes.FailedPrecondition, codes.Aborted:
		return fmt.Errorf("%w: %s", errs.ErrVersionConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", errs.ErrValidation, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", errs.ErrUnauthorized, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", errs.ErrUnavailable, st.Code(), st.Message())
	}
}
