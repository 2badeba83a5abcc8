// Package grpcserver exposes the records service over gRPC.
package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/neverland-admin/internal/api/recordsv1"
	"github.com/and161185/neverland-admin/internal/convert"
	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/service"
)

// Server wires the record service into gRPC handlers.
type Server struct {
	recordsv1.UnimplementedRecordsServer
	records service.RecordService
}

var _ recordsv1.RecordsServer = (*Server)(nil)

// New constructs a gRPC server with the injected service.
func New(records service.RecordService) *Server {
	return &Server{records: records}
}

// List returns every record of a collection.
func (s *Server) List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req recordsv1.ListRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	recs, err := s.records.List(ctx, req.Collection)
	if err != nil {
		return nil, toStatus("list", err)
	}
	return reply(recordsv1.ListResponse{Records: recs})
}

// Create stores a new record.
func (s *Server) Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req recordsv1.CreateRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	if len(req.Record) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty record")
	}
	op, _ := OperatorFromCtx(ctx)
	rec, err := s.records.Create(ctx, req.Collection, req.Record, op)
	if err != nil {
		return nil, toStatus("create", err)
	}
	return reply(recordsv1.RecordResponse{Record: rec})
}

// Update replaces a record with optimistic concurrency.
func (s *Server) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req recordsv1.UpdateRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	if len(req.Record) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty record")
	}
	op, _ := OperatorFromCtx(ctx)
	rec, err := s.records.Update(ctx, req.Collection, req.ID, req.BaseVersion, req.Record, op)
	if err != nil {
		return nil, toStatus("update", err)
	}
	return reply(recordsv1.RecordResponse{Record: rec})
}

// Delete removes a record with optimistic concurrency.
func (s *Server) Delete(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	var req recordsv1.DeleteRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	if err := s.records.Delete(ctx, req.Collection, req.ID, req.BaseVersion); err != nil {
		return nil, toStatus("delete", err)
	}
	return &emptypb.Empty{}, nil
}

func reply(v any) (*structpb.Struct, error) {
	out, err := convert.ToStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrVersionConflict):
		return status.Error(codes.FailedPrecondition, "version conflict")
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrUnknownCollection):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "no auth")
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
