package recordsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "neverland.records.v1.Records"

const (
	ListFullMethodName   = "/" + ServiceName + "/List"
	CreateFullMethodName = "/" + ServiceName + "/Create"
	UpdateFullMethodName = "/" + ServiceName + "/Update"
	DeleteFullMethodName = "/" + ServiceName + "/Delete"
)

// RecordsClient is the client API for the Records service.
type RecordsClient interface {
	List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Delete(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type recordsClient struct {
	cc grpc.ClientConnInterface
}

// NewRecordsClient binds a client to a connection.
func NewRecordsClient(cc grpc.ClientConnInterface) RecordsClient {
	return &recordsClient{cc}
}

func (c *recordsClient) List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordsClient) Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreateFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordsClient) Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UpdateFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordsClient) Delete(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, DeleteFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordsServer is the server API for the Records service.
type RecordsServer interface {
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// UnimplementedRecordsServer can be embedded to have forward compatible implementations.
type UnimplementedRecordsServer struct{}

func (UnimplementedRecordsServer) List(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedRecordsServer) Create(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Create not implemented")
}
func (UnimplementedRecordsServer) Update(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Update not implemented")
}
func (UnimplementedRecordsServer) Delete(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}

// RegisterRecordsServer registers srv on s.
func RegisterRecordsServer(s grpc.ServiceRegistrar, srv RecordsServer) {
	s.RegisterService(&Records_ServiceDesc, srv)
}

type structMethod func(RecordsServer, context.Context, *structpb.Struct) (any, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RecordsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RecordsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Records_ServiceDesc is the grpc.ServiceDesc for the Records service.
//
//nolint:revive // mirrors protoc-gen-go-grpc naming
var Records_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecordsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "List",
			Handler: unaryHandler(ListFullMethodName, func(s RecordsServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.List(ctx, in)
			}),
		},
		{
			MethodName: "Create",
			Handler: unaryHandler(CreateFullMethodName, func(s RecordsServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Create(ctx, in)
			}),
		},
		{
			MethodName: "Update",
			Handler: unaryHandler(UpdateFullMethodName, func(s RecordsServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Update(ctx, in)
			}),
		},
		{
			MethodName: "Delete",
			Handler: unaryHandler(DeleteFullMethodName, func(s RecordsServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.Delete(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "neverland/records/v1/records.proto",
}
