package grpcserver

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/neverland-admin/internal/limiter"
)

// VerifyFunc resolves a bearer token to the operator it was issued to.
type VerifyFunc func(token string) (operator string, err error)

// LoggingUnary returns a unary server interceptor for structured logging.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		// metadata only, records are never logged
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remote),
		}
		if code != codes.OK {
			fields = append(fields, zap.String("msg", status.Convert(err).Message()))
		}
		log.Info("grpc", fields...)
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}

// AuthUnary rejects calls without a valid bearer token and stores the
// operator in the handler context. Methods listed in public skip the check.
// With a non-nil lim, peers that keep failing are answered ResourceExhausted.
func AuthUnary(verify VerifyFunc, lim limiter.Limiter, public ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]struct{}, len(public))
	for _, m := range public {
		skip[m] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if _, ok := skip[info.FullMethod]; ok {
			return next(ctx, req)
		}
		tok, err := bearerTokenFromMD(ctx)
		if err == nil {
			var op string
			if op, err = verify(tok); err == nil {
				return next(WithOperator(ctx, op), req)
			}
		}
		if lim != nil {
			if blocked, wait := throttle(ctx, lim); blocked {
				return nil, status.Errorf(codes.ResourceExhausted, "too many invalid tokens, retry in %s", wait.Round(time.Second))
			}
		}
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
}

// throttle records a failed attempt of the calling peer. Limiter errors never block.
func throttle(ctx context.Context, lim limiter.Limiter) (bool, time.Duration) {
	var addr string
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr = p.Addr.String()
	}
	key := limiter.HashPeer(addr)
	if ok, wait, err := lim.Allow(ctx, key); err == nil && !ok {
		return true, wait
	}
	blocked, wait, err := lim.Failure(ctx, key)
	if err != nil {
		return false, 0
	}
	return blocked, wait
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
