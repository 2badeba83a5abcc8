package grpcserver

import (
	"context"
	"testing"
)

func TestWithOperator_And_OperatorFromCtx(t *testing.T) {
	t.Parallel()

	if op, ok := OperatorFromCtx(context.Background()); ok || op != "" {
		t.Fatalf("expected no operator in empty ctx")
	}

	ctx := WithOperator(context.Background(), "ops")
	got, ok := OperatorFromCtx(ctx)
	if !ok || got != "ops" {
		t.Fatalf("got %q %v", got, ok)
	}

	if _, ok := OperatorFromCtx(WithOperator(context.Background(), "")); ok {
		t.Fatalf("empty operator must not count")
	}

	bad := context.WithValue(context.Background(), operatorKey, 42)
	if _, ok := OperatorFromCtx(bad); ok {
		t.Fatalf("expected miss on wrong typed value")
	}
}
