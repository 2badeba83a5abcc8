package grpcserver

import "context"

type ctxKey string

const operatorKey ctxKey = "nl.operator"

// WithOperator stores the authenticated operator in context.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

// OperatorFromCtx fetches the operator from context.
func OperatorFromCtx(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operatorKey).(string)
	return op, ok && op != ""
}
