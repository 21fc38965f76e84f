package logging

import "context"

type ctxKey int

const (
	serviceKey ctxKey = iota
	operationKey
)

// WithService tags ctx with the AWS service the dispatcher routed to (s3, dynamodb, lambda).
func WithService(ctx context.Context, service string) context.Context {
	return context.WithValue(ctx, serviceKey, service)
}

// ServiceFromContext returns the service tagged by WithService, if any.
func ServiceFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(serviceKey).(string)
	return v, ok
}

// WithOperation tags ctx with the API operation name (e.g. PutItem, CreateBucket).
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation tagged by WithOperation, if any.
func OperationFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(operationKey).(string)
	return v, ok
}
