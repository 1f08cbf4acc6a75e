package client

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = iota + 1

// RequestIDFromContext returns the id assigned to the request being
// dispatched. Interceptors and adapters receive a context carrying it.
func RequestIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(requestIDKey).(string)
	if !ok {
		return uuid.Nil.String()
	}

	return v
}

func withRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey, uuid.NewString())
}
