package requestid

import (
	"context"

	"github.com/google/uuid"
)

// HeaderName is the HTTP header used to propagate request ids.
const HeaderName = "X-Request-Id"

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var requestIDKey = contextKey{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// FromContext returns the request id stored in ctx.
// An empty id is reported as absent.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// New generates a random request id.
func New() string {
	return uuid.New().String()
}

// Ensure returns ctx unchanged if it already carries a request id, otherwise
// a copy with a freshly generated one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := New()
	return WithRequestID(ctx, id), id
}
