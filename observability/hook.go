package observability

import (
	"context"
	"time"
)

// EventName is the name of the event emitted for every client request.
const EventName = "http_api_client_request"

// Event describes one outbound request.
type Event struct {
	Name string
	// Client is the configured client name.
	Client string
	Method string
	Host   string
	// Path is the joined request path without the query string.
	Path string
	// PathWithQuery is Path plus the encoded query for GET requests.
	PathWithQuery string
	RequestID     string
	Start         time.Time
	Duration      time.Duration
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

// Target returns PathWithQuery when set, otherwise Path.
func (e *Event) Target() string {
	if e.PathWithQuery != "" {
		return e.PathWithQuery
	}
	return e.Path
}

// Hook observes requests. Before may return a derived context which is used
// for the request and passed to After.
type Hook interface {
	Before(ctx context.Context, ev *Event) context.Context
	After(ctx context.Context, ev *Event)
}

// NopHook does nothing.
type NopHook struct{}

func (NopHook) Before(ctx context.Context, _ *Event) context.Context { return ctx }
func (NopHook) After(context.Context, *Event)                         {}

// Hooks fans out to several hooks. Before runs in order, After in reverse.
type Hooks []Hook

// Before implements Hook.
func (hs Hooks) Before(ctx context.Context, ev *Event) context.Context {
	for _, h := range hs {
		if h == nil {
			continue
		}
		ctx = h.Before(ctx, ev)
	}
	return ctx
}

// After implements Hook.
func (hs Hooks) After(ctx context.Context, ev *Event) {
	for i := len(hs) - 1; i >= 0; i-- {
		if hs[i] == nil {
			continue
		}
		hs[i].After(ctx, ev)
	}
}
