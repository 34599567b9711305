package testutil

import (
	"context"
	"testing"
)

// THelper binds test components to a testing.T.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T to provide helper methods.
//
//	func TestFind(t *testing.T) {
//	    srv := testutil.NewAPIServer()
//	    testutil.T(t).Setup(srv)
//	    // srv is stopped when the test ends
//	}
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to the component lifecycle methods.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and registers its Stop with t.Cleanup.
func (h *THelper) Setup(c TestComponent) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset resets a component or fails the test.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}
