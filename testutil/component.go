package testutil

import (
	"context"

	"github.com/kbukum/apikit/component"
)

// TestComponent extends component.Component with a Reset used between test
// cases. A TestComponent can be registered in a component.Registry like any
// production component.
type TestComponent interface {
	component.Component

	// Reset returns the component to its freshly started state.
	Reset(ctx context.Context) error
}
