package component

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/apikit/logger"
)

// ErrClosed is returned by Lazy.Get after Close.
var ErrClosed = errors.New("component: closed")

// Lazy creates a value on first use and caches it until Close. A failed
// initialization is not cached; the next Get tries again.
type Lazy[T any] struct {
	name        string
	mu          sync.RWMutex
	value       T
	initialized bool
	closed      bool
	initializer func(ctx context.Context) (T, error)
	healthCheck func(ctx context.Context, value T) error
	closer      func(value T) error
	log         *logger.Logger
}

// NewLazy creates a lazy value with the given initializer.
func NewLazy[T any](name string, initializer func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{
		name:        name,
		initializer: initializer,
		log:         logger.NewNop(),
	}
}

// Name returns the name of the lazy value.
func (l *Lazy[T]) Name() string {
	return l.name
}

// Get returns the cached value, initializing it if needed.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.RLock()
	if l.initialized {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	// Double-check after acquiring write lock
	if l.initialized {
		return l.value, nil
	}
	if l.closed {
		return zero, fmt.Errorf("%s: %w", l.name, ErrClosed)
	}
	if l.initializer == nil {
		return zero, fmt.Errorf("no initializer for component: %s", l.name)
	}

	l.log.Debug("Initializing lazy component", map[string]interface{}{
		logger.FieldComponent: l.name,
	})

	v, err := l.initializer(ctx)
	if err != nil {
		return zero, err
	}

	l.value = v
	l.initialized = true
	return v, nil
}

// IsInitialized returns whether the value has been created and not closed.
func (l *Lazy[T]) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized
}

// HealthCheck verifies the value exists and optionally runs a custom check.
func (l *Lazy[T]) HealthCheck(ctx context.Context) error {
	l.mu.RLock()
	v, ok := l.value, l.initialized
	l.mu.RUnlock()

	if !ok {
		return fmt.Errorf("component %s not initialized", l.name)
	}
	if l.healthCheck != nil {
		return l.healthCheck(ctx, v)
	}
	return nil
}

// Close releases the value. Later calls to Get return ErrClosed.
func (l *Lazy[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	wasInitialized := l.initialized
	l.initialized = false
	l.closed = true

	if l.closer != nil && wasInitialized {
		err := l.closer(l.value)
		var zero T
		l.value = zero
		return err
	}
	return nil
}

// WithHealthCheck sets a custom health check function.
func (l *Lazy[T]) WithHealthCheck(fn func(context.Context, T) error) *Lazy[T] {
	l.healthCheck = fn
	return l
}

// WithCloser sets a custom close function.
func (l *Lazy[T]) WithCloser(fn func(T) error) *Lazy[T] {
	l.closer = fn
	return l
}

// WithLogger sets the logger used for initialization messages.
func (l *Lazy[T]) WithLogger(log *logger.Logger) *Lazy[T] {
	if log != nil {
		l.log = log
	}
	return l
}
