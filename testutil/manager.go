package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager starts, stops and resets a group of test components together.
type Manager struct {
	ctx        context.Context
	components []TestComponent
	mu         sync.RWMutex
}

// NewManager creates a new test component manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add registers a test component with the manager.
func (m *Manager) Add(c TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Get retrieves a component by name, or nil.
func (m *Manager) Get(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts all components in registration order and stops at the
// first failure.
func (m *Manager) StartAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if err := c.Start(m.ctx); err != nil {
			return fmt.Errorf("failed to start component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// StopAll stops all components in reverse order and joins every failure.
func (m *Manager) StopAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		c := m.components[i]
		if err := c.Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ResetAll resets all components and stops at the first failure.
func (m *Manager) ResetAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}
