package httpclient

import (
	"context"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/version"
)

// Component wraps a Client with lifecycle management so several clients can
// be started and stopped together through a component.Registry.
type Component struct {
	client *Client
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a client component. The client is created in Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	name := c.config.Name
	if name == "" {
		name = "http-api-client"
	}
	return name
}

// Start creates the client and its connection so configuration errors such
// as a missing CA bundle surface at startup.
func (c *Component) Start(ctx context.Context) error {
	cl, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	if _, err := cl.Connection(ctx); err != nil {
		return err
	}
	c.client = cl
	return nil
}

// Stop closes the client and releases its connection.
func (c *Component) Stop(_ context.Context) error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Health reports whether the client has a live connection.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if err := c.client.conn.HealthCheck(ctx); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	}
	return h
}

// Describe returns a one-line summary of the client.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "http-api-client",
		Details: c.config.BaseURL() + CollapseSlashes("/"+c.config.BaseURI),
		Port:    c.config.Port,
		Version: version.Current().String(),
	}
}

// Client returns the underlying client. Must be called after Start().
func (c *Component) Client() *Client {
	return c.client
}
