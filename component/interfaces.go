package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed client.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information about a component.
type Description struct {
	// Name is the human-readable display name.
	// If empty, the component's Name() is used.
	Name string
	// Type categorizes the component, e.g. "http-api-client".
	Type string
	// Details is a human-readable one-liner, e.g. "https://api.example.com:443/v1".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
	// Version is the build of the library backing the component.
	Version string
}

// Describable is optionally implemented by Components to report what they
// are and how they are configured.
type Describable interface {
	Describe() Description
}
