// Package component defines lifecycle interfaces for apikit clients.
//
// An API client is a Component: it can be started, stopped, health-checked
// and registered with a Registry alongside other clients. Lazy holds a
// resource that is created on first use, such as a client's connection.
package component
