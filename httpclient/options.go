package httpclient

import (
	"context"
	"net/http"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/security"
)

// AuthParamsFunc returns parameters merged into every request's query or
// payload, e.g. an API key. Returned keys override caller parameters.
type AuthParamsFunc func(ctx context.Context) map[string]any

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHook sets the instrumentation hook. Use observability.Hooks to combine several.
func WithHook(h observability.Hook) Option {
	return func(c *Client) {
		if h != nil {
			c.hook = h
		}
	}
}

// WithAuthParams sets the auth parameter provider.
func WithAuthParams(fn AuthParamsFunc) Option {
	return func(c *Client) { c.authParams = fn }
}

// WithTransport replaces the HTTP transport, typically with a mock.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.connOpts = append(c.connOpts, WithRoundTripper(rt)) }
}

// WithAuth overrides the basic auth from the config with any AuthConfig.
func WithAuth(a *AuthConfig) Option {
	return func(c *Client) { c.connOpts = append(c.connOpts, WithConnectionAuth(a)) }
}

// WithTrustResolver sets the resolver used for https CA material.
func WithTrustResolver(r *security.TrustResolver) Option {
	return func(c *Client) { c.connOpts = append(c.connOpts, WithTrust(r)) }
}

// WithConnectionOptions passes options straight to NewConnection.
func WithConnectionOptions(opts ...ConnectionOption) Option {
	return func(c *Client) { c.connOpts = append(c.connOpts, opts...) }
}
