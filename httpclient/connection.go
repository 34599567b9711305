package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http/httpproxy"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/security"
)

// Connection is a transport handle bound to one base URL. It wraps a single
// *http.Client and is safe for concurrent use by multiple goroutines.
type Connection struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       *AuthConfig
}

type connectionOptions struct {
	transport http.RoundTripper
	trust     *security.TrustResolver
	auth      *AuthConfig
	proxy     *httpproxy.Config
}

// ConnectionOption configures NewConnection.
type ConnectionOption func(*connectionOptions)

// WithRoundTripper replaces the HTTP transport. TLS and proxy settings are
// not applied to a custom transport.
func WithRoundTripper(rt http.RoundTripper) ConnectionOption {
	return func(o *connectionOptions) { o.transport = rt }
}

// WithTrust sets the resolver that picks CA material for https.
func WithTrust(r *security.TrustResolver) ConnectionOption {
	return func(o *connectionOptions) { o.trust = r }
}

// WithConnectionAuth overrides the basic auth derived from the config.
func WithConnectionAuth(a *AuthConfig) ConnectionOption {
	return func(o *connectionOptions) { o.auth = a }
}

// WithProxyConfig overrides the proxy settings read from the environment.
func WithProxyConfig(p *httpproxy.Config) ConnectionOption {
	return func(o *connectionOptions) { o.proxy = p }
}

// NewConnection creates a connection for cfg. It performs no network I/O.
// A missing platform CA bundle is reported as a *errors.ConfigError.
func NewConnection(cfg Config, opts ...ConnectionOption) (*Connection, error) {
	cfg.ApplyDefaults()

	o := &connectionOptions{}
	for _, opt := range opts {
		opt(o)
	}

	base, err := url.Parse(cfg.BaseURL())
	if err != nil {
		return nil, apierrors.InvalidConfig(cfg.Name, "", err)
	}

	transport := o.transport
	if transport == nil {
		t, err := newTransport(&cfg, o)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	auth := o.auth
	if auth == nil {
		auth = basicAuthFromConfig(&cfg)
	}

	return &Connection{
		baseURL: base,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		auth: auth,
	}, nil
}

// newTransport clones the default transport and applies proxy and TLS trust.
func newTransport(cfg *Config, o *connectionOptions) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	proxyCfg := o.proxy
	if proxyCfg == nil {
		proxyCfg = httpproxy.FromEnvironment()
	}
	proxyFunc := proxyCfg.ProxyFunc()
	transport.Proxy = func(r *http.Request) (*url.URL, error) {
		return proxyFunc(r.URL)
	}

	if !cfg.IsHTTPS() {
		return transport, nil
	}

	trust := o.trust
	if trust == nil {
		trust = security.NewTrustResolver()
	}
	resolved, err := trust.Resolve(cfg.CAFile)
	if err != nil {
		return nil, err
	}

	tlsCfg := resolved
	if cfg.TLS != nil {
		merged := *cfg.TLS
		if merged.CAFile == "" && merged.CAPath == "" {
			merged.CAFile = resolved.CAFile
			merged.CAPath = resolved.CAPath
		}
		tlsCfg = &merged
	}

	built, err := tlsCfg.Build()
	if err != nil {
		return nil, apierrors.InvalidConfig(cfg.Name, tlsCfg.CAFile+tlsCfg.CAPath, err)
	}
	if built != nil {
		transport.TLSClientConfig = built
	}
	return transport, nil
}

// BaseURL returns the connection's base URL.
func (c *Connection) BaseURL() string {
	return c.baseURL.String()
}

// Do executes one request. Transport errors are returned unchanged.
func (c *Connection) Do(ctx context.Context, req *Request) (*Response, error) {
	target := strings.TrimRight(c.baseURL.String(), "/") + req.URL()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	c.auth.apply(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}

// Close releases idle keep-alive connections.
func (c *Connection) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
