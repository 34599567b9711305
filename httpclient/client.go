package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/config"
	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/requestid"
	"github.com/kbukum/apikit/validation"
	"github.com/kbukum/apikit/version"
)

// Client issues JSON requests against one configured API.
//
// A Client holds only its immutable Config and a Connection created on first
// use, so one Client may be shared by concurrent goroutines. Every call
// blocks for a single round trip; nothing is retried.
type Client struct {
	config     Config
	log        *logger.Logger
	hook       observability.Hook
	authParams AuthParamsFunc
	classifier *Classifier
	connOpts   []ConnectionOption
	conn       *component.Lazy[*Connection]
}

// New creates a Client for cfg. cfg.Name must be set.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Name == "" {
		return nil, apierrors.MissingClientID(config.DefaultConfigFile)
	}
	cfg.ApplyDefaults()
	if err := validation.Validate(&cfg); err != nil {
		return nil, apierrors.InvalidConfig(cfg.Name, "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, apierrors.InvalidConfig(cfg.Name, "", err)
	}

	c := &Client{
		config: cfg,
		log:    logger.NewNop(),
		hook:   observability.NopHook{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("apikit.client").WithFields(map[string]interface{}{"client": cfg.Name})
	c.classifier = NewClassifier(cfg.UnprocessableEntity, c.log)
	c.conn = component.NewLazy(cfg.Name, func(context.Context) (*Connection, error) {
		return NewConnection(c.config, c.connOpts...)
	}).WithCloser(func(conn *Connection) error {
		return conn.Close()
	}).WithLogger(c.log)

	return c, nil
}

// NewFromConfigFile loads the configuration for clientID and creates a
// Client. An empty configFile searches the default locations.
func NewFromConfigFile(clientID, configFile string, opts ...Option) (*Client, error) {
	if clientID == "" {
		source := configFile
		if source == "" {
			source = config.DefaultConfigFile
		}
		return nil, apierrors.MissingClientID(source)
	}
	cfg, err := LoadConfig(clientID, config.WithConfigFile(configFile))
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Name returns the logical client name.
func (c *Client) Name() string { return c.config.Name }

// Config returns a copy of the client configuration.
func (c *Client) Config() Config { return c.config }

// Logger returns the client's component logger.
func (c *Client) Logger() *logger.Logger { return c.log }

// Connection returns the cached connection, creating it on first use.
func (c *Client) Connection(ctx context.Context) (*Connection, error) {
	return c.conn.Get(ctx)
}

// Close releases the connection. The client cannot be used afterwards.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Find fetches basePath/id.
func (c *Client) Find(ctx context.Context, basePath string, id any, query map[string]any) (any, error) {
	return c.Get(ctx, JoinPath(basePath, id), query, nil)
}

// FindAll fetches basePath.
func (c *Client) FindAll(ctx context.Context, basePath string, query map[string]any) (any, error) {
	return c.Get(ctx, basePath, query, nil)
}

// FindNested fetches basePath/id/nestedPath.
func (c *Client) FindNested(ctx context.Context, basePath string, id any, nestedPath string) (any, error) {
	return c.Get(ctx, JoinPath(basePath, id, nestedPath), nil, nil)
}

// Get issues a GET with the merged query parameters.
func (c *Client) Get(ctx context.Context, path string, query map[string]any, headers map[string]string) (any, error) {
	return c.call(ctx, http.MethodGet, path, query, headers)
}

// Create issues a POST with payload merged with the auth parameters.
func (c *Client) Create(ctx context.Context, path string, payload map[string]any, headers map[string]string) (any, error) {
	return c.call(ctx, http.MethodPost, path, payload, headers)
}

// Update issues a PUT with payload merged with the auth parameters.
func (c *Client) Update(ctx context.Context, path string, payload map[string]any, headers map[string]string) (any, error) {
	return c.call(ctx, http.MethodPut, path, payload, headers)
}

// Destroy issues a DELETE to basePath/id.
func (c *Client) Destroy(ctx context.Context, basePath string, id any, headers map[string]string) (any, error) {
	return c.call(ctx, http.MethodDelete, JoinPath(basePath, id), nil, headers)
}

func (c *Client) call(ctx context.Context, method, path string, params map[string]any, headers map[string]string) (any, error) {
	req, err := c.BuildRequest(ctx, method, path, params, headers)
	if err != nil {
		return nil, err
	}
	return c.exchange(ctx, req, func(resp *Response) (any, error) {
		return c.classifier.Classify(resp, req.Method, req.Path)
	})
}

// Send executes a built request and checks its status without decoding the
// body. Non-success statuses return the Response together with the APIError.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	var raw *Response
	_, err := c.exchange(ctx, req, func(resp *Response) (any, error) {
		raw = resp
		return nil, c.classifier.Check(resp, req.Method, req.Path)
	})
	return raw, err
}

// exchange runs one instrumented round trip and hands the response to classify.
func (c *Client) exchange(ctx context.Context, req *Request, classify func(*Response) (any, error)) (any, error) {
	ev := c.newEvent(ctx, req)
	ctx = c.hook.Before(ctx, ev)

	var (
		result any
		resp   *Response
	)
	conn, err := c.conn.Get(ctx)
	if err == nil {
		c.log.Debug(fmt.Sprintf("Http Client: %s %s%s", req.Method, conn.BaseURL(), req.FullPath))
		resp, err = conn.Do(ctx, req)
	}
	ev.Duration = time.Since(ev.Start)
	if err == nil {
		ev.StatusCode = resp.StatusCode
		result, err = classify(resp)
	}
	ev.Err = err
	c.hook.After(ctx, ev)

	return result, err
}

func (c *Client) newEvent(ctx context.Context, req *Request) *observability.Event {
	id, _ := requestid.FromContext(ctx)
	ev := &observability.Event{
		Name:      observability.EventName,
		Client:    c.config.Name,
		Method:    req.Method,
		Host:      c.config.Server,
		Path:      req.FullPath,
		RequestID: id,
		Start:     time.Now(),
	}
	if req.target != req.FullPath {
		ev.PathWithQuery = req.target
	}
	return ev
}

// BuildRequest assembles a request for method and the caller's relative
// path. For GET and DELETE params become the query string; for POST and PUT
// they become the encoded body. Auth parameters are merged last.
func (c *Client) BuildRequest(ctx context.Context, method, path string, params map[string]any, headers map[string]string) (*Request, error) {
	method = strings.ToUpper(method)
	req := &Request{
		Method:   method,
		Path:     path,
		FullPath: NormalizePath(c.config.BaseURI, path),
	}
	req.target = req.FullPath

	var auth map[string]any
	if c.authParams != nil {
		auth = c.authParams(ctx)
	}

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body, err := c.encodeBody(MergeParams(params, auth))
		if err != nil {
			return nil, err
		}
		req.Body = body
		req.Headers = WriteHeaders(c.config.Headers, c.config.BodyEncoding)
	default:
		if method == http.MethodGet && len(params) > 0 {
			req.target = req.FullPath + "?" + EncodeQuery(params)
		}
		if merged := MergeParams(params, auth); len(merged) > 0 {
			req.Query = merged
		}
		if method == http.MethodDelete {
			req.Headers = WriteHeaders(c.config.Headers, EncodingJSON)
		} else {
			req.Headers = ReadHeaders(c.config.Headers)
		}
	}

	for k, v := range headers {
		req.Headers[k] = v
	}
	if _, ok := req.Headers[HeaderUserAgent]; !ok {
		req.Headers[HeaderUserAgent] = version.UserAgent()
	}
	if c.config.IncludeRequestIDHeader {
		if id, ok := requestid.FromContext(ctx); ok {
			req.Headers[requestid.HeaderName] = id
		}
	}
	return req, nil
}

func (c *Client) encodeBody(params map[string]any) ([]byte, error) {
	if c.config.BodyEncoding == EncodingForm {
		return []byte(EncodeQuery(params)), nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode body: %w", err)
	}
	return data, nil
}
