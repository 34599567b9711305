package testutil

import (
	"context"
	"encoding/pem"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apikit/component"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Reply is a canned response served by APIServer.
type Reply struct {
	Status  int
	Body    string
	Headers map[string]string
	// Delay holds the response back, or until the client gives up.
	Delay time.Duration
}

// JSON returns a Reply with an application/json body.
func JSON(status int, body string) Reply {
	return Reply{
		Status:  status,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	}
}

// Status returns a Reply with no body.
func Status(status int) Reply {
	return Reply{Status: status}
}

// RecordedRequest is one request received by APIServer.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Header   http.Header
	Body     []byte
}

// APIServer is a mock remote API. It records every request and answers
// with the replies registered through On. Unmatched requests get 404.
type APIServer struct {
	name     string
	useTLS   bool
	engine   *gin.Engine
	ts       *httptest.Server
	replies  map[string][]Reply
	requests []RecordedRequest
	mu       sync.RWMutex
}

var _ component.Component = (*APIServer)(nil)
var _ TestComponent = (*APIServer)(nil)

// ServerOption configures an APIServer.
type ServerOption func(*APIServer)

// WithTLS serves https with the httptest certificate.
func WithTLS() ServerOption {
	return func(s *APIServer) { s.useTLS = true }
}

// WithServerName sets the component name. Defaults to "api-server".
func WithServerName(name string) ServerOption {
	return func(s *APIServer) { s.name = name }
}

// NewAPIServer creates a mock API server. Call Start before use.
func NewAPIServer(opts ...ServerOption) *APIServer {
	s := &APIServer{
		name:    "api-server",
		replies: make(map[string][]Reply),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = gin.New()
	s.engine.Use(s.record)
	s.engine.NoRoute(s.serve)
	return s
}

// On queues replies for method and path. Replies are served in order and
// the last one repeats.
func (s *APIServer) On(method, path string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, path)
	s.replies[key] = append(s.replies[key], replies...)
}

// GinEngine returns the engine for registering custom handlers.
func (s *APIServer) GinEngine() *gin.Engine {
	return s.engine
}

// URL returns the base URL, or "" before Start.
func (s *APIServer) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Host returns the listener host, e.g. "127.0.0.1".
func (s *APIServer) Host() string {
	host, _ := s.hostPort()
	return host
}

// Port returns the listener port.
func (s *APIServer) Port() int {
	_, port := s.hostPort()
	return port
}

func (s *APIServer) hostPort() (string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return "", 0
	}
	host, portStr, err := net.SplitHostPort(s.ts.Listener.Addr().String())
	if err != nil {
		return "", 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// Protocol returns "https" when started with WithTLS, else "http".
func (s *APIServer) Protocol() string {
	if s.useTLS {
		return "https"
	}
	return "http"
}

// WriteCAFile writes the server certificate as PEM into dir and returns the
// file path. Only valid for a started TLS server.
func (s *APIServer) WriteCAFile(dir string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil || !s.useTLS {
		return "", fmt.Errorf("tls server not started")
	}
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: s.ts.Certificate().Raw})
	path := filepath.Join(dir, "api-server-ca.pem")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Requests returns a copy of every recorded request.
func (s *APIServer) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *APIServer) LastRequest() (RecordedRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *APIServer) record(c *gin.Context) {
	body, _ := c.GetRawData()
	req := RecordedRequest{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Query:    c.Request.URL.Query(),
		Header:   c.Request.Header.Clone(),
		Body:     body,
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	c.Next()
}

func (s *APIServer) serve(c *gin.Context) {
	reply, ok := s.next(c.Request.Method, c.Request.URL.Path)
	if !ok {
		c.Status(http.StatusNotFound)
		c.Writer.WriteHeaderNow()
		return
	}
	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	for k, v := range reply.Headers {
		c.Header(k, v)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Body == "" {
		// gin only flushes the status on write
		c.Status(status)
		c.Writer.WriteHeaderNow()
		return
	}
	c.Data(status, "text/plain; charset=utf-8", []byte(reply.Body))
}

func (s *APIServer) next(method, path string) (Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, path)
	queue := s.replies[key]
	if len(queue) == 0 {
		return Reply{}, false
	}
	reply := queue[0]
	if len(queue) > 1 {
		s.replies[key] = queue[1:]
	}
	return reply, true
}

func routeKey(method, path string) string {
	return method + " " + path
}

// --- component.Component ---

func (s *APIServer) Name() string { return s.name }

func (s *APIServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil {
		return fmt.Errorf("component already started")
	}
	if s.useTLS {
		s.ts = httptest.NewTLSServer(s.engine)
	} else {
		s.ts = httptest.NewServer(s.engine)
	}
	return nil
}

func (s *APIServer) Stop(_ context.Context) error {
	s.mu.Lock()
	ts := s.ts
	s.ts = nil
	s.mu.Unlock()
	if ts != nil {
		ts.Close()
	}
	return nil
}

func (s *APIServer) Health(_ context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return component.Health{Name: s.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.name, Status: component.StatusHealthy}
}

// --- TestComponent ---

// Reset drops all queued replies and recorded requests.
func (s *APIServer) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = make(map[string][]Reply)
	s.requests = nil
	return nil
}
