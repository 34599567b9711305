package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/config"
	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/requestid"
	"github.com/kbukum/apikit/testutil"
	"github.com/kbukum/apikit/testutil/fixtures"
	"github.com/kbukum/apikit/version"
)

// recordingHook keeps every event it sees.
type recordingHook struct {
	mu     sync.Mutex
	before []observability.Event
	after  []observability.Event
}

type hookKey struct{}

func (h *recordingHook) Before(ctx context.Context, ev *observability.Event) context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before = append(h.before, *ev)
	return context.WithValue(ctx, hookKey{}, "seen")
}

func (h *recordingHook) After(ctx context.Context, ev *observability.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ctx.Value(hookKey{}) != "seen" {
		ev.Err = errors.Join(ev.Err, errors.New("context from Before was lost"))
	}
	h.after = append(h.after, *ev)
}

func (h *recordingHook) last() observability.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.after[len(h.after)-1]
}

func newTestClient(t *testing.T, srv *testutil.APIServer, mutate func(*Config), opts ...Option) *Client {
	t.Helper()
	cfg := serverConfig(srv)
	cfg.Name = "billing"
	cfg.BaseURI = "/api/v2"
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func apiKey(context.Context) map[string]any {
	return map[string]any{"api_key": "secret"}
}

func TestNew_MissingName(t *testing.T) {
	_, err := New(Config{Protocol: "http", Server: "api.internal"})
	if !apierrors.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if !strings.Contains(err.Error(), "you must supply a http client config id") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad protocol", Config{Name: "x", Protocol: "ftp", Server: "api.internal"}},
		{"missing server", Config{Name: "x", Protocol: "http"}},
		{"bad port", Config{Name: "x", Protocol: "http", Server: "api.internal", Port: 70000}},
		{"missing ca file", Config{Name: "x", Protocol: "https", Server: "api.internal", CAFile: "/nonexistent/ca.pem"}},
		{"bad encoding", Config{Name: "x", Protocol: "http", Server: "api.internal", BodyEncoding: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !apierrors.IsConfigError(err) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{Name: "geo", Protocol: "http", Server: "geo.internal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "geo" {
		t.Errorf("expected name geo, got %q", c.Name())
	}
	if c.Config().Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", c.Config().Timeout)
	}
}

func TestNewFromConfigFile(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users/1", testutil.JSON(http.StatusOK, `{"id":1}`))

	doc := fmt.Sprintf("development:\n  billing:\n    protocol: http\n    server: %s\n    port: %d\n    base_uri: api/v2\n", srv.Host(), srv.Port())
	path := fixtures.WriteClientsFile(t, doc)
	t.Setenv(config.EnvironmentVar, "development")

	c, err := NewFromConfigFile("billing", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, err := c.Find(context.Background(), "users", 1, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromConfigFile_Errors(t *testing.T) {
	path := fixtures.WriteClientsFile(t, fixtures.ClientsYAML)
	t.Setenv(config.EnvironmentVar, "development")

	_, err := NewFromConfigFile("", path)
	if !apierrors.IsConfigError(err) || !strings.Contains(err.Error(), path) {
		t.Errorf("expected missing id error naming %s, got %v", path, err)
	}

	_, err = NewFromConfigFile("geo", path)
	if !apierrors.IsConfigError(err) || !strings.Contains(err.Error(), "no http client config 'geo'") {
		t.Errorf("expected missing client error, got %v", err)
	}

	_, err = NewFromConfigFile("billing", path+".missing")
	if !apierrors.IsConfigError(err) {
		t.Errorf("expected missing file error, got %v", err)
	}
}

func TestClient_Find(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users/1", testutil.JSON(http.StatusOK, `{"id": 1, "name": ":smile"}`))

	c := newTestClient(t, srv, nil)
	got, err := c.Find(context.Background(), "users", 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", got)
	}
	if m["id"] != json.Number("1") {
		t.Errorf("expected id json.Number(1), got %#v", m["id"])
	}
	if m["name"] != ":smile" {
		t.Errorf("expected name :smile, got %#v", m["name"])
	}

	req, _ := srv.LastRequest()
	if req.Header.Get(HeaderAccept) != ContentTypeJSON {
		t.Errorf("expected Accept json, got %q", req.Header.Get(HeaderAccept))
	}
	if req.Header.Get(HeaderUserAgent) != version.UserAgent() {
		t.Errorf("expected User-Agent %q, got %q", version.UserAgent(), req.Header.Get(HeaderUserAgent))
	}
}

func TestClient_Find_NotFound(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/path/1", testutil.Status(http.StatusNotFound))

	c := newTestClient(t, srv, func(cfg *Config) { cfg.BaseURI = "" })
	got, err := c.Find(context.Background(), "/path", 1, nil)
	if got != nil {
		t.Errorf("expected nil result, got %v", got)
	}
	if !apierrors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err.Error() != "404 get: /path/1" {
		t.Errorf("expected %q, got %q", "404 get: /path/1", err.Error())
	}
}

func TestClient_Find_InvalidJSON(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/path/1", testutil.Reply{Status: http.StatusOK, Body: "invalid json"})

	c := newTestClient(t, srv, nil)
	_, err := c.Find(context.Background(), "path", 1, nil)
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *json.SyntaxError, got %T: %v", err, err)
	}
}

func TestClient_FindAll_MergesAuthParams(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users", testutil.JSON(http.StatusOK, `[{"id":1},{"id":2}]`))

	c := newTestClient(t, srv, nil, WithAuthParams(apiKey))
	got, err := c.FindAll(context.Background(), "users", map[string]any{"page": 2, "api_key": "mine"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list, ok := got.([]any); !ok || len(list) != 2 {
		t.Errorf("expected two items, got %#v", got)
	}

	req, _ := srv.LastRequest()
	if req.Query.Get("page") != "2" {
		t.Errorf("expected page=2, got %q", req.RawQuery)
	}
	if req.Query.Get("api_key") != "secret" {
		t.Errorf("expected auth param to win, got %q", req.RawQuery)
	}
}

func TestClient_FindNested(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users/7/orders", testutil.JSON(http.StatusOK, `[]`))

	c := newTestClient(t, srv, nil)
	if _, err := c.FindNested(context.Background(), "/users/", 7, "/orders"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, _ := srv.LastRequest()
	if req.Path != "/api/v2/users/7/orders" {
		t.Errorf("unexpected path %q", req.Path)
	}
	if req.RawQuery != "" {
		t.Errorf("expected no query, got %q", req.RawQuery)
	}
}

func TestClient_Get_CustomHeaders(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/status", testutil.Status(http.StatusNoContent))

	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.Headers = map[string]string{"x-tenant": "acme"}
	})
	got, err := c.Get(context.Background(), "status", nil, map[string]string{HeaderUserAgent: "custom/1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != true {
		t.Errorf("expected true for empty body, got %#v", got)
	}
	req, _ := srv.LastRequest()
	if req.Header.Get("X-Tenant") != "acme" {
		t.Errorf("expected config header, got %v", req.Header)
	}
	if req.Header.Get(HeaderUserAgent) != "custom/1.0" {
		t.Errorf("expected caller User-Agent, got %q", req.Header.Get(HeaderUserAgent))
	}
}

func TestClient_Create(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodPost, "/api/v2/users", testutil.JSON(http.StatusOK, `{"id": 1}`))

	c := newTestClient(t, srv, nil, WithAuthParams(apiKey))
	got, err := c.Create(context.Background(), "users", map[string]any{"name": "ada"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(map[string]any)["id"] != json.Number("1") {
		t.Errorf("expected id 1, got %#v", got)
	}

	req, _ := srv.LastRequest()
	if req.Header.Get(HeaderContentType) != ContentTypeJSON {
		t.Errorf("expected json content type, got %q", req.Header.Get(HeaderContentType))
	}
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body["name"] != "ada" || body["api_key"] != "secret" {
		t.Errorf("expected merged payload, got %v", body)
	}
	if req.RawQuery != "" {
		t.Errorf("expected no query on POST, got %q", req.RawQuery)
	}
}

func TestClient_Create_FormEncoding(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodPost, "/api/v2/tokens", testutil.JSON(http.StatusCreated, `{"token":"t"}`))

	c := newTestClient(t, srv, func(cfg *Config) { cfg.BodyEncoding = EncodingForm }, WithAuthParams(apiKey))
	if _, err := c.Create(context.Background(), "tokens", map[string]any{"scope": "read write"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, _ := srv.LastRequest()
	if req.Header.Get(HeaderContentType) != ContentTypeForm {
		t.Errorf("expected form content type, got %q", req.Header.Get(HeaderContentType))
	}
	if string(req.Body) != "api_key=secret&scope=read+write" {
		t.Errorf("unexpected form body %q", req.Body)
	}
}

func TestClient_Create_Unprocessable(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodPost, "/api/v2/users", testutil.JSON(http.StatusUnprocessableEntity, `{"errors":["name is blank"]}`))

	strict := newTestClient(t, srv, nil)
	_, err := strict.Create(context.Background(), "users", nil, nil)
	if !apierrors.IsUnprocessable(err) {
		t.Errorf("expected UnprocessableEntity, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "name is blank") {
		t.Errorf("expected the body in the error, got %q", err.Error())
	}

	lenient := newTestClient(t, srv, func(cfg *Config) { cfg.UnprocessableEntity = UnprocessableDecode })
	got, err := lenient.Create(context.Background(), "users", nil, nil)
	if err != nil {
		t.Fatalf("expected decoded body, got %v", err)
	}
	if _, ok := got.(map[string]any)["errors"]; !ok {
		t.Errorf("expected errors key, got %#v", got)
	}
}

func TestClient_Update(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodPut, "/api/v2/users/1", testutil.JSON(http.StatusOK, `{"id":1,"name":"grace"}`))

	c := newTestClient(t, srv, nil)
	if _, err := c.Update(context.Background(), JoinPath("users", 1), map[string]any{"name": "grace"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, _ := srv.LastRequest()
	if req.Method != http.MethodPut {
		t.Errorf("expected PUT, got %s", req.Method)
	}
	if !bytes.Contains(req.Body, []byte(`"grace"`)) {
		t.Errorf("unexpected body %q", req.Body)
	}
}

func TestClient_Destroy(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodDelete, "/api/v2/users/1", testutil.Status(http.StatusNoContent))

	c := newTestClient(t, srv, nil, WithAuthParams(apiKey))
	got, err := c.Destroy(context.Background(), "users", 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != true {
		t.Errorf("expected true, got %#v", got)
	}
	req, _ := srv.LastRequest()
	if req.Method != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", req.Method)
	}
	if req.Query.Get("api_key") != "secret" {
		t.Errorf("expected auth params in the query, got %q", req.RawQuery)
	}
	if len(req.Body) != 0 {
		t.Errorf("expected no body on DELETE, got %q", req.Body)
	}
	if req.Header.Get(HeaderContentType) != ContentTypeJSON {
		t.Errorf("expected json content type on DELETE, got %q", req.Header.Get(HeaderContentType))
	}
}

func TestClient_BuildRequest_DeleteHeaders(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)

	c := newTestClient(t, srv, func(cfg *Config) { cfg.BodyEncoding = EncodingForm })
	req, err := c.BuildRequest(context.Background(), "delete", "users/1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Headers[HeaderContentType] != ContentTypeJSON {
		t.Errorf("expected json content type regardless of body encoding, got %q", req.Headers[HeaderContentType])
	}
	if req.Body != nil {
		t.Errorf("expected no body, got %q", req.Body)
	}

	req, err = c.BuildRequest(context.Background(), http.MethodGet, "users/1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := req.Headers[HeaderContentType]; ok {
		t.Error("expected no content type on GET")
	}
}

func TestClient_Destroy_ServerError(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodDelete, "/api/v2/users/1", testutil.JSON(http.StatusBadGateway, `{"error":"upstream"}`))

	c := newTestClient(t, srv, nil)
	_, err := c.Destroy(context.Background(), "users", 1, nil)
	if !apierrors.IsServerError(err) || !apierrors.IsRetryable(err) {
		t.Errorf("expected retryable server error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "502 delete: users/1") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClient_RequestIDHeader(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		id      string
		want    string
	}{
		{"enabled with id", true, "req-123", "req-123"},
		{"enabled without id", true, "", ""},
		{"disabled with id", false, "req-123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewAPIServer()
			testutil.T(t).Setup(srv)
			srv.On(http.MethodGet, "/api/v2/ping", testutil.Status(http.StatusOK))

			c := newTestClient(t, srv, func(cfg *Config) { cfg.IncludeRequestIDHeader = tt.enabled })
			ctx := context.Background()
			if tt.id != "" {
				ctx = requestid.WithRequestID(ctx, tt.id)
			}
			if _, err := c.Get(ctx, "ping", nil, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			req, _ := srv.LastRequest()
			_, present := req.Header[requestid.HeaderName]
			if got := req.Header.Get(requestid.HeaderName); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if tt.want == "" && present {
				t.Error("expected no request id header at all")
			}
		})
	}
}

func TestClient_HookEvent(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users", testutil.JSON(http.StatusOK, `[]`))
	srv.On(http.MethodGet, "/api/v2/users/9", testutil.Status(http.StatusNotFound))

	hook := &recordingHook{}
	c := newTestClient(t, srv, nil, WithHook(hook), WithAuthParams(apiKey))
	ctx := requestid.WithRequestID(context.Background(), "req-9")

	if _, err := c.FindAll(ctx, "users", map[string]any{"page": 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := hook.last()
	if ev.Name != observability.EventName {
		t.Errorf("expected event %q, got %q", observability.EventName, ev.Name)
	}
	if ev.Client != "billing" || ev.Method != http.MethodGet || ev.Host != srv.Host() {
		t.Errorf("unexpected event identity %+v", ev)
	}
	if ev.Path != "/api/v2/users" {
		t.Errorf("expected full path, got %q", ev.Path)
	}
	if ev.PathWithQuery != "/api/v2/users?page=2" {
		t.Errorf("expected caller query without auth params, got %q", ev.PathWithQuery)
	}
	if ev.RequestID != "req-9" {
		t.Errorf("expected request id, got %q", ev.RequestID)
	}
	if ev.StatusCode != http.StatusOK || ev.Err != nil {
		t.Errorf("expected 200 without error, got %d %v", ev.StatusCode, ev.Err)
	}
	if ev.Duration <= 0 || ev.Start.IsZero() {
		t.Errorf("expected timing, got start=%v duration=%v", ev.Start, ev.Duration)
	}

	_, _ = c.Find(ctx, "users", 9, nil)
	ev = hook.last()
	if ev.StatusCode != http.StatusNotFound || !apierrors.IsNotFound(ev.Err) {
		t.Errorf("expected 404 event with NotFound, got %d %v", ev.StatusCode, ev.Err)
	}
	if ev.PathWithQuery != "" {
		t.Errorf("expected no query for Find, got %q", ev.PathWithQuery)
	}
	if len(hook.before) != 2 || len(hook.after) != 2 {
		t.Errorf("expected two before and two after calls, got %d/%d", len(hook.before), len(hook.after))
	}
}

func TestClient_LogHook(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users", testutil.JSON(http.StatusOK, `[]`))

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", "test")
	c := newTestClient(t, srv, nil, WithLogger(log), WithHook(observability.NewLogHook(log)))

	if _, err := c.FindAll(context.Background(), "users", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	wantDebug := fmt.Sprintf("Http Client: GET http://%s:%d/api/v2/users", srv.Host(), srv.Port())
	if !strings.Contains(out, wantDebug) {
		t.Errorf("expected debug line %q, got %s", wantDebug, out)
	}
	if !strings.Contains(out, observability.EventName) {
		t.Errorf("expected instrumentation line, got %s", out)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/slow", testutil.Reply{Status: http.StatusOK, Delay: 2 * time.Second})

	hook := &recordingHook{}
	c := newTestClient(t, srv, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond }, WithHook(hook))

	_, err := c.Get(context.Background(), "slow", nil, nil)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if apierrors.IsAPIError(err) {
		t.Error("timeouts must not become APIErrors")
	}
	ev := hook.last()
	if ev.StatusCode != 0 || !IsTimeout(ev.Err) {
		t.Errorf("expected failed event without status, got %d %v", ev.StatusCode, ev.Err)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)

	c := newTestClient(t, srv, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "anything", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_Send(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/report", testutil.JSON(http.StatusInternalServerError, `{"error":"boom"}`))

	c := newTestClient(t, srv, nil)
	req, err := c.BuildRequest(context.Background(), "get", "report", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := c.Send(context.Background(), req)
	if !apierrors.IsServerError(err) {
		t.Errorf("expected server error, got %v", err)
	}
	if resp == nil || string(resp.Body) != `{"error":"boom"}` {
		t.Errorf("expected the raw response alongside the error, got %+v", resp)
	}
}

func TestClient_BuildRequest(t *testing.T) {
	c, err := New(Config{Name: "geo", Protocol: "http", Server: "geo.internal", BaseURI: "v1"}, WithAuthParams(apiKey))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := map[string]any{"q": "berlin"}

	req, err := c.BuildRequest(context.Background(), "get", "/places//search", params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodGet || req.FullPath != "/v1/places/search" || req.Path != "/places//search" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.URL() != "/v1/places/search?api_key=secret&q=berlin" {
		t.Errorf("unexpected URL %q", req.URL())
	}
	if len(params) != 1 {
		t.Errorf("caller params were modified: %v", params)
	}

	req, err = c.BuildRequest(context.Background(), http.MethodPost, "places", params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Query != nil {
		t.Errorf("expected no query on POST, got %v", req.Query)
	}
	if string(req.Body) != `{"api_key":"secret","q":"berlin"}` {
		t.Errorf("unexpected body %s", req.Body)
	}
}

func TestClient_SharedConnection(t *testing.T) {
	srv := testutil.NewAPIServer()
	testutil.T(t).Setup(srv)
	srv.On(http.MethodGet, "/api/v2/users/1", testutil.JSON(http.StatusOK, `{"id":1}`))

	c := newTestClient(t, srv, nil)
	first, err := c.Connection(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Find(context.Background(), "users", 1, nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	second, _ := c.Connection(context.Background())
	if first != second {
		t.Error("expected the connection to be reused")
	}
	if n := len(srv.Requests()); n != 20 {
		t.Errorf("expected 20 requests, got %d", n)
	}
}

func TestClient_Close(t *testing.T) {
	c, err := New(Config{Name: "geo", Protocol: "http", Server: "geo.internal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if _, err := c.Get(context.Background(), "x", nil, nil); !errors.Is(err, component.ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestClient_MissingDarwinBundleSurfacesOnFirstCall(t *testing.T) {
	trust := fakeDarwinTrust()
	c, err := New(Config{Name: "crm", Protocol: "https", Server: "crm.example.com"}, WithTrustResolver(trust))
	if err != nil {
		t.Fatalf("New() should not touch the CA bundle, got %v", err)
	}
	_, err = c.Get(context.Background(), "contacts", nil, nil)
	if !apierrors.IsConfigError(err) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}
