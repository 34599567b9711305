package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
)

// Response wraps a typed REST response.
type Response[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers http.Header
	// Data is the decoded response body.
	Data T
	// Empty is true when the server sent no body; Data is then the zero value.
	Empty bool
}

// Find fetches basePath/id into T.
func Find[T any](ctx context.Context, c *httpclient.Client, basePath string, id any, query map[string]any) (*Response[T], error) {
	return Get[T](ctx, c, httpclient.JoinPath(basePath, id), query, nil)
}

// FindAll fetches basePath into T, typically a slice.
func FindAll[T any](ctx context.Context, c *httpclient.Client, basePath string, query map[string]any) (*Response[T], error) {
	return Get[T](ctx, c, basePath, query, nil)
}

// FindNested fetches basePath/id/nestedPath into T.
func FindNested[T any](ctx context.Context, c *httpclient.Client, basePath string, id any, nestedPath string) (*Response[T], error) {
	return Get[T](ctx, c, httpclient.JoinPath(basePath, id, nestedPath), nil, nil)
}

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, c *httpclient.Client, path string, query map[string]any, headers map[string]string) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, query, headers)
}

// Create performs a POST request and decodes the response into type T.
// payload may be a map or any value that encodes to a JSON object.
func Create[T any](ctx context.Context, c *httpclient.Client, path string, payload any, headers map[string]string) (*Response[T], error) {
	params, err := Params(payload)
	if err != nil {
		return nil, err
	}
	return do[T](ctx, c, http.MethodPost, path, params, headers)
}

// Update performs a PUT request and decodes the response into type T.
func Update[T any](ctx context.Context, c *httpclient.Client, path string, payload any, headers map[string]string) (*Response[T], error) {
	params, err := Params(payload)
	if err != nil {
		return nil, err
	}
	return do[T](ctx, c, http.MethodPut, path, params, headers)
}

// Destroy performs a DELETE to basePath/id and decodes the response into type T.
func Destroy[T any](ctx context.Context, c *httpclient.Client, basePath string, id any, headers map[string]string) (*Response[T], error) {
	return do[T](ctx, c, http.MethodDelete, httpclient.JoinPath(basePath, id), nil, headers)
}

// Params converts a payload into request parameters so auth parameters can
// be merged into it. Maps are copied; other values round-trip through JSON
// and must encode to an object.
func Params(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return httpclient.MergeParams(p, nil), nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("httpclient/rest: encode payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var params map[string]any
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("httpclient/rest: payload must encode to a JSON object: %w", err)
	}
	return params, nil
}

// do executes a REST request and decodes the JSON response.
func do[T any](ctx context.Context, c *httpclient.Client, method, path string, params map[string]any, headers map[string]string) (*Response[T], error) {
	req, err := c.BuildRequest(ctx, method, path, params, headers)
	if err != nil {
		return nil, err
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		// A non-success status still carries a body; decode it if it fits T.
		if resp != nil && len(bytes.TrimSpace(resp.Body)) > 0 {
			var data T
			if jsonErr := json.Unmarshal(resp.Body, &data); jsonErr == nil {
				return &Response[T]{
					StatusCode: resp.StatusCode,
					Headers:    resp.Headers,
					Data:       data,
				}, err
			}
		}
		return nil, err
	}

	out := &Response[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		out.Empty = true
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
		c.Logger().Error(fmt.Sprintf("Http Client response decode failed: %s %s", req.Method, req.FullPath), map[string]interface{}{
			logger.FieldErrorClass: fmt.Sprintf("%T", err),
			logger.FieldError:      err.Error(),
			logger.FieldMethod:     req.Method,
			logger.FieldPath:       req.FullPath,
			"json":                 string(resp.Body),
		})
		return nil, fmt.Errorf("httpclient/rest: decode response: %w", err)
	}
	return out, nil
}
