package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

// Header names and values set by the request builder.
const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Request is a finalized outbound request produced by Client.BuildRequest.
type Request struct {
	// Method is the upper-case HTTP method.
	Method string
	// Path is the caller's relative path. It appears in error messages.
	Path string
	// FullPath is Path normalized under the client's base URI.
	FullPath string
	// Query holds the merged query parameters.
	Query map[string]any
	// Body is the encoded request body, nil for reads.
	Body []byte
	// Headers are the final request headers.
	Headers map[string]string

	// target is the instrumented path: FullPath plus the caller's query for GET.
	target string
}

// URL returns the request URL relative to the connection's base URL.
func (r *Request) URL() string {
	if len(r.Query) == 0 {
		return r.FullPath
	}
	return r.FullPath + "?" + EncodeQuery(r.Query)
}

// Response is the raw result of one round trip.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers http.Header
	// Body is the raw response body. Empty when the server sent none.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// NormalizePath joins basePath and relPath under a leading slash and
// collapses repeated slashes.
func NormalizePath(basePath, relPath string) string {
	return CollapseSlashes("/" + basePath + "/" + relPath)
}

// CollapseSlashes replaces every run of '/' with a single '/'.
func CollapseSlashes(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// JoinPath joins path segments with '/', formatting non-string parts with
// fmt. Repeated slashes are left for NormalizePath.
func JoinPath(parts ...any) string {
	segments := make([]string, len(parts))
	for i, p := range parts {
		segments[i] = fmt.Sprint(p)
	}
	return strings.Join(segments, "/")
}

// MergeParams returns params overlaid with auth. Auth keys win on collision.
// Neither input is modified.
func MergeParams(params, auth map[string]any) map[string]any {
	merged := make(map[string]any, len(params)+len(auth))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range auth {
		merged[k] = v
	}
	return merged
}

// EncodeQuery URL-encodes params with keys in sorted order. Slices become
// repeated keys and nested maps use bracketed keys ("filter[name]=x").
func EncodeQuery(params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		addQueryValue(values, k, v)
	}
	return values.Encode()
}

func addQueryValue(values url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
		values.Add(key, "")
		return
	case string:
		values.Add(key, val)
		return
	case []string:
		for _, s := range val {
			values.Add(key, s)
		}
		return
	case map[string]any:
		for k, sub := range val {
			addQueryValue(values, key+"["+k+"]", sub)
		}
		return
	case fmt.Stringer:
		values.Add(key, val.String())
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			addQueryValue(values, key, rv.Index(i).Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		for _, mk := range keys {
			addQueryValue(values, key+"["+fmt.Sprint(mk.Interface())+"]", rv.MapIndex(mk).Interface())
		}
	default:
		values.Add(key, fmt.Sprint(v))
	}
}

// DecodeQuery parses an encoded query. Keys with one value map to a string,
// keys with several values map to a []string.
func DecodeQuery(query string) (map[string]any, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return nil, err
	}
	result := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			result[k] = vs[0]
			continue
		}
		result[k] = vs
	}
	return result, nil
}

// ReadHeaders returns the headers for a GET or DELETE: Accept plus custom.
func ReadHeaders(custom map[string]string) map[string]string {
	headers := map[string]string{HeaderAccept: ContentTypeJSON}
	for k, v := range custom {
		headers[k] = v
	}
	return headers
}

// WriteHeaders returns the headers for a POST, PUT, PATCH or DELETE: the read headers plus
// the content type of the body encoding.
func WriteHeaders(custom map[string]string, encoding BodyEncoding) map[string]string {
	contentType := ContentTypeJSON
	if encoding == EncodingForm {
		contentType = ContentTypeForm
	}
	headers := map[string]string{
		HeaderAccept:      ContentTypeJSON,
		HeaderContentType: contentType,
	}
	for k, v := range custom {
		headers[k] = v
	}
	return headers
}
