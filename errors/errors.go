package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// APIError is returned for every response outside the success band.
type APIError struct {
	// Kind is the status class selected by KindForStatus.
	Kind Kind
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Method is the lower-case HTTP method of the request.
	Method string
	// Path is the request path as given by the caller.
	Path string
	// Message is "{status} {method}: {path}".
	Message string
	// Body is the raw response body (may be nil).
	Body []byte
	// Err is an optional nested error.
	Err error
}

// NewAPIError builds the error for a non-success response.
func NewAPIError(status int, method, path string, body []byte) *APIError {
	method = strings.ToLower(method)
	return &APIError{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    fmt.Sprintf("%d %s: %s", status, method, path),
		Body:       body,
	}
}

// Error joins the message, the nested error and the response body.
func (e *APIError) Error() string {
	parts := []string{e.Message}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(e.Body) > 0 {
		parts = append(parts, string(e.Body))
	}
	return strings.Join(parts, "\n\n")
}

// Unwrap returns the nested error.
func (e *APIError) Unwrap() error { return e.Err }

// Is matches a Kind target.
func (e *APIError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// WithCause sets the nested error and returns the receiver.
func (e *APIError) WithCause(err error) *APIError {
	e.Err = err
	return e
}

// Retryable reports whether the error's kind is retryable.
func (e *APIError) Retryable() bool {
	return e.Kind.Retryable()
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAPIError checks if err is (or wraps) an *APIError.
func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)
	return ok
}

// KindOf returns the kind of an API error, or false if err is not one.
func KindOf(err error) (Kind, bool) {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return KindUnknownStatus, false
	}
	return apiErr.Kind, true
}

// IsNotFound checks for a 404 error.
func IsNotFound(err error) bool { return stderrors.Is(err, KindNotFound) }

// IsUnauthorized checks for a 401 error.
func IsUnauthorized(err error) bool { return stderrors.Is(err, KindUnauthorized) }

// IsForbidden checks for a 403 error.
func IsForbidden(err error) bool { return stderrors.Is(err, KindForbidden) }

// IsRateLimited checks for a 429 error.
func IsRateLimited(err error) bool { return stderrors.Is(err, KindTooManyRequests) }

// IsUnprocessable checks for a 422 error.
func IsUnprocessable(err error) bool { return stderrors.Is(err, KindUnprocessableEntity) }

// IsServerError checks for an error in the 5xx range.
func IsServerError(err error) bool {
	k, ok := KindOf(err)
	return ok && k.IsServerSide()
}

// IsRetryable checks if err is an API error whose kind may be retried.
func IsRetryable(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Retryable()
}
