package rest

import (
	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
)

// Convenience re-exports so callers of the typed helpers can check errors
// without importing the errors package.

// IsNotFound checks if the error is a 404 Not Found.
func IsNotFound(err error) bool { return apierrors.IsNotFound(err) }

// IsUnauthorized checks if the error is a 401 Unauthorized.
func IsUnauthorized(err error) bool { return apierrors.IsUnauthorized(err) }

// IsForbidden checks if the error is a 403 Forbidden.
func IsForbidden(err error) bool { return apierrors.IsForbidden(err) }

// IsUnprocessable checks if the error is a 422 Unprocessable Entity.
func IsUnprocessable(err error) bool { return apierrors.IsUnprocessable(err) }

// IsRateLimit checks if the error is a 429 Too Many Requests.
func IsRateLimit(err error) bool { return apierrors.IsRateLimited(err) }

// IsServerError checks if the error is a 5xx server error.
func IsServerError(err error) bool { return apierrors.IsServerError(err) }

// IsRetryable checks if the error can be retried.
func IsRetryable(err error) bool { return apierrors.IsRetryable(err) }

// IsTimeout checks if the error is a transport timeout.
func IsTimeout(err error) bool { return httpclient.IsTimeout(err) }
