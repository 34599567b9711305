package httpclient

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether err is a transport timeout or an expired deadline.
// Transport errors are never wrapped in an APIError.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransport reports whether err came from the network layer rather than
// from response classification or decoding.
func IsTransport(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
