package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	apierrors "github.com/kbukum/apikit/errors"
)

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string   { return "net" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return false }

var _ net.Error = timeoutErr{}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"net timeout", timeoutErr{timeout: true}, true},
		{"net non-timeout", timeoutErr{}, false},
		{"canceled", context.Canceled, false},
		{"api error", apierrors.NewAPIError(504, "GET", "/x", nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeout(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsTransport(t *testing.T) {
	if !IsTransport(timeoutErr{}) {
		t.Error("expected net.Error to be a transport error")
	}
	if IsTransport(errors.New("decode")) {
		t.Error("plain errors are not transport errors")
	}
	if IsTransport(apierrors.NewAPIError(500, "GET", "/x", nil)) {
		t.Error("API errors are not transport errors")
	}
}
