package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"
)

func TestDescribeErrorString(t *testing.T) {
	tests := []struct {
		name     string
		errStr   string
		wantText string
	}{
		{
			name:     "context deadline exceeded",
			errStr:   "Get \"http://example.com\": context deadline exceeded",
			wantText: "Request timeout",
		},
		{
			name:     "DNS lookup failure",
			errStr:   "dial tcp: lookup nonexistent.example.com: no such host",
			wantText: "DNS resolution failed",
		},
		{
			name:     "connection refused",
			errStr:   "dial tcp 127.0.0.1:9999: connect: connection refused",
			wantText: "Connection refused",
		},
		{
			name:     "connection reset",
			errStr:   "read tcp 127.0.0.1:8080->127.0.0.1:54321: read: connection reset by peer",
			wantText: "Connection reset by server",
		},
		{
			name:     "network unreachable",
			errStr:   "dial tcp: network is unreachable",
			wantText: "Network unreachable",
		},
		{
			name:     "TLS error",
			errStr:   "x509: certificate has expired or is not yet valid",
			wantText: "TLS error",
		},
		{
			name:     "unsupported scheme",
			errStr:   "unsupported protocol scheme \"ftp\"",
			wantText: "Invalid URL",
		},
		{
			name:     "unexpected EOF",
			errStr:   "unexpected EOF",
			wantText: "Connection closed unexpectedly",
		},
		{
			name:     "unknown error",
			errStr:   "something odd",
			wantText: "Network Error: something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeErrorString(tt.errStr)
			if !strings.Contains(got, tt.wantText) {
				t.Errorf("describeErrorString(%q) = %q, want it to contain %q", tt.errStr, got, tt.wantText)
			}
		})
	}
}

func TestDescribeTransportError_Typed(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{
			name:     "deadline",
			err:      fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
			wantText: "Request timeout",
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			wantText: "Request cancelled",
		},
		{
			name:     "syscall refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			wantText: "Connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeTransportError(tt.err)
			if !strings.Contains(got, tt.wantText) {
				t.Errorf("describeTransportError() = %q, want it to contain %q", got, tt.wantText)
			}
		})
	}
}

func TestNetworkError_Message(t *testing.T) {
	statusErr := &NetworkError{Op: "list users", StatusCode: 500, Err: errors.New("unexpected status: 500")}
	if statusErr.Error() != "Request failed with status code 500" {
		t.Errorf("unexpected message: %s", statusErr.Error())
	}

	bare := &NetworkError{Op: "list users"}
	if bare.Error() != "Network Error" {
		t.Errorf("unexpected message: %s", bare.Error())
	}

	wrapped := fmt.Errorf("outer: %w", statusErr)
	if !IsNetworkError(wrapped) {
		t.Error("expected wrapped error to be detected as NetworkError")
	}
	if IsNetworkError(errors.New("plain")) {
		t.Error("plain error must not be a NetworkError")
	}
}
