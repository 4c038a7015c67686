package api

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// NetworkError is returned for every failed API call
type NetworkError struct {
	Op         string // logical operation, e.g. "list users"
	URL        string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
	}
	if e.Err == nil {
		return "Network Error"
	}
	return describeTransportError(e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a *NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// describeTransportError turns a transport failure into an actionable message
func describeTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - the server took too long to respond"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout - the server took too long to respond"
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return "TLS certificate signed by unknown authority - configure a CA file or use --insecure"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return "Connection refused - check if server is running and port is correct"
			case syscall.ECONNRESET:
				return "Connection reset by server"
			case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
				return "Network unreachable - check network connection and firewall settings"
			}
		}
	}

	return describeErrorString(err.Error())
}

// describeErrorString categorizes errors that only survive as text
func describeErrorString(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "deadline exceeded"),
		strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return "Request timeout - the server took too long to respond"
	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify hostname is correct and network is available"
	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check if server is running and port is correct"
	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by server"
	case strings.Contains(errLower, "network is unreachable"),
		strings.Contains(errLower, "no route to host"):
		return "Network unreachable - check network connection and firewall settings"
	case strings.Contains(errLower, "x509"),
		strings.Contains(errLower, "tls"),
		strings.Contains(errLower, "certificate"):
		return "TLS error: " + errStr
	case strings.Contains(errLower, "unsupported protocol scheme"),
		strings.Contains(errLower, "invalid url"):
		return "Invalid URL - verify the base URL format and protocol (http/https)"
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly"
	case strings.Contains(errLower, "invalid character"),
		strings.Contains(errLower, "cannot unmarshal"):
		return "Invalid response body: " + errStr
	}

	return "Network Error: " + errStr
}
