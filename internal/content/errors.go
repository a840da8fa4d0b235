package content

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrUnsupportedPolicy is returned for any freshness policy other than BypassCache.
var ErrUnsupportedPolicy = errors.New("unsupported freshness policy")

// ErrInvalidResponse is returned when the transport yields no response or a
// response without a body.
var ErrInvalidResponse = errors.New("Invalid response from server")

// TransportError wraps a network-level failure (DNS, reset, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "Network error"
	}
	return "Network error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// HTTPError reports a response whose status was not 200.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Server error: %d", e.StatusCode)
}

// NotFound reports whether the store answered 404.
func (e *HTTPError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// ClientError reports a 4xx status.
func (e *HTTPError) ClientError() bool { return e.StatusCode >= 400 && e.StatusCode < 500 }

// ServerError reports a 5xx status.
func (e *HTTPError) ServerError() bool { return e.StatusCode >= 500 && e.StatusCode < 600 }

// DecodingError reports a payload that is not valid UTF-8 text.
type DecodingError struct {
	URL string
	// MIME is the detected content type of the payload, for diagnostics.
	MIME string
	Size int
}

func (e *DecodingError) Error() string {
	return "Could not decode response"
}

// IsNotFound reports whether err is an HTTPError carrying 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.NotFound()
}
