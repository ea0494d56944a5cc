package http

import (
	"errors"
	"fmt"
)

// ErrClientClosed is the cause carried by the HTTPError returned when a request
// is issued on a client that has already been closed.
var ErrClientClosed = errors.New("client is closed")

// errTooManyRedirects is returned from the redirect policy once the cap is hit.
var errTooManyRedirects = errors.New("exceeded maximum allowed redirects")

// HTTPError is the single error kind returned by Client and AsyncClient.
//
// A non-nil Response means an HTTP reply was received with a non-2xx status.
// A nil Response (and a zero StatusCode) means no reply was obtained at all:
// connection refused, timeout, TLS or DNS failure, malformed URL.
type HTTPError struct {
	Message    string
	StatusCode int
	Response   *Response
	Cause      error
}

// NewHTTPError builds an HTTPError. A zero statusCode defaults to the status of resp.
func NewHTTPError(message string, statusCode int, resp *Response) *HTTPError {
	if statusCode == 0 && resp != nil {
		statusCode = resp.StatusCode()
	}
	return &HTTPError{
		Message:    message,
		StatusCode: statusCode,
		Response:   resp,
	}
}

func newTransportError(err error) *HTTPError {
	return &HTTPError{
		Message: "Request failed: " + err.Error(),
		Cause:   err,
	}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Cause }

// AsHTTPError extracts *HTTPError from an error chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// IsTransportError reports whether err is an HTTPError raised before any
// response was received: it carries neither a status nor a response.
func IsTransportError(err error) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Response == nil && he.StatusCode == 0
}

// IsHTTPStatus reports whether err is an HTTPError for the given status code.
func IsHTTPStatus(err error, code int) bool {
	he, ok := AsHTTPError(err)
	return ok && he.StatusCode == code
}
