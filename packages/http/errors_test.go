package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError_ErrorWithStatus(t *testing.T) {
	err := NewHTTPError("Not Found", 404, nil)
	assert.Equal(t, "HTTP 404: Not Found", err.Error())
}

func TestHTTPError_ErrorWithoutStatus(t *testing.T) {
	err := NewHTTPError("Request failed: connection refused", 0, nil)
	assert.Equal(t, "Request failed: connection refused", err.Error())
	assert.Zero(t, err.StatusCode)
	assert.Nil(t, err.Response)
}

func TestHTTPError_StatusDefaultsToResponse(t *testing.T) {
	resp := newTestResponse(t, http.StatusServiceUnavailable, "", nil)

	err := NewHTTPError("boom", 0, resp)
	assert.Equal(t, 503, err.StatusCode)
	assert.Same(t, resp, err.Response)

	err = NewHTTPError("boom", 418, resp)
	assert.Equal(t, 418, err.StatusCode)
}

func TestHTTPError_Unwrap(t *testing.T) {
	err := newTransportError(fmt.Errorf("dial: %w", context.DeadlineExceeded))

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "Request failed: dial: context deadline exceeded", err.Error())
}

func TestAsHTTPError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewHTTPError("Client error", 404, nil))

	he, ok := AsHTTPError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 404, he.StatusCode)
	assert.True(t, IsHTTPStatus(wrapped, 404))
	assert.False(t, IsTransportError(wrapped))

	_, ok = AsHTTPError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsTransportError(t *testing.T) {
	assert.True(t, IsTransportError(newTransportError(errors.New("refused"))))
	assert.False(t, IsTransportError(errors.New("refused")))
	assert.False(t, IsTransportError(NewHTTPError("Client error", 404, nil)))
	assert.False(t, IsTransportError(&HTTPError{Message: "Bad Gateway", StatusCode: 502}))
}
