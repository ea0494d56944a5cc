package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Response is a read-only snapshot of a completed HTTP exchange.
// It holds no reference to the connection it was read from.
type Response struct {
	statusCode int
	status     string
	header     http.Header
	content    []byte
	text       string
	url        string
	encoding   string
	duration   time.Duration
}

type responseConfig struct {
	decoding textDecoding
	duration time.Duration
}

// ResponseOption configures NewResponse.
type ResponseOption func(*responseConfig)

// WithResponseEncoding sets the fallback encoding used when the response has no charset.
func WithResponseEncoding(name string) ResponseOption {
	return func(c *responseConfig) {
		c.decoding.defaultName = name
	}
}

// WithResponseEncodingDetector sets the fallback detector used when the response has no charset.
func WithResponseEncodingDetector(fn EncodingDetector) ResponseOption {
	return func(c *responseConfig) {
		c.decoding.detector = fn
	}
}

// WithResponseDuration records how long the exchange took.
func WithResponseDuration(d time.Duration) ResponseOption {
	return func(c *responseConfig) {
		c.duration = d
	}
}

// NewResponse reads and closes resp.Body and returns the snapshot.
func NewResponse(resp *http.Response, opts ...ResponseOption) (*Response, error) {
	cfg := responseConfig{decoding: textDecoding{defaultName: DefaultEncoding}}
	for _, opt := range opts {
		opt(&cfg)
	}

	var content []byte
	if resp.Body != nil {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		content = body
	}

	r := &Response{
		statusCode: resp.StatusCode,
		status:     resp.Status,
		header:     resp.Header.Clone(),
		content:    content,
		duration:   cfg.duration,
	}
	if r.header == nil {
		r.header = make(http.Header)
	}
	if resp.Request != nil && resp.Request.URL != nil {
		r.url = resp.Request.URL.String()
	}
	r.encoding = cfg.decoding.resolve(r.header.Get("Content-Type"), content)
	r.text = decodeText(content, r.encoding)
	return r, nil
}

func (r *Response) StatusCode() int { return r.statusCode }

// Status returns the status line, e.g. "404 Not Found".
func (r *Response) Status() string { return r.status }

// Reason returns the reason phrase of the status line, falling back to the
// standard text for the code.
func (r *Response) Reason() string {
	reason := strings.TrimSpace(strings.TrimPrefix(r.status, strconv.Itoa(r.statusCode)))
	if reason == "" {
		reason = http.StatusText(r.statusCode)
	}
	return reason
}

// Headers returns a copy of the response headers with repeated values joined by ", ".
func (r *Response) Headers() map[string]string {
	headers := make(map[string]string, len(r.header))
	for k, vv := range r.header {
		headers[k] = strings.Join(vv, ", ")
	}
	return headers
}

// Header returns the value of the named header, matched case-insensitively.
func (r *Response) Header(key string) string {
	return strings.Join(r.header.Values(key), ", ")
}

// HeaderValues returns a copy of the raw header map.
func (r *Response) HeaderValues() http.Header {
	return r.header.Clone()
}

// Content returns a copy of the raw body.
func (r *Response) Content() []byte {
	return bytes.Clone(r.content)
}

func (r *Response) Text() string { return r.text }

// URL is the final request URL, after any redirects.
func (r *Response) URL() string { return r.url }

func (r *Response) Encoding() string { return r.encoding }

func (r *Response) Duration() time.Duration { return r.duration }

func (r *Response) ContentType() string {
	return r.header.Get("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.statusCode >= 300 && r.statusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.statusCode >= 400 && r.statusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.statusCode >= 500 && r.statusCode < 600
}

func (r *Response) IsError() bool {
	return r.statusCode >= 400 && r.statusCode < 600
}

type decodeConfig struct {
	useNumber             bool
	disallowUnknownFields bool
}

// DecodeOption configures JSON decoding of the body.
type DecodeOption func(*decodeConfig)

// UseNumber decodes numbers into json.Number instead of float64.
func UseNumber() DecodeOption {
	return func(c *decodeConfig) { c.useNumber = true }
}

// DisallowUnknownFields rejects object keys that do not match a destination field.
func DisallowUnknownFields() DecodeOption {
	return func(c *decodeConfig) { c.disallowUnknownFields = true }
}

// JSON parses the body. Decode errors come straight from encoding/json.
func (r *Response) JSON(opts ...DecodeOption) (any, error) {
	var result any
	if err := r.DecodeJSON(&result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeJSON decodes the body into v.
func (r *Response) DecodeJSON(v any, opts ...DecodeOption) error {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.useNumber && !cfg.disallowUnknownFields {
		return json.Unmarshal(r.content, v)
	}

	dec := json.NewDecoder(bytes.NewReader(r.content))
	if cfg.useNumber {
		dec.UseNumber()
	}
	if cfg.disallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		// Trailing data; Unmarshal reports it as a *json.SyntaxError.
		var rest any
		return json.Unmarshal(r.content, &rest)
	}
	return nil
}

var statusCategories = map[int]string{
	1: "Informational response",
	3: "Redirect response",
	4: "Client error",
	5: "Server error",
}

// RaiseForStatus returns an *HTTPError when the status is not 2xx.
// The message names the status class ("Client error", "Server error", ...),
// unlike the errors returned by the clients, which carry the reason phrase.
func (r *Response) RaiseForStatus() error {
	if r.IsSuccess() {
		return nil
	}
	message, ok := statusCategories[r.statusCode/100]
	if !ok {
		message = "HTTP Error"
	}
	return NewHTTPError(message, r.statusCode, r)
}
