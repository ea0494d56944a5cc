package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Request describes one call through the execution routine.
// Data (form) takes precedence over JSON when both are set.
type Request struct {
	Method  string
	URL     string
	Params  url.Values
	Data    url.Values
	JSON    any
	Headers map[string]string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetParam(key, value string) *Request {
	if r.Params == nil {
		r.Params = make(url.Values)
	}
	r.Params.Add(key, value)
	return r
}

func (r *Request) SetFormValue(key, value string) *Request {
	if r.Data == nil {
		r.Data = make(url.Values)
	}
	r.Data.Add(key, value)
	return r
}

func (r *Request) SetJSON(v any) *Request {
	r.JSON = v
	return r
}

// BuildURL resolves the request URL against base and appends Params.
//
// Absolute URLs ignore base. Relative URLs are appended to the base path, so
// base "https://api.example.com/v1" with "/users" gives ".../v1/users".
func (r *Request) BuildURL(base *url.URL) (*url.URL, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, err
	}

	// A network-path reference ("//host/path") keeps its own host and only
	// borrows the scheme from base.
	if u.Scheme == "" && u.Host != "" && base != nil {
		u.Scheme = base.Scheme
	}

	if !u.IsAbs() && base != nil {
		merged := *base
		basePath := merged.EscapedPath()
		if !strings.HasSuffix(basePath, "/") {
			basePath += "/"
		}
		joined, err := url.Parse(basePath + strings.TrimPrefix(u.EscapedPath(), "/"))
		if err != nil {
			return nil, err
		}
		merged.Path = joined.Path
		merged.RawPath = joined.RawPath
		merged.RawQuery = u.RawQuery
		merged.Fragment = u.Fragment
		u = &merged
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: missing scheme or host", r.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}

	if len(r.Params) > 0 {
		q := u.Query()
		for k, vv := range r.Params {
			for _, v := range vv {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// encodeBody returns the body reader and its Content-Type, or nil when the request has no body.
func (r *Request) encodeBody() (io.Reader, string, error) {
	switch {
	case r.Data != nil:
		return strings.NewReader(r.Data.Encode()), "application/x-www-form-urlencoded", nil
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encoding JSON body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}
