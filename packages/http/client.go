package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout is the default end-to-end request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// clientConfig is shared by Client and AsyncClient and frozen at construction.
type clientConfig struct {
	baseURL         string
	timeout         time.Duration
	maxRedirects    int
	verify          bool
	proxyURL        string
	defaultHeaders  map[string]string
	defaultCookies  map[string]string
	decoding        textDecoding
	requestIDHeader string
	transport       http.RoundTripper
	logger          zerolog.Logger
}

type ClientOption func(*clientConfig)

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		timeout:        DefaultTimeout,
		maxRedirects:   DefaultMaxRedirects,
		verify:         true,
		defaultHeaders: make(map[string]string),
		defaultCookies: make(map[string]string),
		decoding:       textDecoding{defaultName: DefaultEncoding},
		logger:         zerolog.Nop(),
	}
}

// WithBaseURL sets the prefix that relative request URLs are resolved against
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithMaxRedirects caps automatic redirect following. Redirects are always
// followed; going past the cap fails the request.
func WithMaxRedirects(max int) ClientOption {
	return func(c *clientConfig) {
		c.maxRedirects = max
	}
}

// WithVerify enables or disables TLS certificate verification
func WithVerify(verify bool) ClientOption {
	return func(c *clientConfig) {
		c.verify = verify
	}
}

// WithProxy sets the upstream proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *clientConfig) {
		c.proxyURL = proxyURL
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *clientConfig) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

func WithDefaultCookie(name, value string) ClientOption {
	return func(c *clientConfig) {
		c.defaultCookies[name] = value
	}
}

// WithDefaultCookies sets cookies sent with every request
func WithDefaultCookies(cookies map[string]string) ClientOption {
	return func(c *clientConfig) {
		for k, v := range cookies {
			c.defaultCookies[k] = v
		}
	}
}

// WithDefaultEncoding names the text encoding used when a response carries no charset
func WithDefaultEncoding(name string) ClientOption {
	return func(c *clientConfig) {
		c.decoding.defaultName = name
		c.decoding.detector = nil
	}
}

// WithEncodingDetector picks the text encoding from the raw body when a
// response carries no charset. It replaces WithDefaultEncoding.
func WithEncodingDetector(fn EncodingDetector) ClientOption {
	return func(c *clientConfig) {
		c.decoding.detector = fn
	}
}

// WithRequestIDHeader stamps a fresh UUID into the named header on every
// request that does not already set it
func WithRequestIDHeader(name string) ClientOption {
	return func(c *clientConfig) {
		c.requestIDHeader = name
	}
}

// WithTransport replaces the pooled transport. Proxy and TLS settings only
// apply when rt is an *http.Transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithLogger routes per-request debug events to logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

func (c *clientConfig) buildTransport() (http.RoundTripper, error) {
	if c.transport != nil {
		if t, ok := c.transport.(*http.Transport); ok {
			t = t.Clone()
			if err := c.configureTransport(t); err != nil {
				return nil, err
			}
			return t, nil
		}
		return c.transport, nil
	}

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	if err := c.configureTransport(transport); err != nil {
		return nil, err
	}
	return transport, nil
}

func (c *clientConfig) configureTransport(transport *http.Transport) error {
	// Configure TLS verification
	if !c.verify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	// Configure proxy if specified
	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		if proxyURL.Scheme == "" || proxyURL.Host == "" {
			return fmt.Errorf("invalid proxy URL %q: missing scheme or host", c.proxyURL)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return nil
}

func (c *clientConfig) buildHTTPClient() (*http.Client, error) {
	transport, err := c.buildTransport()
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	maxRedirects := c.maxRedirects
	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return errTooManyRedirects
		}
		return nil
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
		Jar:           jar,
	}, nil
}

// Client issues blocking requests. It owns one pooled http.Client for its
// whole lifetime and is safe for concurrent use.
type Client struct {
	exec *executor
}

func NewClient(opts ...ClientOption) (*Client, error) {
	exec, err := newExecutor(opts)
	if err != nil {
		return nil, err
	}
	return &Client{exec: exec}, nil
}

// WithClient creates a Client, passes it to fn and closes it exactly once
// however fn returns, including by panic.
func WithClient(opts []ClientOption, fn func(*Client) error) error {
	c, err := NewClient(opts...)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// Do runs req through the execution routine.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.exec.execute(ctx, req)
}

func (c *Client) Get(ctx context.Context, url string, params neturl.Values, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     url,
		Params:  params,
		Headers: headers,
	})
}

func (c *Client) Post(ctx context.Context, url string, data neturl.Values, json any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPost,
		URL:     url,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

func (c *Client) Put(ctx context.Context, url string, data neturl.Values, json any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPut,
		URL:     url,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

func (c *Client) Patch(ctx context.Context, url string, data neturl.Values, json any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPatch,
		URL:     url,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodDelete,
		URL:     url,
		Headers: headers,
	})
}

// Request issues an arbitrary method.
func (c *Client) Request(ctx context.Context, method, url string, params, data neturl.Values, json any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  method,
		URL:     url,
		Params:  params,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

// Close releases pooled connections. Later requests fail with ErrClientClosed.
// Calling Close more than once is a no-op.
func (c *Client) Close() error {
	c.exec.close()
	return nil
}
