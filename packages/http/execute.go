package http

import (
	"context"
	"net/http"
	neturl "net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// executor is the execution routine shared by Client and AsyncClient.
// The two differ only in how they schedule calls to execute.
type executor struct {
	httpClient      *http.Client
	baseURL         *neturl.URL
	defaultHeaders  map[string]string
	defaultCookies  map[string]string
	decoding        textDecoding
	requestIDHeader string
	logger          zerolog.Logger

	mu        sync.Mutex
	closed    bool
	inflight  sync.WaitGroup
	closeOnce sync.Once
}

func newExecutor(opts []ClientOption) (*executor, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient, err := cfg.buildHTTPClient()
	if err != nil {
		return nil, err
	}

	e := &executor{
		httpClient:      httpClient,
		defaultHeaders:  cfg.defaultHeaders,
		defaultCookies:  cfg.defaultCookies,
		decoding:        cfg.decoding,
		requestIDHeader: cfg.requestIDHeader,
		logger:          cfg.logger,
	}
	if cfg.baseURL != "" {
		base, err := neturl.Parse(cfg.baseURL)
		if err != nil {
			return nil, err
		}
		e.baseURL = base
	}
	return e, nil
}

// acquire registers an in-flight call. It fails once the executor is closed.
func (e *executor) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return &HTTPError{
			Message: "Request failed: " + ErrClientClosed.Error(),
			Cause:   ErrClientClosed,
		}
	}
	e.inflight.Add(1)
	return nil
}

func (e *executor) release() {
	e.inflight.Done()
}

// shutdown refuses new calls.
func (e *executor) shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// close refuses new calls and drops idle pooled connections, once.
func (e *executor) close() {
	e.shutdown()
	e.closeOnce.Do(func() {
		e.httpClient.CloseIdleConnections()
	})
}

// drain waits for in-flight calls to finish, or for ctx to end.
func (e *executor) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *executor) execute(ctx context.Context, req *Request) (*Response, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()
	return e.send(ctx, req)
}

func (e *executor) send(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	resp, err := e.roundTrip(ctx, req, start)

	event := e.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Dur("duration", time.Since(start))
	if resp != nil {
		event = event.Int("status", resp.StatusCode())
	}
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.StatusCode != 0 {
			event = event.Int("status", he.StatusCode)
		}
		event = event.Err(err)
	}
	event.Msg("http request")

	return resp, err
}

func (e *executor) roundTrip(ctx context.Context, req *Request, start time.Time) (*Response, error) {
	httpReq, err := e.buildRequest(ctx, req)
	if err != nil {
		return nil, newTransportError(err)
	}

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil && httpResp.Body != nil {
			httpResp.Body.Close()
		}
		return nil, newTransportError(err)
	}

	resp, err := NewResponse(httpResp,
		withDecoding(e.decoding),
		WithResponseDuration(time.Since(start)),
	)
	if err != nil {
		return nil, newTransportError(err)
	}

	if !resp.IsSuccess() {
		return nil, NewHTTPError(resp.Reason(), resp.StatusCode(), resp)
	}
	return resp, nil
}

func (e *executor) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u, err := req.BuildURL(e.baseURL)
	if err != nil {
		return nil, err
	}

	body, contentType, err := req.encodeBody()
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for k, v := range e.defaultHeaders {
		httpReq.Header.Set(k, v)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if e.requestIDHeader != "" && httpReq.Header.Get(e.requestIDHeader) == "" {
		httpReq.Header.Set(e.requestIDHeader, uuid.NewString())
	}

	for name, value := range e.defaultCookies {
		httpReq.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	return httpReq, nil
}

func withDecoding(d textDecoding) ResponseOption {
	return func(c *responseConfig) {
		c.decoding = d
	}
}
