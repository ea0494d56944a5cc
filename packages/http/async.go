package http

import (
	"context"
	"net/http"
	neturl "net/url"
)

// Future is the pending result of an AsyncClient call.
type Future struct {
	done chan struct{}
	resp *Response
	err  error
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await suspends until the request finishes or ctx ends. If ctx ends first,
// Await returns ctx.Err(); the request itself is governed by the context it
// was issued with.
func (f *Future) Await(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without waiting. ok is false while the request is still running.
func (f *Future) Result() (resp *Response, err error, ok bool) {
	select {
	case <-f.done:
		return f.resp, f.err, true
	default:
		return nil, nil, false
	}
}

func failedFuture(err error) *Future {
	f := &Future{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Gather awaits every future and returns the results in order.
// errs[i] is nil when futures[i] succeeded.
func Gather(ctx context.Context, futures ...*Future) ([]*Response, []error) {
	responses := make([]*Response, len(futures))
	errs := make([]error, len(futures))
	for i, f := range futures {
		responses[i], errs[i] = f.Await(ctx)
	}
	return responses, errs
}

// AsyncClient issues requests without blocking the caller. Each call runs on
// its own goroutine and is cancelled through the context it was issued with.
// It is safe for concurrent use.
type AsyncClient struct {
	exec *executor
}

func NewAsyncClient(opts ...ClientOption) (*AsyncClient, error) {
	exec, err := newExecutor(opts)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{exec: exec}, nil
}

// WithAsyncClient creates an AsyncClient, passes it to fn and awaits Close
// exactly once before returning, including when fn panics.
func WithAsyncClient(ctx context.Context, opts []ClientOption, fn func(*AsyncClient) error) (err error) {
	c, err := NewAsyncClient(opts...)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := c.Close(context.WithoutCancel(ctx))
		if err == nil {
			err = closeErr
		}
	}()
	return fn(c)
}

// Do schedules req on the execution routine.
func (c *AsyncClient) Do(ctx context.Context, req *Request) *Future {
	if err := c.exec.acquire(); err != nil {
		return failedFuture(err)
	}

	f := &Future{done: make(chan struct{})}
	go func() {
		defer c.exec.release()
		defer close(f.done)
		f.resp, f.err = c.exec.send(ctx, req)
	}()
	return f
}

func (c *AsyncClient) Get(ctx context.Context, url string, params neturl.Values, headers map[string]string) *Future {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     url,
		Params:  params,
		Headers: headers,
	})
}

func (c *AsyncClient) Post(ctx context.Context, url string, data neturl.Values, json any, headers map[string]string) *Future {
	return c.Do(ctx, &Request{
		Method:  http.MethodPost,
		URL:     url,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

func (c *AsyncClient) Put(ctx context.Context, url string, data neturl.Values, json any, headers map[string]string) *Future {
	return c.Do(ctx, &Request{
		Method:  http.MethodPut,
		URL:     url,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

func (c *AsyncClient) Patch(ctx context.Context, url string, data neturl.Values, json any, headers map[string]string) *Future {
	return c.Do(ctx, &Request{
		Method:  http.MethodPatch,
		URL:     url,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

func (c *AsyncClient) Delete(ctx context.Context, url string, headers map[string]string) *Future {
	return c.Do(ctx, &Request{
		Method:  http.MethodDelete,
		URL:     url,
		Headers: headers,
	})
}

// Request issues an arbitrary method.
func (c *AsyncClient) Request(ctx context.Context, method, url string, params, data neturl.Values, json any, headers map[string]string) *Future {
	return c.Do(ctx, &Request{
		Method:  method,
		URL:     url,
		Params:  params,
		Data:    data,
		JSON:    json,
		Headers: headers,
	})
}

// Close refuses new requests, waits for in-flight ones (or ctx), then
// releases pooled connections. The release happens exactly once.
func (c *AsyncClient) Close(ctx context.Context) error {
	c.exec.shutdown()
	err := c.exec.drain(ctx)
	c.exec.close()
	return err
}
