// Package bench drives concurrent load through an AsyncClient and reports
// latency percentiles.
package bench

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
)

// Runner issues one request template repeatedly
type Runner struct {
	client  *http.AsyncClient
	config  *Config
	metrics *Metrics
}

// NewRunner creates a runner over client. The caller keeps ownership of client.
func NewRunner(client *http.AsyncClient, config *Config) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		client:  client,
		config:  config,
		metrics: NewMetrics(),
	}, nil
}

// Metrics exposes live counters while a run is in progress
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run issues req until the request count or duration is reached, waits for
// every in-flight request, and returns the summary. Requests already issued
// when the duration ends are allowed to finish. If ctx is cancelled the
// partial summary is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, req *http.Request) (*Summary, error) {
	scheduler := NewScheduler(r.config)

	issueCtx := ctx
	if r.config.Duration > 0 {
		var cancel context.CancelFunc
		issueCtx, cancel = context.WithTimeout(ctx, r.config.Duration)
		defer cancel()
	}

	r.metrics.Start()

	var wg sync.WaitGroup
	for i := 0; r.config.Requests == 0 || i < r.config.Requests; i++ {
		if err := scheduler.Wait(issueCtx); err != nil {
			break
		}
		if err := scheduler.Acquire(issueCtx); err != nil {
			break
		}

		start := time.Now()
		future := r.client.Do(ctx, req)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer scheduler.Release()
			resp, err := future.Await(ctx)
			r.metrics.Record(time.Since(start), resp, err)
		}()
	}

	wg.Wait()
	r.metrics.Stop()

	summary := r.metrics.GetSummary()
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// ErrNoRequests is returned by Check when the run issued nothing
var ErrNoRequests = errors.New("no requests were issued")

// Check returns an error when the run issued nothing or any request failed
// beyond maxErrorRate (0..1)
func (s *Summary) Check(maxErrorRate float64) error {
	if s.TotalRequests == 0 {
		return ErrNoRequests
	}
	errorRate := 1 - s.SuccessRate
	if errorRate > maxErrorRate {
		return &ThresholdError{ErrorRate: errorRate, Max: maxErrorRate}
	}
	return nil
}

// ThresholdError reports a run whose error rate exceeded the allowed maximum
type ThresholdError struct {
	ErrorRate float64
	Max       float64
}

func (e *ThresholdError) Error() string {
	return "error rate " + formatPercent(e.ErrorRate) + " exceeds " + formatPercent(e.Max)
}
