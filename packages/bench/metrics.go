package bench

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/thinhttp/packages/http"
)

const maxLatencyUs = 60_000_000

// Metrics collects and aggregates benchmark results
type Metrics struct {
	mu sync.Mutex

	totalRequests   atomic.Int64
	successRequests atomic.Int64
	httpErrors      atomic.Int64
	transportErrors atomic.Int64

	// Latency histogram (in microseconds for precision)
	histogram   *hdrhistogram.Histogram
	statusCodes map[int]int64

	startTime time.Time
	endTime   time.Time
}

// Summary is the final result of a run
type Summary struct {
	Duration        time.Duration `json:"duration"`
	TotalRequests   int64         `json:"totalRequests"`
	SuccessCount    int64         `json:"successCount"`
	HTTPErrorCount  int64         `json:"httpErrorCount"`
	TransportErrors int64         `json:"transportErrorCount"`
	RPS             float64       `json:"rps"`
	SuccessRate     float64       `json:"successRate"`
	StatusCodes     map[int]int64 `json:"statusCodes"`
	Min             time.Duration `json:"min"`
	Max             time.Duration `json:"max"`
	Mean            time.Duration `json:"mean"`
	StdDev          time.Duration `json:"stdDev"`
	P50             time.Duration `json:"p50"`
	P90             time.Duration `json:"p90"`
	P95             time.Duration `json:"p95"`
	P99             time.Duration `json:"p99"`
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram:   hdrhistogram.New(1, maxLatencyUs, 3),
		statusCodes: make(map[int]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// Record records the outcome of one request
func (m *Metrics) Record(latency time.Duration, resp *http.Response, err error) {
	m.totalRequests.Add(1)

	status := 0
	switch {
	case err == nil:
		m.successRequests.Add(1)
		if resp != nil {
			status = resp.StatusCode()
		}
	default:
		// Anything without a response, including an abandoned Await, counts
		// as a transport failure.
		if he, ok := http.AsHTTPError(err); ok && he.Response != nil {
			m.httpErrors.Add(1)
			status = he.StatusCode
		} else {
			m.transportErrors.Add(1)
		}
	}

	latencyUs := latency.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	m.mu.Lock()
	_ = m.histogram.RecordValue(latencyUs)
	if status != 0 {
		m.statusCodes[status]++
	}
	m.mu.Unlock()
}

func usToDuration(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	total := m.totalRequests.Load()
	success := m.successRequests.Load()

	rps := float64(0)
	if duration.Seconds() > 0 {
		rps = float64(total) / duration.Seconds()
	}
	successRate := float64(0)
	if total > 0 {
		successRate = float64(success) / float64(total)
	}

	codes := make(map[int]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		codes[k] = v
	}

	return &Summary{
		Duration:        duration,
		TotalRequests:   total,
		SuccessCount:    success,
		HTTPErrorCount:  m.httpErrors.Load(),
		TransportErrors: m.transportErrors.Load(),
		RPS:             rps,
		SuccessRate:     successRate,
		StatusCodes:     codes,
		Min:             usToDuration(m.histogram.Min()),
		Max:             usToDuration(m.histogram.Max()),
		Mean:            time.Duration(m.histogram.Mean() * float64(time.Microsecond)),
		StdDev:          time.Duration(m.histogram.StdDev() * float64(time.Microsecond)),
		P50:             usToDuration(m.histogram.ValueAtQuantile(50)),
		P90:             usToDuration(m.histogram.ValueAtQuantile(90)),
		P95:             usToDuration(m.histogram.ValueAtQuantile(95)),
		P99:             usToDuration(m.histogram.ValueAtQuantile(99)),
	}
}
