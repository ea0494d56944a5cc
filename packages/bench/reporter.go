package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Reporter handles output for benchmark runs
type Reporter struct {
	writer  io.Writer
	noColor bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.green = r.newColor(color.FgGreen)
	r.red = r.newColor(color.FgRed)
	r.yellow = r.newColor(color.FgYellow)
	r.cyan = r.newColor(color.FgCyan)
	r.bold = r.newColor(color.Bold)

	return r
}

func (r *Reporter) newColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if r.noColor {
		c.DisableColor()
	}
	return c
}

// Header prints the run header
func (r *Reporter) Header(method, url string, config *Config) {
	fmt.Fprintln(r.writer)
	r.cyan.Fprintf(r.writer, "Benchmarking: %s %s\n", method, url)

	var details []string
	if config.Requests > 0 {
		details = append(details, fmt.Sprintf("Requests: %d", config.Requests))
	}
	if config.Duration > 0 {
		details = append(details, fmt.Sprintf("Duration: %s", config.Duration))
	}
	details = append(details, fmt.Sprintf("Concurrency: %d", config.Concurrency))
	if config.Rate > 0 {
		details = append(details, fmt.Sprintf("Target: %.0f req/s", config.Rate))
	}

	fmt.Fprintf(r.writer, "%s\n", strings.Join(details, " | "))
	fmt.Fprintln(r.writer)
}

// Summary prints the final summary
func (r *Reporter) Summary(summary *Summary) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "BENCHMARK SUMMARY")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	fmt.Fprintf(r.writer, "Duration:   %s\n", formatDuration(summary.Duration))
	fmt.Fprintf(r.writer, "Total:      ")
	r.bold.Fprintf(r.writer, "%d", summary.TotalRequests)
	fmt.Fprintf(r.writer, " requests (%.1f req/s)\n", summary.RPS)

	fmt.Fprintf(r.writer, "Success:    ")
	r.green.Fprintf(r.writer, "%d", summary.SuccessCount)
	fmt.Fprintf(r.writer, " (%s)\n", formatPercent(summary.SuccessRate))

	fmt.Fprintf(r.writer, "HTTP errors: ")
	if summary.HTTPErrorCount > 0 {
		r.yellow.Fprintf(r.writer, "%d\n", summary.HTTPErrorCount)
	} else {
		fmt.Fprintf(r.writer, "%d\n", summary.HTTPErrorCount)
	}

	fmt.Fprintf(r.writer, "Failed:     ")
	if summary.TransportErrors > 0 {
		r.red.Fprintf(r.writer, "%d\n", summary.TransportErrors)
	} else {
		fmt.Fprintf(r.writer, "%d\n", summary.TransportErrors)
	}

	if len(summary.StatusCodes) > 0 {
		codes := make([]int, 0, len(summary.StatusCodes))
		for code := range summary.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		fmt.Fprintln(r.writer)
		r.bold.Fprintln(r.writer, "STATUS CODES")
		for _, code := range codes {
			c := r.green
			if code >= 400 {
				c = r.red
			} else if code >= 300 {
				c = r.yellow
			}
			c.Fprintf(r.writer, "  %d", code)
			fmt.Fprintf(r.writer, ": %d\n", summary.StatusCodes[code])
		}
	}

	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "LATENCY (ms)")
	fmt.Fprintf(r.writer, "  p50: %-6s | p90: %-6s | p95: %-6s | p99: %s\n",
		formatLatencyMs(summary.P50),
		formatLatencyMs(summary.P90),
		formatLatencyMs(summary.P95),
		formatLatencyMs(summary.P99))
	fmt.Fprintf(r.writer, "  min: %-6s | max: %-6s | mean: %-5s | stddev: %s\n",
		formatLatencyMs(summary.Min),
		formatLatencyMs(summary.Max),
		formatLatencyMs(summary.Mean),
		formatLatencyMs(summary.StdDev))
}

// JSON writes the summary as indented JSON
func (r *Reporter) JSON(summary *Summary) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

func formatLatencyMs(d time.Duration) string {
	return fmt.Sprintf("%.1f", float64(d.Microseconds())/1000)
}

func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
