package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/thinhttp/packages/assertions"
	"github.com/abdul-hamid-achik/thinhttp/packages/history"
	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// formatValue formats a value for display, truncating large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
	faint  *color.Color
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.green = f.newColor(color.FgGreen)
	f.red = f.newColor(color.FgRed)
	f.yellow = f.newColor(color.FgYellow)
	f.cyan = f.newColor(color.FgCyan)
	f.bold = f.newColor(color.Bold)
	f.faint = f.newColor(color.Faint)
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose includes response headers and timing
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) newColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if f.noColor {
		c.DisableColor()
	}
	return c
}

func (f *ConsoleFormatter) statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return f.red
	case code >= 400:
		return f.yellow
	case code >= 300:
		return f.cyan
	default:
		return f.green
	}
}

// FormatResponse prints the status line, headers when verbose, and the body.
func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	f.statusColor(resp.StatusCode()).Fprintf(f.writer, "%d %s", resp.StatusCode(), resp.Reason())
	if f.verbose {
		f.faint.Fprintf(f.writer, " (%dms)", resp.Duration().Milliseconds())
	}
	fmt.Fprintln(f.writer)

	if f.verbose {
		f.formatHeaders(resp)
	}

	f.formatBody(resp)
}

// formatHeaders prints one line per header value, so repeated headers such
// as Set-Cookie stay separate.
func (f *ConsoleFormatter) formatHeaders(resp *http.Response) {
	headers := resp.HeaderValues()
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			f.cyan.Fprintf(f.writer, "%s", k)
			fmt.Fprintf(f.writer, ": %s\n", v)
		}
	}
	if len(keys) > 0 {
		fmt.Fprintln(f.writer)
	}
}

func (f *ConsoleFormatter) formatBody(resp *http.Response) {
	content := resp.Content()
	if len(content) == 0 {
		return
	}
	if gjson.ValidBytes(content) && (resp.IsJSON() || looksLikeJSON(content)) {
		fmt.Fprint(f.writer, string(f.prettyJSON(content)))
		return
	}
	text := resp.Text()
	fmt.Fprint(f.writer, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(f.writer)
	}
}

func (f *ConsoleFormatter) prettyJSON(content []byte) []byte {
	out := pretty.Pretty(content)
	if !f.noColor && !color.NoColor {
		out = pretty.Color(out, nil)
	}
	return out
}

func looksLikeJSON(content []byte) bool {
	trimmed := strings.TrimSpace(string(content))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// FormatValue prints a single extracted value, pretty-printing JSON fragments.
func (f *ConsoleFormatter) FormatValue(raw string) {
	if looksLikeJSON([]byte(raw)) && gjson.Valid(raw) {
		fmt.Fprint(f.writer, string(f.prettyJSON([]byte(raw))))
		return
	}
	fmt.Fprintln(f.writer, gjson.Parse(raw).String())
}

// FormatError prints err. An HTTP status error also prints the response it carries.
func (f *ConsoleFormatter) FormatError(err error) {
	var he *http.HTTPError
	if errors.As(err, &he) && he.Response != nil {
		f.FormatResponse(he.Response)
		return
	}
	fmt.Fprintf(f.writer, "%s %v\n", f.red.Sprint("Error:"), err)
}

// FormatAssertions prints one line per check and the failure details.
func (f *ConsoleFormatter) FormatAssertions(results []*assertions.Result) {
	for _, a := range results {
		if a.Passed {
			fmt.Fprintf(f.writer, "  %s %s\n", f.green.Sprint("✓"), a.Subject)
			continue
		}
		fmt.Fprintf(f.writer, "  %s %s\n", f.red.Sprint("✗"), a.Subject)
		if a.Expected != nil {
			fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(a.Expected, 100))
			fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(a.Actual, 100))
		}
		if a.Message != "" {
			fmt.Fprintf(f.writer, "      %s\n", a.Message)
		}
	}
}

// FormatCaptures prints captured values as name = value, sorted by name.
func (f *ConsoleFormatter) FormatCaptures(captures map[string]any) {
	names := make([]string, 0, len(captures))
	for name := range captures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(f.writer, "%s = %s\n", f.cyan.Sprint(name), formatValue(captures[name], 200))
	}
}

// FormatHistory prints stored requests, newest first.
func (f *ConsoleFormatter) FormatHistory(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(f.writer, "No requests recorded")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(f.writer, "%s  ", f.faint.Sprint(e.CreatedAt.Local().Format("2006-01-02 15:04:05")))
		f.bold.Fprintf(f.writer, "%-7s", e.Method)
		fmt.Fprintf(f.writer, " %s ", e.URL)
		if e.Status != 0 {
			f.statusColor(e.Status).Fprintf(f.writer, "%d", e.Status)
		} else {
			f.red.Fprint(f.writer, "ERR")
		}
		fmt.Fprintf(f.writer, " %s\n", f.cyan.Sprintf("(%dms)", e.Duration.Milliseconds()))
		if e.Error != "" && f.verbose {
			fmt.Fprintf(f.writer, "    %s\n", e.Error)
		}
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	fmt.Fprintf(f.writer, "%s %s\n", f.bold.Sprint("thinhttp"), version)
}
