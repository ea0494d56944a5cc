package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/abdul-hamid-achik/thinhttp/packages/assertions"
	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/tidwall/gjson"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Response   *JSONResponse   `json:"response,omitempty"`
	Error      *JSONError      `json:"error,omitempty"`
	Query      *string         `json:"query,omitempty"`
	Captures   map[string]any  `json:"captures,omitempty"`
	Assertions []JSONAssertion `json:"assertions,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers,omitempty"`
	Encoding   string            `json:"encoding,omitempty"`
	Duration   float64           `json:"duration"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Text       string            `json:"text,omitempty"`
}

// JSONError represents a failed call
type JSONError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// JSONAssertion represents an assertion result
type JSONAssertion struct {
	Subject  string `json:"subject"`
	Passed   bool   `json:"passed"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Message  string `json:"message,omitempty"`
}

type JSONFormatter struct {
	writer io.Writer
	output JSONOutput
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

// AddResponse records resp. A JSON body is embedded as-is, anything else as text.
func (f *JSONFormatter) AddResponse(resp *http.Response) {
	f.output.Response = toJSONResponse(resp)
}

// AddError records err, together with the response it carries if any.
func (f *JSONFormatter) AddError(err error) {
	var he *http.HTTPError
	if errors.As(err, &he) {
		f.output.Error = &JSONError{Message: he.Message, StatusCode: he.StatusCode}
		if he.Response != nil {
			f.output.Response = toJSONResponse(he.Response)
		}
		return
	}
	f.output.Error = &JSONError{Message: err.Error()}
}

func (f *JSONFormatter) AddQuery(raw string) {
	f.output.Query = &raw
}

func (f *JSONFormatter) AddCaptures(captures map[string]any) {
	if len(captures) > 0 {
		f.output.Captures = captures
	}
}

func (f *JSONFormatter) AddAssertions(results []*assertions.Result) {
	for _, a := range results {
		f.output.Assertions = append(f.output.Assertions, JSONAssertion{
			Subject:  a.Subject,
			Passed:   a.Passed,
			Expected: a.Expected,
			Actual:   a.Actual,
			Message:  a.Message,
		})
	}
}

// Flush writes the accumulated document.
func (f *JSONFormatter) Flush() error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(f.output)
}

func toJSONResponse(resp *http.Response) *JSONResponse {
	r := &JSONResponse{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		URL:        resp.URL(),
		Headers:    resp.Headers(),
		Encoding:   resp.Encoding(),
		Duration:   float64(resp.Duration().Microseconds()) / 1000,
	}
	content := resp.Content()
	if len(content) > 0 && gjson.ValidBytes(content) {
		r.Body = json.RawMessage(content)
	} else {
		r.Text = resp.Text()
	}
	return r
}
