package capture

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/tidwall/gjson"
)

type Source string

const (
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceStatus   Source = "status"
	SourceDuration Source = "duration"
)

// Capture names one value to pull out of a response.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

// Parse turns "source:path" into a Capture. A bare path reads from the body.
func Parse(name, expr string) (*Capture, error) {
	switch Source(expr) {
	case SourceStatus, SourceDuration:
		return &Capture{Name: name, Source: Source(expr)}, nil
	}

	source, path, found := strings.Cut(expr, ":")
	if !found {
		return &Capture{Name: name, Source: SourceBody, Path: expr}, nil
	}

	switch Source(source) {
	case SourceBody, SourceHeader, SourceStatus, SourceDuration:
		return &Capture{Name: name, Source: Source(source), Path: path}, nil
	default:
		// A body path may itself contain a colon (gjson modifiers)
		return &Capture{Name: name, Source: SourceBody, Path: expr}, nil
	}
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	content := resp.Content()
	if resp.IsJSON() || gjson.ValidBytes(content) {
		e.bodyJSON = gjson.ParseBytes(content)
	}
	return e
}

func (e *Extractor) Extract(capture *Capture) (any, bool) {
	switch capture.Source {
	case SourceBody:
		return e.extractFromBody(capture.Path)
	case SourceHeader:
		return e.extractFromHeader(capture.Path)
	case SourceStatus:
		return e.response.StatusCode(), true
	case SourceDuration:
		return e.response.Duration().Milliseconds(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.Text(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value := e.response.Header(name)
	if value == "" {
		return nil, false
	}
	return value, true
}

// Query evaluates a gjson path against the body and returns the raw JSON
// text of the match.
func Query(resp *http.Response, path string) (string, error) {
	content := resp.Content()
	if !gjson.ValidBytes(content) {
		return "", fmt.Errorf("response body is not valid JSON")
	}
	result := gjson.GetBytes(content, path)
	if !result.Exists() {
		return "", fmt.Errorf("path %q not found in response body", path)
	}
	return result.Raw, nil
}

func ExtractAll(resp *http.Response, captures []*Capture) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}
