package capture

import (
	"bytes"
	"io"
	nethttp "net/http"
	"testing"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(t *testing.T, contentType, body string) *http.Response {
	t.Helper()
	raw := &nethttp.Response{
		StatusCode: 201,
		Status:     "201 Created",
		Header:     nethttp.Header{"Content-Type": {contentType}, "X-Trace": {"abc"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
	resp, err := http.NewResponse(raw)
	require.NoError(t, err)
	return resp
}

func TestParse(t *testing.T) {
	c, err := Parse("id", "body:data.id")
	require.NoError(t, err)
	assert.Equal(t, SourceBody, c.Source)
	assert.Equal(t, "data.id", c.Path)

	c, _ = Parse("trace", "header:X-Trace")
	assert.Equal(t, SourceHeader, c.Source)

	c, _ = Parse("bare", "items.#")
	assert.Equal(t, SourceBody, c.Source)
	assert.Equal(t, "items.#", c.Path)

	c, err = Parse("code", "status")
	require.NoError(t, err)
	assert.Equal(t, SourceStatus, c.Source)
	assert.Empty(t, c.Path)

	c, err = Parse("took", "duration")
	require.NoError(t, err)
	assert.Equal(t, SourceDuration, c.Source)

	c, _ = Parse("mod", "@reverse:x")
	assert.Equal(t, SourceBody, c.Source)
	assert.Equal(t, "@reverse:x", c.Path)
}

func TestExtractAll(t *testing.T) {
	resp := newResponse(t, "application/json", `{"data":{"id":42,"tags":["a","b"]}}`)

	captures := []*Capture{
		{Name: "id", Source: SourceBody, Path: "data.id"},
		{Name: "tagCount", Source: SourceBody, Path: "data.tags.#"},
		{Name: "trace", Source: SourceHeader, Path: "x-trace"},
		{Name: "status", Source: SourceStatus},
		{Name: "missing", Source: SourceBody, Path: "data.nope"},
	}

	got := ExtractAll(resp, captures)
	assert.Equal(t, float64(42), got["id"])
	assert.Equal(t, float64(2), got["tagCount"])
	assert.Equal(t, "abc", got["trace"])
	assert.Equal(t, 201, got["status"])
	assert.NotContains(t, got, "missing")
}

func TestExtract_NonJSONBody(t *testing.T) {
	resp := newResponse(t, "text/plain", "plain text")
	e := NewExtractor(resp)

	v, ok := e.Extract(&Capture{Source: SourceBody})
	assert.True(t, ok)
	assert.Equal(t, "plain text", v)

	_, ok = e.Extract(&Capture{Source: SourceBody, Path: "a.b"})
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	resp := newResponse(t, "application/json", `{"users":[{"name":"ann"},{"name":"bob"}]}`)

	raw, err := Query(resp, "users.#.name")
	require.NoError(t, err)
	assert.Equal(t, `["ann","bob"]`, raw)

	_, err = Query(resp, "nobody")
	assert.Error(t, err)

	_, err = Query(newResponse(t, "text/plain", "nope"), "a")
	assert.Error(t, err)
}
