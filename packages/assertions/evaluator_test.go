package assertions

import (
	"bytes"
	"io"
	nethttp "net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestResponse(t *testing.T, status int, body string) *http.Response {
	t.Helper()
	raw := &nethttp.Response{
		StatusCode: status,
		Status:     nethttp.StatusText(status),
		Header:     nethttp.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
	resp, err := http.NewResponse(raw)
	require.NoError(t, err)
	return resp
}

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"}
	}
}`

func TestExpectStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected string
		passed   bool
	}{
		{200, "200", true},
		{201, "2xx", true},
		{201, "2XX", true},
		{404, "4xx", true},
		{404, "2xx", false},
		{500, "500", true},
		{500, "503", false},
		{200, "abc", false},
		{200, "zxx", false},
	}

	for _, tt := range tests {
		resp := createTestResponse(t, tt.status, `{}`)
		result := ExpectStatus(resp, tt.expected)
		assert.Equal(t, tt.passed, result.Passed, "%d vs %s: %s", tt.status, tt.expected, result.Message)
	}
}

func TestValidateSchema(t *testing.T) {
	valid := createTestResponse(t, 200, `{"id": 1, "name": "ann"}`)
	result := ValidateSchema(valid, []byte(userSchema))
	assert.True(t, result.Passed, result.Message)

	invalid := createTestResponse(t, 200, `{"id": "one"}`)
	result = ValidateSchema(invalid, []byte(userSchema))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "schema validation failed")
	assert.Contains(t, result.Message, "name")
}

func TestValidateSchema_BadInput(t *testing.T) {
	resp := createTestResponse(t, 200, `not json`)
	result := ValidateSchema(resp, []byte(userSchema))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "schema validation error")
}

func TestValidateSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0644))

	resp := createTestResponse(t, 200, `{"id": 1, "name": "ann"}`)
	assert.True(t, ValidateSchemaFile(resp, path).Passed)

	result := ValidateSchemaFile(resp, filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "failed to read schema file")
}

func TestAllPassed(t *testing.T) {
	assert.True(t, AllPassed(nil))
	assert.True(t, AllPassed([]*Result{{Passed: true}}))
	assert.False(t, AllPassed([]*Result{{Passed: true}, {Passed: false}}))
}
