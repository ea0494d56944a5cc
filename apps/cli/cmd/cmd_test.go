package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--no-color"))

	err := rootCmd.Execute()
	return buf.String(), err
}

func newJSONServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/user":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"alice","id":7}`))
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"method":      r.Method,
				"contentType": r.Header.Get("Content-Type"),
				"body":        string(body),
				"query":       r.URL.RawQuery,
				"header":      r.Header.Get("X-Test"),
			})
		case "/missing":
			nethttp.Error(w, "nope", nethttp.StatusNotFound)
		default:
			w.Write([]byte("ok"))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetCommand(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "get", server.URL+"/user")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "200 OK\n"))
	assert.Contains(t, out, `"name": "alice"`)
}

func TestGetCommand_BaseURLAndQuery(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "get", "/user", "--base-url", server.URL, "--query", "name")
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)
}

func TestGetCommand_QueryMissing(t *testing.T) {
	server := newJSONServer(t)

	_, err := executeCommand(t, "get", server.URL+"/user", "--query", "email")
	require.Error(t, err)
	assert.Equal(t, ExitCheckFailure, exitCodeFor(err))
}

func TestGetCommand_Captures(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "get", server.URL+"/user", "-c", "id=body:id", "-c", "code=status")
	require.NoError(t, err)
	assert.Contains(t, out, "id = 7\n")
	assert.Contains(t, out, "code = 200\n")
}

func TestPostCommand_JSON(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "post", server.URL+"/echo",
		"--json", `{"a":1}`, "-H", "X-Test: yes", "-q", "page=2", "--query", "@this")
	require.NoError(t, err)

	var echoed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &echoed))
	assert.Equal(t, "POST", echoed["method"])
	assert.Equal(t, "application/json", echoed["contentType"])
	assert.JSONEq(t, `{"a":1}`, echoed["body"])
	assert.Equal(t, "page=2", echoed["query"])
	assert.Equal(t, "yes", echoed["header"])
}

func TestPostCommand_FormWinsOverJSON(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "post", server.URL+"/echo", "-d", "user=alice", "--json", `{"a":1}`, "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Response struct {
			Body map[string]string `json:"body"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "application/x-www-form-urlencoded", doc.Response.Body["contentType"])
	assert.Equal(t, "user=alice", doc.Response.Body["body"])
}

func TestRequestCommand(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "request", "options", server.URL+"/echo", "--query", "method")
	require.NoError(t, err)
	assert.Equal(t, "OPTIONS\n", out)
}

func TestHTTPErrorExitCode(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "get", server.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, ExitHTTPError, exitCodeFor(err))
	assert.Contains(t, out, "404 Not Found")
	assert.Contains(t, out, "nope")
}

func TestExpectStatus(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "delete", server.URL+"/missing", "--expect", "4xx")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ status")

	_, err = executeCommand(t, "get", server.URL+"/user", "--expect", "404")
	require.Error(t, err)
	assert.Equal(t, ExitCheckFailure, exitCodeFor(err))
}

func TestSchemaCheck(t *testing.T) {
	server := newJSONServer(t)
	schema := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, writeFile(schema, `{"type":"object","required":["name","email"]}`))

	out, err := executeCommand(t, "get", server.URL+"/user", "--schema", schema)
	require.Error(t, err)
	assert.Equal(t, ExitCheckFailure, exitCodeFor(err))
	assert.Contains(t, out, "✗ schema")
}

func TestNetworkErrorExitCode(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	url := server.URL
	server.Close()

	out, err := executeCommand(t, "get", url)
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, exitCodeFor(err))
	assert.Contains(t, out, "Error: Request failed:")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad header", []string{"get", "http://localhost", "-H", "novalue"}, ExitUsageError},
		{"bad param", []string{"get", "http://localhost", "-q", "x"}, ExitUsageError},
		{"bad json", []string{"post", "http://localhost", "--json", "{"}, ExitUsageError},
		{"bad timeout", []string{"get", "http://localhost", "--timeout", "soon"}, ExitUsageError},
		{"bad output", []string{"get", "http://localhost", "-o", "xml"}, ExitUsageError},
		{"unknown flag", []string{"get", "http://localhost", "--nope"}, ExitUsageError},
		{"bad proxy", []string{"get", "http://localhost", "--proxy", "nohost"}, ExitConfigError},
		{"missing config", []string{"get", "http://localhost", "--config", "/does/not/exist.json"}, ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCodeFor(err))
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	server := newJSONServer(t)
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := executeCommand(t, "get", server.URL+"/user", "--history", db)
	require.NoError(t, err)
	_, err = executeCommand(t, "get", server.URL+"/missing", "--history", db)
	require.Error(t, err)

	out, err := executeCommand(t, "history", "--history", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], server.URL+"/missing")
	assert.Contains(t, lines[0], "404")
	assert.Contains(t, lines[1], server.URL+"/user")

	out, err = executeCommand(t, "history", "--history", db, "--clear")
	require.NoError(t, err)
	assert.Equal(t, "History cleared\n", out)

	out, err = executeCommand(t, "history", "--history", db)
	require.NoError(t, err)
	assert.Equal(t, "No requests recorded\n", out)
}

func TestHistoryCommand_NoFile(t *testing.T) {
	_, err := executeCommand(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCodeFor(err))
}

func TestBenchCommand(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "bench", server.URL+"/user", "-n", "8", "-c", "2", "-o", "json")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, float64(8), summary["totalRequests"])
	assert.Equal(t, float64(8), summary["successCount"])
}

func TestBenchCommand_ErrorRate(t *testing.T) {
	server := newJSONServer(t)

	out, err := executeCommand(t, "bench", server.URL+"/missing", "-n", "4", "--max-error-rate", "0.5")
	require.Error(t, err)
	assert.Equal(t, ExitCheckFailure, exitCodeFor(err))
	assert.Contains(t, out, "BENCHMARK SUMMARY")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "thinhttp version dev")
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitNetworkError, exitCodeFor(withExitCode(ExitNetworkError, nil)))
	assert.Equal(t, ExitConfigError, exitCodeFor(withExitCode(ExitConfigError, errors.New("x"))))
	assert.Equal(t, ExitUsageError, exitCodeFor(errors.New("unknown command")))
	assert.Equal(t, "", withExitCode(ExitHTTPError, nil).Error())
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Accept: application/json", "X-Empty:"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Empty": ""}, headers)

	_, err = parseHeaders([]string{": value"})
	assert.Error(t, err)
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]string{"a=1", "a=2", "b="}, "param")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pairs["a"])
	assert.Equal(t, "", pairs.Get("b"))

	_, err = parsePairs([]string{"=1"}, "param")
	assert.ErrorContains(t, err, "invalid param")
}

func TestParseJSONBody(t *testing.T) {
	body, err := parseJSONBody(`{"a":[1,2]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, body)

	body, err = parseJSONBody("@-", strings.NewReader(`"x"`))
	require.NoError(t, err)
	assert.Equal(t, "x", body)

	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, writeFile(path, `[true]`))
	body, err = parseJSONBody("@"+path, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{true}, body)

	body, err = parseJSONBody("", nil)
	require.NoError(t, err)
	assert.Nil(t, body)
}
