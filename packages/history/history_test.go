package history

import (
	"bytes"
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_SQLitePrefixes(t *testing.T) {
	dir := t.TempDir()

	for _, p := range []string{"sqlite://" + filepath.Join(dir, "a.db"), "sqlite:" + filepath.Join(dir, "b.db")} {
		store, err := Open(p)
		require.NoError(t, err, p)
		require.NoError(t, store.Close())
	}

	_, err := Open("  ")
	assert.Error(t, err)
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, method := range []string{"GET", "POST", "DELETE"} {
		err := store.Record(ctx, Entry{
			Method:    method,
			URL:       "https://example.com/items",
			Status:    200 + i,
			Duration:  time.Duration(i+1) * time.Millisecond,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "DELETE", entries[0].Method)
	assert.Equal(t, 202, entries[0].Status)
	assert.Equal(t, 3*time.Millisecond, entries[0].Duration)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "GET", entries[2].Method)

	entries, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, store.Clear(ctx))
	entries, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewEntry(t *testing.T) {
	u, _ := url.Parse("https://example.com/final")
	raw := &nethttp.Response{
		StatusCode: 404,
		Status:     "404 Not Found",
		Header:     nethttp.Header{},
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Request:    &nethttp.Request{URL: u},
	}
	resp, err := http.NewResponse(raw)
	require.NoError(t, err)

	e := NewEntry("get", "/start", resp, nil)
	assert.Equal(t, "GET", e.Method)
	assert.Equal(t, 404, e.Status)
	assert.Equal(t, "https://example.com/final", e.URL)
	assert.Empty(t, e.Error)

	httpErr := http.NewHTTPError("Not Found", 0, resp)
	e = NewEntry("GET", "/start", nil, httpErr)
	assert.Equal(t, 404, e.Status)
	assert.Equal(t, "HTTP 404: Not Found", e.Error)

	e = NewEntry("GET", "http://down.invalid", nil, errors.New("Request failed: refused"))
	assert.Zero(t, e.Status)
	assert.Equal(t, "http://down.invalid", e.URL)
	assert.Equal(t, "Request failed: refused", e.Error)
}
