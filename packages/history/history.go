// Package history records completed requests in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status      INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS requests_created_at ON requests (created_at);
`

// Entry is one recorded request. Status is 0 when no response was received.
type Entry struct {
	ID        string
	Method    string
	URL       string
	Status    int
	Duration  time.Duration
	Error     string
	CreatedAt time.Time
}

// NewEntry builds an entry from the outcome of a client call.
func NewEntry(method, url string, resp *http.Response, err error) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Method:    strings.ToUpper(method),
		URL:       url,
		CreatedAt: time.Now(),
	}
	if resp != nil {
		e.Status = resp.StatusCode()
		e.Duration = resp.Duration()
		e.URL = resp.URL()
	}
	if err != nil {
		e.Error = err.Error()
		if he, ok := http.AsHTTPError(err); ok && he.Response != nil {
			e.Status = he.StatusCode
			e.Duration = he.Response.Duration()
			e.URL = he.Response.URL()
		}
	}
	if e.URL == "" {
		e.URL = url
	}
	return e
}

// Store represents a history database
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens (creating if needed) the history database at path
func Open(path string) (*Store, error) {
	path = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(path), "sqlite://"), "sqlite:")
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores an entry
func (s *Store) Record(ctx context.Context, e Entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, method, url, status, duration_ms, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Method, e.URL, e.Status, e.Duration.Milliseconds(), e.Error, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A limit of 0 or less returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := `SELECT id, method, url, status, duration_ms, error, created_at FROM requests ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMs int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &durationMs, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Clear deletes every entry
func (s *Store) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM requests`)
	return err
}
