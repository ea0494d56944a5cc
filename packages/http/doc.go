// Package http is a thin convenience layer over net/http.
//
// It provides:
//   - Client, issuing blocking requests
//   - AsyncClient, returning a Future per request
//   - Response, an immutable snapshot of a completed exchange
//   - HTTPError, the single error kind returned by both clients
//
// Connection pooling, TLS, redirects, proxying and timeouts are delegated to
// net/http. Nothing is retried or cached.
package http
