// Package capture extracts values from HTTP responses.
//
// It supports capturing values from:
//   - Response body (gjson paths, e.g. "data.items.0.id")
//   - Response headers
//   - Response status code and duration
//
// Expressions have the form "source:path", for example "body:user.name" or
// "header:Content-Type". A bare path is read from the body.
package capture
