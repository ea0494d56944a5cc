// Package assertions checks HTTP responses against expectations.
//
// Supported checks:
//   - status: an exact code ("201") or a class ("2xx")
//   - schema: the JSON body validates against a JSON Schema document
package assertions
