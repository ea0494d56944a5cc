// Package output renders responses, errors and check results for the
// thinhttp command.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
package output
