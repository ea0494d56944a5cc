// Package cmd implements the thinhttp CLI commands using Cobra.
//
// Available commands:
//   - get, post, put, patch, delete: Issue a single request
//   - request: Issue a request with an arbitrary method
//   - bench: Drive concurrent load through the async client
//   - history: Show or clear recorded requests
//   - version: Show thinhttp version information
//
// Client settings come from a .thinhttp config file and can be overridden
// per invocation with the persistent flags on the root command.
package cmd
