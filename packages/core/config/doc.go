// Package config handles configuration loading and management for thinhttp.
//
// It provides functionality for:
//   - Loading configuration from JSON, YAML or TOML files
//   - Default configuration values matching the client defaults
//   - Converting a configuration into client options
package config
