package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config represents the thinhttp configuration
type Config struct {
	BaseURL         string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty" toml:"baseURL,omitempty"`
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"` // milliseconds
	MaxRedirects    int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty" toml:"maxRedirects,omitempty"`
	Verify          *bool             `json:"verify,omitempty" yaml:"verify,omitempty" toml:"verify,omitempty"`
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty" toml:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"` // Default headers for all requests
	Cookies         map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty" toml:"cookies,omitempty"`
	DefaultEncoding string            `json:"defaultEncoding,omitempty" yaml:"defaultEncoding,omitempty" toml:"defaultEncoding,omitempty"`
	RequestIDHeader string            `json:"requestIDHeader,omitempty" yaml:"requestIDHeader,omitempty" toml:"requestIDHeader,omitempty"`
	History         string            `json:"history,omitempty" yaml:"history,omitempty" toml:"history,omitempty"` // sqlite file recording every request
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty" toml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetVerify returns the TLS verification setting, defaulting to true
func (c *Config) GetVerify() bool {
	return getBool(c.Verify, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout, or zero when unset
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".thinhttp.json",
	".thinhttp.yaml",
	".thinhttp.yml",
	".thinhttp.toml",
	".thinhttprc",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch formatFor(path) {
	case formatYAML:
		err = yaml.Unmarshal(data, config)
	case formatTOML:
		err = toml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.DefaultEncoding != "" {
		result.DefaultEncoding = other.DefaultEncoding
	}
	if other.RequestIDHeader != "" {
		result.RequestIDHeader = other.RequestIDHeader
	}
	if other.History != "" {
		result.History = other.History
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Verify != nil {
		result.Verify = other.Verify
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	result.Headers = mergeMaps(c.Headers, other.Headers)
	result.Cookies = mergeMaps(c.Cookies, other.Cookies)

	return &result
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// ClientOptions converts the configuration into options for http.NewClient
// and http.NewAsyncClient
func (c *Config) ClientOptions(logger zerolog.Logger) []http.ClientOption {
	opts := []http.ClientOption{
		http.WithVerify(c.GetVerify()),
		http.WithLogger(logger),
	}
	if c.BaseURL != "" {
		opts = append(opts, http.WithBaseURL(c.BaseURL))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.WithTimeout(c.TimeoutDuration()))
	}
	if c.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(c.MaxRedirects))
	}
	if c.Proxy != "" {
		opts = append(opts, http.WithProxy(c.Proxy))
	}
	if len(c.Headers) > 0 {
		opts = append(opts, http.WithDefaultHeaders(c.Headers))
	}
	if len(c.Cookies) > 0 {
		opts = append(opts, http.WithDefaultCookies(c.Cookies))
	}
	if c.DefaultEncoding != "" {
		opts = append(opts, http.WithDefaultEncoding(c.DefaultEncoding))
	}
	if c.RequestIDHeader != "" {
		opts = append(opts, http.WithRequestIDHeader(c.RequestIDHeader))
	}
	return opts
}

// SaveConfig saves the configuration to a file, picking the format from the extension
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch formatFor(path) {
	case formatYAML:
		data, err = yaml.Marshal(c)
	case formatTOML:
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
