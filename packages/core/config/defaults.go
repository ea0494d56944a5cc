package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "",
		Timeout:         30000, // 30 seconds
		MaxRedirects:    10,
		Verify:          BoolPtr(true),
		Proxy:           "",
		Headers:         nil,
		Cookies:         nil,
		DefaultEncoding: "utf-8",
		RequestIDHeader: "",
		History:         "",
		NoColor:         BoolPtr(false),
	}
}
