package bench

import (
	"fmt"
	"time"
)

// Config controls a benchmark run. At least one of Requests or Duration must
// be set; when both are, the run stops at whichever limit is reached first.
type Config struct {
	// Requests is the total number of requests to issue
	Requests int
	// Duration bounds how long new requests are issued
	Duration time.Duration
	// Concurrency is the maximum number of requests in flight
	Concurrency int
	// Rate is the target requests per second; 0 means unlimited
	Rate float64
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Requests:    100,
		Concurrency: 10,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Requests < 0 {
		return fmt.Errorf("requests must be non-negative")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	if c.Requests == 0 && c.Duration == 0 {
		return fmt.Errorf("either requests or duration must be set")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must be non-negative")
	}
	return nil
}
