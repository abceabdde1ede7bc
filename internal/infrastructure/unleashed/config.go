package unleashed

import (
	"errors"
	"time"
)

// ProductionBaseURL is the Unleashed REST API endpoint
const ProductionBaseURL = "https://api.unleashedsoftware.com"

const (
	defaultTimeout = 30 * time.Second
	// The vendor throttles aggressively; retries beyond this never help
	hardRetryCeiling = 3

	backoffBaseDelay        = 1000 * time.Millisecond
	backoffCapDelay         = 8000 * time.Millisecond
	backoffJitterHalfWindow = 500 * time.Millisecond
)

// Errors for Unleashed configuration
var (
	ErrConfigMissingAPIID  = errors.New("unleashed: API id is required")
	ErrConfigMissingAPIKey = errors.New("unleashed: API key is required")
)

// Config holds all configuration for the Unleashed client
type Config struct {
	// BaseURL overrides the production endpoint (tests)
	BaseURL string

	// APIID and APIKey are issued per integration in the Unleashed console.
	// The key never travels on the wire; it signs each request's query string.
	APIID  string
	APIKey string
	// ClientType identifies this integration to the vendor's support tooling
	ClientType string

	// MaxRetries is the per-request 429 retry ceiling; the hard ceiling of 3
	// applies on top of it
	MaxRetries int
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// Validate checks the configuration and applies defaults
func (c *Config) Validate() error {
	if c.APIID == "" {
		return ErrConfigMissingAPIID
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}

	if c.BaseURL == "" {
		c.BaseURL = ProductionBaseURL
	}
	if c.MaxRetries <= 0 || c.MaxRetries > hardRetryCeiling {
		c.MaxRetries = hardRetryCeiling
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}
