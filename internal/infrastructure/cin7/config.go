package cin7

import (
	"errors"
	"time"
)

const (
	// ProductionAPIBaseURL is the Cin7 REST API endpoint
	ProductionAPIBaseURL = "https://api.cin7.com/api/v1"
	// LoginURL is the Cin7 web console login page
	LoginURL = "https://auth.cin7.com/Account/Login"
	// TransactionEntryURL deep-links into a transaction page; it needs the
	// tenant-specific app link id and the order id
	TransactionEntryURL = "https://go.cin7.com/Cloud/TransactionEntry/TransactionEntry.aspx"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxRetries       = 3
	defaultNavTimeout       = 30 * time.Second
	defaultSelectorTimeout  = 5 * time.Second
	defaultRotationCutoff   = 4900
	hardRetryCeiling        = 10
	backoffBaseDelay        = 1000 * time.Millisecond
	backoffCapDelay         = 8000 * time.Millisecond
	backoffJitterHalfWindow = 500 * time.Millisecond
)

// Errors for Cin7 configuration
var (
	ErrConfigMissingAPIUsername = errors.New("cin7: API username is required")
	ErrConfigMissingAPIPassword = errors.New("cin7: API password is required")
	ErrConfigRotationNoCounter  = errors.New("cin7: key rotation enabled but no counter provided")
)

// APICredentials is the Basic-auth credential bundle for the REST API.
// ExtraPasswords are additional keys for the same username; with rotation
// enabled the channel cycles across Password plus ExtraPasswords to stay
// under the per-key call quota.
type APICredentials struct {
	Username       string
	Password       string
	ExtraPasswords []string
}

// UICredentials authenticates the headless-browser console session.
// OTPSecret is the base32 shared secret for the time-based one-time password
// challenge.
type UICredentials struct {
	Username  string
	Password  string
	OTPSecret string
}

// AppLinkIDs are the tenant-specific path parameters required to deep-link
// into transaction pages of each business object.
type AppLinkIDs struct {
	CreditNotes string
	SalesOrders string
}

// RotationConfig controls multi-key rotation on the API channel.
type RotationConfig struct {
	// Enabled turns rotation on; the channel then consults the counter before
	// every request
	Enabled bool
	// Cutoff is the per-key call quota; a key at or above it is skipped
	Cutoff int
}

// Config holds all configuration for the Cin7 client
type Config struct {
	// APIBaseURL overrides the production API endpoint (tests)
	APIBaseURL string
	// LoginURL overrides the console login page (tests)
	LoginURL string

	API APICredentials
	// UI credentials are optional; UI-only operations fail fast without them
	UI *UICredentials

	AppLinkIDs AppLinkIDs
	Rotation   RotationConfig

	// Headless controls the browser mode; deployments keep it true
	Headless bool
	// MaxRetries is the per-request 429 retry ceiling; the hard ceiling of 10
	// applies on top of it
	MaxRetries int
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// NavigationTimeout bounds page navigations in UI workflows
	NavigationTimeout time.Duration
	// SelectorTimeout bounds individual selector waits in UI workflows
	SelectorTimeout time.Duration
}

// Validate checks the configuration and applies defaults
func (c *Config) Validate() error {
	if c.API.Username == "" {
		return ErrConfigMissingAPIUsername
	}
	if c.API.Password == "" {
		return ErrConfigMissingAPIPassword
	}

	if c.APIBaseURL == "" {
		c.APIBaseURL = ProductionAPIBaseURL
	}
	if c.LoginURL == "" {
		c.LoginURL = LoginURL
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = defaultNavTimeout
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = defaultSelectorTimeout
	}
	if c.Rotation.Enabled && c.Rotation.Cutoff <= 0 {
		c.Rotation.Cutoff = defaultRotationCutoff
	}
	return nil
}

// passwords returns every API password in rotation order. Index "0" is the
// primary password; extra passwords follow in declaration order.
func (c *Config) passwords() []string {
	out := make([]string, 0, 1+len(c.API.ExtraPasswords))
	out = append(out, c.API.Password)
	out = append(out, c.API.ExtraPasswords...)
	return out
}
