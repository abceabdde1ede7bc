// Package shopify is a client for the Shopify Admin GraphQL API. Queries are
// POSTed as JSON with the shop access token; throttled responses are retried
// after waiting out the query cost against the shop's restore rate.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// DefaultAPIVersion pins the Admin API version queries are issued against
const DefaultAPIVersion = "2025-01"

const (
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
	maxResponseSize   = 10 * 1024 * 1024
)

// Errors for Shopify configuration
var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// Config holds all configuration for the Shopify client
type Config struct {
	// ShopDomain is the myshopify domain, e.g. "example.myshopify.com"
	ShopDomain  string
	AccessToken string
	// APIVersion selects the Admin API version; empty uses DefaultAPIVersion
	APIVersion string

	// MaxRetries bounds throttle retries per query
	MaxRetries int
	Timeout    time.Duration
}

// Validate checks the configuration and applies defaults
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return ErrConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}

// GraphQLError is one error entry on a GraphQL response
type GraphQLError struct {
	Message    string   `json:"message"`
	Path       []string `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// ThrottleStatus is the rate limit state reported with a query's cost
type ThrottleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// queryCost is the cost block on extensions
type queryCost struct {
	RequestedQueryCost float64        `json:"requestedQueryCost"`
	ActualQueryCost    float64        `json:"actualQueryCost"`
	ThrottleStatus     ThrottleStatus `json:"throttleStatus"`
}

// graphQLResponse is the raw response envelope
type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []GraphQLError  `json:"errors"`
	Extensions *struct {
		Cost *queryCost `json:"cost"`
	} `json:"extensions"`
}

// Client is the authenticated Shopify GraphQL client
type Client struct {
	config     *Config
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger

	// sleep is swappable so throttle tests do not wait out real restore time
	sleep func(time.Duration)
}

// New creates a Shopify client
func New(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:     config,
		endpoint:   fmt.Sprintf("https://%s/admin/api/%s/graphql.json", config.ShopDomain, config.APIVersion),
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
		sleep:      time.Sleep,
	}, nil
}

// NewWithEndpoint creates a client against an explicit endpoint URL (tests)
func NewWithEndpoint(config *Config, endpoint string, logger *zap.Logger) (*Client, error) {
	client, err := New(config, logger)
	if err != nil {
		return nil, err
	}
	client.endpoint = endpoint
	return client, nil
}

// Query executes a GraphQL query and decodes the data payload into out.
//
// A THROTTLED error is retried after waiting ceil(requestedCost/restoreRate)+1
// seconds, the time the cost bucket needs to refill enough for this query,
// up to MaxRetries times. Any other GraphQL error fails the call with the
// joined error messages.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	for retryCount := 0; ; retryCount++ {
		resp, err := c.post(ctx, query, variables)
		if err != nil {
			return err
		}

		if len(resp.Errors) == 0 {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
			}
			return nil
		}

		if cost := throttledCost(resp); cost != nil && retryCount < c.config.MaxRetries {
			wait := throttleWait(cost)
			c.logger.Info("query throttled, waiting for cost bucket",
				zap.Float64("requested_cost", cost.RequestedQueryCost),
				zap.Float64("restore_rate", cost.ThrottleStatus.RestoreRate),
				zap.Duration("wait", wait),
				zap.Int("attempt", retryCount+1))
			c.sleep(wait)
			continue
		}

		messages := make([]string, 0, len(resp.Errors))
		for _, gqlErr := range resp.Errors {
			messages = append(messages, gqlErr.Message)
		}
		return fmt.Errorf("%w: %s", integration.ErrRequestFailed, strings.Join(messages, "; "))
	}
}

func (c *Client) post(ctx context.Context, query string, variables map[string]any) (*graphQLResponse, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}
	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", integration.ErrRequestFailed, httpResp.StatusCode, string(body))
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	return &resp, nil
}

// throttledCost returns the cost block when the response carries a THROTTLED
// error with cost information, nil otherwise
func throttledCost(resp *graphQLResponse) *queryCost {
	throttled := false
	for _, gqlErr := range resp.Errors {
		if gqlErr.Extensions.Code == "THROTTLED" {
			throttled = true
			break
		}
	}
	if !throttled || resp.Extensions == nil || resp.Extensions.Cost == nil {
		return nil
	}
	return resp.Extensions.Cost
}

func throttleWait(cost *queryCost) time.Duration {
	if cost.ThrottleStatus.RestoreRate <= 0 {
		return time.Second
	}
	seconds := math.Ceil(cost.RequestedQueryCost/cost.ThrottleStatus.RestoreRate) + 1
	return time.Duration(seconds) * time.Second
}
