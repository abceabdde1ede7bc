// Package unleashed is a client for the Unleashed inventory REST API. Every
// request is authenticated by an HMAC-SHA256 signature over the raw query
// string, and 429 responses are retried with capped exponential backoff.
package unleashed

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client is the authenticated Unleashed API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger

	SalesOrders *SalesOrdersClient

	// sleep is swappable so retry tests do not wait out real backoff delays
	sleep func(time.Duration)
}

// New creates an Unleashed client
func New(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
		sleep:      time.Sleep,
	}
	client.SalesOrders = &SalesOrdersClient{client: client, logger: logger.Named("sales_orders")}
	return client, nil
}

// sign computes the request signature: HMAC-SHA256 of the encoded query
// string (without the leading "?"), keyed by the API key, base64 encoded. A
// request without query parameters signs the empty string.
func (c *Client) sign(queryString string) string {
	mac := hmac.New(sha256.New, []byte(c.config.APIKey))
	mac.Write([]byte(queryString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// do performs one API call with signing and the 429 retry loop
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	queryString := query.Encode()
	fullURL := c.config.BaseURL + path
	if queryString != "" {
		fullURL += "?" + queryString
	}

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("unleashed: failed to encode request body: %w", err)
		}
	}

	signature := c.sign(queryString)

	log := c.logger.With(zap.String("method", method), zap.String("path", path))

	retryCount := 0
	for {
		httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("unleashed: failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("api-auth-id", c.config.APIID)
		httpReq.Header.Set("api-auth-signature", signature)
		httpReq.Header.Set("client-type", c.config.ClientType)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("unleashed: request failed: %w", err)
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("unleashed: failed to read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryCount >= c.config.MaxRetries {
				log.Warn("rate limited, retries exhausted", zap.Int("attempts", retryCount))
				return nil, fmt.Errorf("%w: HTTP 429 after %d attempts", integration.ErrRateLimited, retryCount+1)
			}
			retryCount++
			delay := backoffDelay(retryCount)
			log.Info("rate limited, retrying",
				zap.Int("attempt", retryCount),
				zap.Duration("delay", delay))
			c.sleep(delay)
			continue
		}

		if resp.StatusCode >= 400 {
			log.Error("request rejected",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody))
			return nil, fmt.Errorf("%w: HTTP %d: %s", integration.ErrRequestFailed, resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	return nil
}

// backoffDelay computes the wait before retry n: min(1000ms * 2^n, 8000ms)
// plus up to ±500ms of jitter.
func backoffDelay(retryCount int) time.Duration {
	delay := backoffBaseDelay * time.Duration(1<<retryCount)
	if delay > backoffCapDelay {
		delay = backoffCapDelay
	}
	jitter := time.Duration(rand.Int63n(int64(2*backoffJitterHalfWindow))) - backoffJitterHalfWindow
	if delay+jitter < 0 {
		return 0
	}
	return delay + jitter
}
