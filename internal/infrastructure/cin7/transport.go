package cin7

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the Cin7 API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// apiRequest describes one logical REST call
type apiRequest struct {
	method string
	path   string
	query  url.Values
	body   any
}

// apiChannel is the authenticated HTTP transport for the Cin7 REST API. It
// owns Basic-auth signing, multi-key rotation against the external counter
// and the 429 retry policy. Safe for concurrent use; the only shared mutable
// state is the externally owned rotation counter.
type apiChannel struct {
	config     *Config
	httpClient *http.Client
	counter    integration.KeyRotationCounter
	logger     *zap.Logger

	// sleep is swappable so retry tests do not wait out real backoff delays
	sleep func(time.Duration)
}

func newAPIChannel(config *Config, counter integration.KeyRotationCounter, logger *zap.Logger) (*apiChannel, error) {
	if config.Rotation.Enabled && counter == nil {
		return nil, ErrConfigRotationNoCounter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &apiChannel{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		counter:    counter,
		logger:     logger,
		sleep:      time.Sleep,
	}, nil
}

// send performs one logical REST call. Credential selection runs once per
// logical call; 429 retries resend the identical request with the original
// headers. The rotation counter is incremented after every completed HTTP
// round-trip regardless of status, so counts reflect calls actually made.
func (c *apiChannel) send(ctx context.Context, req apiRequest) ([]byte, error) {
	callID := uuid.NewString()
	log := c.logger.With(
		zap.String("call_id", callID),
		zap.String("method", req.method),
		zap.String("path", req.path),
	)

	credentialIndex, password, err := c.selectCredential(ctx)
	if err != nil {
		return nil, err
	}

	fullURL := c.config.APIBaseURL + req.path
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var bodyBytes []byte
	if req.body != nil {
		bodyBytes, err = json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("cin7: failed to encode request body: %w", err)
		}
	}

	authorization := basicAuth(c.config.API.Username, password)

	retryCount := 0
	for {
		log.Debug("sending request",
			zap.String("url", fullURL),
			zap.String("credential_index", credentialIndex),
			zap.Int("attempt", retryCount))

		httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("cin7: failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("Authorization", authorization)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			log.Error("request failed", zap.Error(err))
			return nil, fmt.Errorf("cin7: request failed: %w", err)
		}

		// An HTTP-level completion counts against the key's quota no matter
		// what the status code says about business success.
		c.recordCall(ctx, credentialIndex, log)

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("cin7: failed to read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryCount >= c.config.MaxRetries || retryCount >= hardRetryCeiling {
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

		log.Debug("request completed", zap.Int("status", resp.StatusCode))
		return respBody, nil
	}
}

// selectCredential picks the credential for this logical call. Without
// rotation it is always the primary password. With rotation it is the first
// index whose count is under the cutoff; indexes are scanned in order so a
// key drains its quota before the next one is touched.
func (c *apiChannel) selectCredential(ctx context.Context) (string, string, error) {
	passwords := c.config.passwords()
	if !c.config.Rotation.Enabled {
		return "0", passwords[0], nil
	}

	counts, err := c.counter.Get(ctx)
	if err != nil {
		return "", "", fmt.Errorf("cin7: failed to read rotation counts: %w", err)
	}

	indexes := make([]int, len(passwords))
	for i := range passwords {
		indexes[i] = i
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		index := strconv.Itoa(i)
		if counts[index] < c.config.Rotation.Cutoff {
			return index, passwords[i], nil
		}
	}
	return "", "", integration.ErrQuotaExhausted
}

func (c *apiChannel) recordCall(ctx context.Context, credentialIndex string, log *zap.Logger) {
	if !c.config.Rotation.Enabled {
		return
	}
	if err := c.counter.Increment(ctx, credentialIndex); err != nil {
		// Counting is best effort; a missed increment skews a key by one call
		log.Warn("failed to increment rotation counter",
			zap.String("credential_index", credentialIndex),
			zap.Error(err))
	}
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

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// getJSON is a convenience wrapper decoding a GET response into out
func (c *apiChannel) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.send(ctx, apiRequest{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	return nil
}

// upsert POSTs or PUTs records and decodes the acknowledgement array
func (c *apiChannel) upsert(ctx context.Context, method, path string, records any) ([]integration.UpsertAck, error) {
	body, err := c.send(ctx, apiRequest{method: method, path: path, body: records})
	if err != nil {
		return nil, err
	}
	var acks []integration.UpsertAck
	if err := json.Unmarshal(body, &acks); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	return acks, nil
}
