// Package alerting posts operational messages to a chat webhook. Delivery is
// best effort: alerting must never take a sync run down with it, so every
// failure is logged and swallowed.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// WebhookAlerter posts messages to a Discord-compatible webhook URL
type WebhookAlerter struct {
	webhookURL string
	// mentionID is the chat user id pinged on Alert; empty disables mentions
	mentionID  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookAlerter creates an alerter. An empty webhookURL yields a no-op
// alerter, so callers never need to branch on whether alerting is configured.
func NewWebhookAlerter(webhookURL, mentionID string, logger *zap.Logger) *WebhookAlerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookAlerter{
		webhookURL: webhookURL,
		mentionID:  mentionID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// Log posts an informational message
func (a *WebhookAlerter) Log(ctx context.Context, message string) {
	a.post(ctx, message)
}

// Alert posts a message prefixed with the configured user mention, which
// triggers a notification on the receiving side
func (a *WebhookAlerter) Alert(ctx context.Context, message string) {
	if a.mentionID != "" {
		message = fmt.Sprintf("<@%s> \n %s", a.mentionID, message)
	}
	a.post(ctx, message)
}

func (a *WebhookAlerter) post(ctx context.Context, message string) {
	if a.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		a.logger.Error("failed to encode webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewReader(payload))
	if err != nil {
		a.logger.Error("failed to create webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("failed to send webhook message", zap.Error(err))
		return
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= 400 {
		a.logger.Error("webhook rejected message", zap.Int("status", resp.StatusCode))
	}
}
