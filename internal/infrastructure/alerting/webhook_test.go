package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureWebhook(t *testing.T) (*httptest.Server, *[]map[string]string) {
	t.Helper()
	var payloads []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		payloads = append(payloads, payload)
	}))
	t.Cleanup(server.Close)
	return server, &payloads
}

func TestWebhookAlerter_Log(t *testing.T) {
	server, payloads := captureWebhook(t)
	alerter := NewWebhookAlerter(server.URL, "12345", nil)

	alerter.Log(context.Background(), "sync finished: 14 orders")

	require.Len(t, *payloads, 1)
	assert.Equal(t, "sync finished: 14 orders", (*payloads)[0]["content"])
}

func TestWebhookAlerter_AlertPrefixesMention(t *testing.T) {
	server, payloads := captureWebhook(t)
	alerter := NewWebhookAlerter(server.URL, "12345", nil)

	alerter.Alert(context.Background(), "stock receipt batch failed")

	require.Len(t, *payloads, 1)
	assert.Equal(t, "<@12345> \n stock receipt batch failed", (*payloads)[0]["content"])
}

func TestWebhookAlerter_AlertWithoutMentionID(t *testing.T) {
	server, payloads := captureWebhook(t)
	alerter := NewWebhookAlerter(server.URL, "", nil)

	alerter.Alert(context.Background(), "plain alert")

	require.Len(t, *payloads, 1)
	assert.Equal(t, "plain alert", (*payloads)[0]["content"])
}

func TestWebhookAlerter_FailuresAreSwallowed(t *testing.T) {
	// Unreachable endpoint: Log and Alert must not panic or error
	alerter := NewWebhookAlerter("http://127.0.0.1:1", "12345", nil)
	alerter.Log(context.Background(), "into the void")
	alerter.Alert(context.Background(), "into the void")
}

func TestWebhookAlerter_UnconfiguredIsNoop(t *testing.T) {
	alerter := NewWebhookAlerter("", "", nil)
	alerter.Log(context.Background(), "dropped")
	alerter.Alert(context.Background(), "dropped")
}
