package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/connectors/internal/domain/integration"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewWithEndpoint(&Config{
		ShopDomain:  "example.myshopify.com",
		AccessToken: "shpat_test",
	}, server.URL, nil)
	require.NoError(t, err)

	var waits []time.Duration
	client.sleep = func(d time.Duration) { waits = append(waits, d) }
	return client, &waits
}

const throttledResponse = `{
	"errors": [{"message": "Throttled", "extensions": {"code": "THROTTLED"}}],
	"extensions": {"cost": {
		"requestedQueryCost": 80,
		"actualQueryCost": 0,
		"throttleStatus": {"maximumAvailable": 1000, "currentlyAvailable": 20, "restoreRate": 50}
	}}
}`

func TestQuery_DecodesData(t *testing.T) {
	var token string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Shopify-Access-Token")
		_, _ = w.Write([]byte(`{"data": {"shop": {"name": "Example"}}}`))
	})

	var out struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	require.NoError(t, client.Query(context.Background(), `{ shop { name } }`, nil, &out))
	assert.Equal(t, "Example", out.Shop.Name)
	assert.Equal(t, "shpat_test", token)
}

func TestQuery_ThrottledWaitsForRestoreRate(t *testing.T) {
	var requests atomic.Int32
	client, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			_, _ = w.Write([]byte(throttledResponse))
			return
		}
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	require.NoError(t, client.Query(context.Background(), `{ orders { id } }`, nil, nil))
	assert.EqualValues(t, 2, requests.Load())

	// ceil(80 / 50) + 1 = 3 seconds
	require.Len(t, *waits, 1)
	assert.Equal(t, 3*time.Second, (*waits)[0])
}

func TestQuery_ThrottledRetriesExhausted(t *testing.T) {
	var requests atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(throttledResponse))
	})

	err := client.Query(context.Background(), `{ orders { id } }`, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrRequestFailed)
	assert.Contains(t, err.Error(), "Throttled")
	// 1 initial attempt + 3 retries
	assert.EqualValues(t, 4, requests.Load())
}

func TestQuery_UserErrorsSurface(t *testing.T) {
	client, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [
			{"message": "Field 'bogus' doesn't exist", "extensions": {"code": "undefinedField"}},
			{"message": "Access denied", "extensions": {"code": "ACCESS_DENIED"}}
		]}`))
	})

	err := client.Query(context.Background(), `{ bogus }`, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'bogus' doesn't exist; Access denied")
	assert.Empty(t, *waits)
}

func TestQuery_HTTPErrorPropagates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	err := client.Query(context.Background(), `{ shop { name } }`, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrRequestFailed)
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{AccessToken: "t"}).Validate(), ErrConfigMissingShopDomain)
	assert.ErrorIs(t, (&Config{ShopDomain: "d"}).Validate(), ErrConfigMissingAccessToken)

	config := &Config{ShopDomain: "d", AccessToken: "t"}
	require.NoError(t, config.Validate())
	assert.Equal(t, DefaultAPIVersion, config.APIVersion)
	assert.Equal(t, 3, config.MaxRetries)
}
