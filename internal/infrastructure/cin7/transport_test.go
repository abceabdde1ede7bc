package cin7

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/connectors/internal/domain/integration"
	"github.com/erp/connectors/internal/infrastructure/rotation"
)

func newTestChannel(t *testing.T, config *Config, counter integration.KeyRotationCounter) (*apiChannel, *[]time.Duration) {
	t.Helper()

	require.NoError(t, config.Validate())
	channel, err := newAPIChannel(config, counter, nil)
	require.NoError(t, err)

	var delays []time.Duration
	channel.sleep = func(d time.Duration) { delays = append(delays, d) }
	return channel, &delays
}

func TestAPIChannel_RetriesOn429ThenSucceeds(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	channel, delays := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "p"},
		MaxRetries: 5,
	}, nil)

	body, err := channel.send(context.Background(), apiRequest{method: http.MethodGet, path: "/SalesOrders/1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(body))
	assert.EqualValues(t, 4, requests.Load())

	// Base delays 2s, 4s, 8s with up to 500ms of jitter either way
	require.Len(t, *delays, 3)
	for i, want := range []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second} {
		got := (*delays)[i]
		assert.InDelta(t, float64(want), float64(got), float64(500*time.Millisecond), "delay %d", i)
		if i > 0 {
			assert.Greater(t, got, (*delays)[i-1])
		}
	}
}

func TestAPIChannel_429RetriesExhausted(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	channel, _ := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "p"},
		MaxRetries: 2,
	}, nil)

	_, err := channel.send(context.Background(), apiRequest{method: http.MethodGet, path: "/SalesOrders"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrRateLimited)
	assert.EqualValues(t, 3, requests.Load())
}

func TestAPIChannel_HardCeilingCapsConfiguredRetries(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	channel, _ := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "p"},
		MaxRetries: 50,
	}, nil)

	_, err := channel.send(context.Background(), apiRequest{method: http.MethodGet, path: "/SalesOrders"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrRateLimited)
	assert.EqualValues(t, 11, requests.Load())
}

func TestAPIChannel_NonRetryableStatusPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such order", http.StatusNotFound)
	}))
	defer server.Close()

	channel, delays := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "p"},
	}, nil)

	_, err := channel.send(context.Background(), apiRequest{method: http.MethodGet, path: "/SalesOrders/9"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrRequestFailed)
	assert.Contains(t, err.Error(), "no such order")
	assert.Empty(t, *delays)
}

func TestAPIChannel_RotationPicksFirstKeyUnderCutoff(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	counter := rotation.NewMemoryCounter()
	ctx := context.Background()
	for i := 0; i < 4901; i++ {
		require.NoError(t, counter.Increment(ctx, "0"))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, counter.Increment(ctx, "1"))
	}

	channel, _ := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "key0", ExtraPasswords: []string{"key1"}},
		Rotation:   RotationConfig{Enabled: true, Cutoff: 4900},
	}, counter)

	_, err := channel.send(ctx, apiRequest{method: http.MethodGet, path: "/SalesOrders"})
	require.NoError(t, err)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("u:key1"))
	assert.Equal(t, expected, authorization)

	// The call completed, so key 1 gained exactly one count
	counts, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, counts["1"])
	assert.Equal(t, 4901, counts["0"])
}

func TestAPIChannel_QuotaExhaustedFailsBeforeNetwork(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	counter := rotation.NewMemoryCounter()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, counter.Increment(ctx, "0"))
		require.NoError(t, counter.Increment(ctx, "1"))
	}

	channel, _ := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "k0", ExtraPasswords: []string{"k1"}},
		Rotation:   RotationConfig{Enabled: true, Cutoff: 5},
	}, counter)

	_, err := channel.send(ctx, apiRequest{method: http.MethodGet, path: "/SalesOrders"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrQuotaExhausted)
	assert.Zero(t, requests.Load())
}

func TestAPIChannel_IncrementsCounterOnErrorStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	counter := rotation.NewMemoryCounter()
	channel, _ := newTestChannel(t, &Config{
		APIBaseURL: server.URL,
		API:        APICredentials{Username: "u", Password: "p"},
		Rotation:   RotationConfig{Enabled: true, Cutoff: 100},
	}, counter)

	_, err := channel.send(context.Background(), apiRequest{method: http.MethodGet, path: "/SalesOrders"})
	require.Error(t, err)

	// Counts reflect calls actually made, not business success
	counts, err := counter.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["0"])
}

func TestAPIChannel_RotationRequiresCounter(t *testing.T) {
	config := &Config{
		API:      APICredentials{Username: "u", Password: "p"},
		Rotation: RotationConfig{Enabled: true},
	}
	require.NoError(t, config.Validate())

	_, err := newAPIChannel(config, nil, nil)
	assert.ErrorIs(t, err, ErrConfigRotationNoCounter)
}

func TestBackoffDelay_CappedAndJittered(t *testing.T) {
	for retry := 1; retry <= 10; retry++ {
		delay := backoffDelay(retry)
		assert.GreaterOrEqual(t, delay, time.Duration(0))
		assert.LessOrEqual(t, delay, backoffCapDelay+backoffJitterHalfWindow)
	}
}
