package unleashed

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesOrdersUpdate_HashShortCircuitSkipsPUT(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodPut, r.Method)
		_, _ = w.Write([]byte(`{"Guid":"abc","OrderNumber":"SO-1","CustomerRef":"REF-9"}`))
	})

	payload := &SalesOrderUpdate{GUID: "abc", CustomerRef: "REF-9"}

	first, err := client.SalesOrders.Update(context.Background(), payload, "")
	require.NoError(t, err)
	assert.True(t, first.Updated)
	assert.NotEmpty(t, first.Hash)
	require.NotNil(t, first.SalesOrder)
	assert.Equal(t, "SO-1", first.SalesOrder.OrderNumber)

	// Same payload with the hash from the first round: no request goes out
	second, err := client.SalesOrders.Update(context.Background(), payload, first.Hash)
	require.NoError(t, err)
	assert.False(t, second.Updated)
	assert.Nil(t, second.SalesOrder)
	assert.Equal(t, first.Hash, second.Hash)
	assert.EqualValues(t, 1, requests.Load())

	// A changed payload invalidates the stored hash
	payload.CustomerRef = "REF-10"
	third, err := client.SalesOrders.Update(context.Background(), payload, first.Hash)
	require.NoError(t, err)
	assert.True(t, third.Updated)
	assert.NotEqual(t, first.Hash, third.Hash)
	assert.EqualValues(t, 2, requests.Load())
}

func TestUpdateHash_Deterministic(t *testing.T) {
	a, err := UpdateHash(&SalesOrderUpdate{GUID: "g", Comments: "x"})
	require.NoError(t, err)
	b, err := UpdateHash(&SalesOrderUpdate{GUID: "g", Comments: "x"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := UpdateHash(&SalesOrderUpdate{GUID: "g", Comments: "y"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSalesOrdersComplete(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, client.SalesOrders.Complete(context.Background(), "abc"))
	assert.Equal(t, "/SalesOrders/abc/Complete", path)
}

func TestSalesOrdersQuery_DecodesPaginationAndDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Completed", r.URL.Query().Get("orderStatus"))
		_, _ = w.Write([]byte(`{
			"Pagination": {"NumberOfItems": 1, "PageSize": 100, "PageNumber": 1, "NumberOfPages": 1},
			"Items": [{
				"Guid": "abc",
				"OrderNumber": "SO-1",
				"OrderDate": "/Date(1735689600000)/",
				"CompletedDate": null
			}]
		}`))
	})

	result, err := client.SalesOrders.Query(context.Background(), SalesOrderQuery{OrderStatus: "Completed"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.NumberOfItems)
	require.Len(t, result.Items, 1)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), result.Items[0].OrderDate.Time)
	assert.True(t, result.Items[0].CompletedDate.IsZero())
}

func TestDotNetTime_Formats(t *testing.T) {
	cases := []struct {
		name string
		json string
		want time.Time
	}{
		{"dotnet millis", `"/Date(1735689600000)/"`, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"escaped slashes", `"\/Date(0)\/"`, time.Unix(0, 0).UTC()},
		{"rfc3339 passthrough", `"2025-06-01T12:00:00Z"`, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var parsed DotNetTime
			require.NoError(t, parsed.UnmarshalJSON([]byte(tc.json)))
			assert.True(t, parsed.Equal(tc.want), "got %v want %v", parsed.Time, tc.want)
		})
	}
}

func TestDotNetTime_Invalid(t *testing.T) {
	var parsed DotNetTime
	assert.Error(t, parsed.UnmarshalJSON([]byte(`"not a date"`)))
}
