package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstAckError(t *testing.T) {
	tests := []struct {
		name    string
		acks    []UpsertAck
		wantErr string
	}{
		{
			name: "all success",
			acks: []UpsertAck{{Success: true}, {Success: true}},
		},
		{
			name: "single failure joins messages",
			acks: []UpsertAck{
				{Success: true},
				{Success: false, Errors: []string{"bad branch", "missing member"}},
			},
			wantErr: "bad branch, missing member",
		},
		{
			name: "empty acks",
			acks: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FirstAckError(tt.acks)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUpsertRejected)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSortResults_RestoresInputOrder(t *testing.T) {
	inputs := []string{"a", "b", "c", "d"}
	// Results arrive partitioned: API-updated items first, UI items after
	results := []BatchResult{
		{ItemID: "b", Success: true},
		{ItemID: "d", Success: true},
		{ItemID: "a", Success: false, ErrorMessage: "timeout"},
		{ItemID: "c", Success: true},
	}

	sorted := SortResults(inputs, results)

	require.Len(t, sorted, len(inputs))
	for i, id := range inputs {
		assert.Equal(t, id, sorted[i].ItemID)
	}
	assert.False(t, sorted[0].Success)
}

func TestSortResults_StableForDuplicateIDs(t *testing.T) {
	inputs := []string{"a", "a"}
	results := []BatchResult{
		{ItemID: "a", Success: true},
		{ItemID: "a", Success: false},
	}

	sorted := SortResults(inputs, results)

	require.Len(t, sorted, 2)
	assert.True(t, sorted[0].Success)
	assert.False(t, sorted[1].Success)
}
