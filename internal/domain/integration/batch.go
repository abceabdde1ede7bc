package integration

import (
	"fmt"
	"strings"
)

// BatchResult is the outcome of one item in a batched operation. Batch
// operations produce exactly one BatchResult per input item, in input order.
type BatchResult struct {
	ItemID       string
	Success      bool
	ErrorMessage string
}

// UpsertAck is the per-record acknowledgement the vendor API returns for
// create/update calls.
type UpsertAck struct {
	Index   int      `json:"index"`
	Success bool     `json:"success"`
	ID      int64    `json:"id"`
	Code    *string  `json:"code"`
	Errors  []string `json:"errors"`
}

// FirstAckError returns an error carrying the joined vendor error messages of
// the first failed acknowledgement, or nil when every record succeeded.
func FirstAckError(acks []UpsertAck) error {
	for _, ack := range acks {
		if !ack.Success {
			return fmt.Errorf("%w: %s", ErrUpsertRejected, strings.Join(ack.Errors, ", "))
		}
	}
	return nil
}

// SortResults reorders results to match the order of the input identifiers.
// Batched workflows may partition and reorder items internally for execution
// efficiency; callers always see results in input order.
func SortResults(inputIDs []string, results []BatchResult) []BatchResult {
	position := make(map[string]int, len(inputIDs))
	for i, id := range inputIDs {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}

	sorted := make([]BatchResult, len(results))
	copy(sorted, results)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && position[sorted[j-1].ItemID] > position[sorted[j].ItemID]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}
