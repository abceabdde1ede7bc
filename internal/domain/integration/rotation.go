package integration

import "context"

// KeyRotationCounter tracks per-credential API call counts. The counter is
// externally owned state, possibly persistent and shared by several processes;
// the API channel only reads counts and requests increments. A stale read may
// under- or over-select a credential by one call; that drift is accepted.
type KeyRotationCounter interface {
	// Get returns the current call count per credential index.
	Get(ctx context.Context) (map[string]int, error)
	// Increment adds one call to the given credential index.
	Increment(ctx context.Context, credentialIndex string) error
	// Reset clears all counts.
	Reset(ctx context.Context) error
}
