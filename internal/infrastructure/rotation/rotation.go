// Package rotation provides KeyRotationCounter implementations. The counter
// is the externally owned call-count state consulted by API channels when
// picking which of several credentials to sign the next request with.
package rotation

import "github.com/erp/connectors/internal/domain/integration"

// Ensure both counters implement the domain port
var (
	_ integration.KeyRotationCounter = (*RedisCounter)(nil)
	_ integration.KeyRotationCounter = (*MemoryCounter)(nil)
)
