package rotation

import (
	"context"
	"sync"
)

// MemoryCounter implements integration.KeyRotationCounter in process memory.
// Suitable for tests and single-instance runs; counts do not survive restarts.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryCounter creates an empty in-memory rotation counter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		counts: make(map[string]int),
	}
}

// Get returns a copy of the current call counts
func (c *MemoryCounter) Get(ctx context.Context) (map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.counts))
	for index, n := range c.counts {
		counts[index] = n
	}
	return counts, nil
}

// Increment adds one call to the given credential index
func (c *MemoryCounter) Increment(ctx context.Context, credentialIndex string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[credentialIndex]++
	return nil
}

// Reset clears all counts
func (c *MemoryCounter) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = make(map[string]int)
	return nil
}
