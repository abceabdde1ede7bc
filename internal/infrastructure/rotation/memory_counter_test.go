package rotation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounter_IncrementAndGet(t *testing.T) {
	counter := NewMemoryCounter()
	ctx := context.Background()

	require.NoError(t, counter.Increment(ctx, "0"))
	require.NoError(t, counter.Increment(ctx, "0"))

	counts, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"0": 2}, counts)

	// Get returns a copy; mutating it must not affect counter state
	counts["0"] = 99
	fresh, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh["0"])
}

func TestMemoryCounter_Reset(t *testing.T) {
	counter := NewMemoryCounter()
	ctx := context.Background()

	require.NoError(t, counter.Increment(ctx, "1"))
	require.NoError(t, counter.Reset(ctx))

	counts, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestMemoryCounter_ConcurrentIncrements(t *testing.T) {
	counter := NewMemoryCounter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = counter.Increment(ctx, "0")
		}()
	}
	wg.Wait()

	counts, err := counter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, counts["0"])
}
