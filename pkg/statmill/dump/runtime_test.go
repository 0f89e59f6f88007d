package dump

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeSourceSamples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewRuntimeSource(ctx, 10*time.Millisecond)

	// First sample is immediate.
	snap, err := src.Next()
	require.NoError(t, err)

	for _, name := range []string{"heap.alloc", "goroutines.count", "gc.pause_total_ns"} {
		v, err := snap.Get(name)
		require.NoError(t, err, name)
		assert.GreaterOrEqual(t, v, 0.0, name)
	}

	snap, err = src.Next()
	require.NoError(t, err)
	assert.True(t, snap.Has("heap.alloc"))
}

func TestRuntimeSourceCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewRuntimeSource(ctx, time.Hour)

	_, err := src.Next()
	require.NoError(t, err)

	cancel()
	_, err = src.Next()
	assert.ErrorIs(t, err, context.Canceled)
}
