package dump

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedSnapshots(n int) []*Snapshot {
	snaps := make([]*Snapshot, n)
	for i := range snaps {
		snaps[i] = NewSnapshot([]Entry{{"tick", float64(i)}})
	}
	return snaps
}

func drainTicks(t *testing.T, src Source) []float64 {
	t.Helper()
	var ticks []float64
	for {
		s, err := src.Next()
		if err == io.EOF {
			return ticks
		}
		require.NoError(t, err)
		v, err := s.Get("tick")
		require.NoError(t, err)
		ticks = append(ticks, v)
	}
}

func TestSnapshotsSource(t *testing.T) {
	src := Snapshots(numberedSnapshots(3)...)
	assert.Equal(t, []float64{0, 1, 2}, drainTicks(t, src))

	_, err := src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSlice(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step int
		expected          []float64
	}{
		{"identity", 0, 0, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"skip", 3, 0, 1, []float64{3, 4, 5, 6, 7, 8, 9}},
		{"limit", 0, 4, 1, []float64{0, 1, 2, 3}},
		{"stride", 0, 0, 3, []float64{0, 3, 6, 9}},
		{"combined", 2, 3, 2, []float64{2, 4, 6}},
		{"start past end", 20, 0, 1, nil},
		{"step below one", 0, 2, 0, []float64{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Slice(Snapshots(numberedSnapshots(10)...), tt.start, tt.stop, tt.step)
			assert.Equal(t, tt.expected, drainTicks(t, src))
		})
	}
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := WithContext(ctx, Snapshots(numberedSnapshots(3)...))

	_, err := src.Next()
	require.NoError(t, err)

	cancel()
	_, err = src.Next()
	assert.ErrorIs(t, err, context.Canceled)
}
