package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotGet(t *testing.T) {
	s := NewSnapshot([]Entry{
		{"system.cpu0.ipc", 1.5},
		{"system.cpu1.ipc", 0.8},
		{"sim_seconds", 0.001},
	})

	v, err := s.Get("system.cpu0.ipc")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	_, err = s.Get("system.cpu2.ipc")
	require.Error(t, err)
	var nameErr *NameError
	require.ErrorAs(t, err, &nameErr)
	assert.Equal(t, "system.cpu2.ipc", nameErr.Name)

	assert.True(t, s.Has("sim_seconds"))
	assert.False(t, s.Has("sim_ticks"))
	assert.Equal(t, 3, s.Len())
}

func TestSnapshotDuplicateNames(t *testing.T) {
	s := NewSnapshot([]Entry{
		{"a", 1},
		{"b", 2},
		{"a", 3},
	})

	// The later value wins the lookup but the first occurrence keeps its
	// position in iteration order.
	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, []string{"a", "b"}, s.Names())
}

func TestSnapshotMatch(t *testing.T) {
	s := NewSnapshot([]Entry{
		{"system.cpu0.ipc", 1.5},
		{"system.cpu1.ipc", 0.8},
		{"system.cpu0.numCycles", 1000},
		{"sim_seconds", 0.001},
	})

	tests := []struct {
		pattern string
		names   []string
	}{
		{"system.cpu*.ipc", []string{"system.cpu0.ipc", "system.cpu1.ipc"}},
		{"system.cpu0.*", []string{"system.cpu0.ipc", "system.cpu0.numCycles"}},
		{"sim_seconds", []string{"sim_seconds"}},
		// '*' spans dot boundaries: counter names are flat strings.
		{"system.*", []string{"system.cpu0.ipc", "system.cpu1.ipc", "system.cpu0.numCycles"}},
		{"nothing.*", nil},
	}

	for _, tt := range tests {
		entries := s.Match(tt.pattern)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name)
		}
		assert.Equal(t, tt.names, names, "pattern %q", tt.pattern)
	}
}

func TestSnapshotMatchBadPattern(t *testing.T) {
	s := NewSnapshot([]Entry{{"a", 1}})
	assert.Empty(t, s.Match("[unclosed"))
}
