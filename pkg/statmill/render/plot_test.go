package render

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statmill/statmill/pkg/statmill"
)

func TestTimeSeriesPlotWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	p := NewTimeSeriesPlot(path)
	p.Title = "ipc over time"
	p.YLabel = "ipc"

	for tick := 0; tick < 5; tick++ {
		require.NoError(t, p.WriteRows([]statmill.Row{
			{Tick: tick, Label: "ipc", Value: float64(tick) * 0.5},
			{Tick: tick, Label: "cpi", Value: 2 / (float64(tick) + 1)},
		}))
	}
	// Non-finite and failed points leave gaps instead of distorting axes.
	require.NoError(t, p.WriteRows([]statmill.Row{
		{Tick: 5, Label: "ipc", Value: math.Inf(1)},
		{Tick: 5, Label: "cpi", Err: errors.New("counter gone")},
	}))

	require.NoError(t, p.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTimeSeriesPlotBadPath(t *testing.T) {
	p := NewTimeSeriesPlot(filepath.Join(t.TempDir(), "missing", "out.png"))
	require.NoError(t, p.WriteRows([]statmill.Row{{Tick: 0, Label: "q", Value: 1}}))
	assert.Error(t, p.Close())
}
