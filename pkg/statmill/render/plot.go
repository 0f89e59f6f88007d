package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/statmill/statmill/pkg/statmill"
)

// TimeSeriesPlot accumulates one series per query label and writes a chart
// when closed. The output format follows the file extension (.png, .pdf,
// .svg), as understood by plot.Save.
type TimeSeriesPlot struct {
	Path   string // output file
	Title  string
	YLabel string
	LogY   bool

	series map[string]*plotter.XYs
	order  []string
}

func NewTimeSeriesPlot(path string) *TimeSeriesPlot {
	return &TimeSeriesPlot{
		Path:   path,
		series: make(map[string]*plotter.XYs),
	}
}

func (p *TimeSeriesPlot) WriteRows(rows []statmill.Row) error {
	for _, row := range rows {
		xys, ok := p.series[row.Label]
		if !ok {
			xys = &plotter.XYs{}
			p.series[row.Label] = xys
			p.order = append(p.order, row.Label)
		}
		// Failed and non-finite points would distort the axes; leave a
		// gap instead.
		if row.Err != nil || math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
			continue
		}
		*xys = append(*xys, plotter.XY{X: float64(row.Tick), Y: row.Value})
	}
	return nil
}

func (p *TimeSeriesPlot) Close() error {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = "tick"
	pl.Y.Label.Text = p.YLabel
	if p.LogY {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{}
	}
	pl.Add(plotter.NewGrid())

	for i, label := range p.order {
		line, err := plotter.NewLine(*p.series[label])
		if err != nil {
			return fmt.Errorf("plot series %q: %w", label, err)
		}
		line.Color = plotutil.Color(i)
		pl.Add(line)
		pl.Legend.Add(label, line)
	}
	pl.Legend.Top = true

	if err := pl.Save(20*vg.Centimeter, 10*vg.Centimeter, p.Path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
