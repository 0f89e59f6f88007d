package render

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/statmill/statmill/pkg/statmill"
)

// Table collects the whole stream and renders a tick-by-query table when
// closed. It is meant for short streams and interactive use; long streams
// should go through DelimitedWriter instead.
type Table struct {
	w      io.Writer
	labels []string
	lines  [][]statmill.Row
}

func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) WriteRows(rows []statmill.Row) error {
	if t.labels == nil {
		for _, row := range rows {
			t.labels = append(t.labels, row.Label)
		}
	}
	kept := make([]statmill.Row, len(rows))
	copy(kept, rows)
	t.lines = append(t.lines, kept)
	return nil
}

func (t *Table) Close() error {
	tw := table.NewWriter()
	tw.SetOutputMirror(t.w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.labels)+1)
	header[0] = "tick"
	for i, label := range t.labels {
		header[i+1] = label
	}
	tw.AppendHeader(header)

	for _, rows := range t.lines {
		line := make(table.Row, len(rows)+1)
		if len(rows) > 0 {
			line[0] = rows[0].Tick
		}
		for i, row := range rows {
			line[i+1] = formatValue(row)
		}
		tw.AppendRow(line)
	}

	tw.Render()
	return nil
}
