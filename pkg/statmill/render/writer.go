package render

import (
	"bufio"
	"io"
	"strconv"

	"github.com/statmill/statmill/pkg/statmill"
)

// DelimitedWriter emits one line per tick, the queries' values joined by a
// field separator, in stream order. Rows with error markers render as the
// error's text so a failed evaluation is visible in the output rather than
// a gap. With LastOnly set, only the final tick's line is written, at Close.
type DelimitedWriter struct {
	w         *bufio.Writer
	separator string

	// LastOnly suppresses all lines except the last tick's.
	LastOnly bool

	last    string
	hasLast bool
}

// NewDelimitedWriter creates a writer emitting separator-joined rows to w.
// An empty separator defaults to ":", the classic field separator of the
// original query tool.
func NewDelimitedWriter(w io.Writer, separator string) *DelimitedWriter {
	if separator == "" {
		separator = ":"
	}
	return &DelimitedWriter{w: bufio.NewWriter(w), separator: separator}
}

func (d *DelimitedWriter) WriteRows(rows []statmill.Row) error {
	line := formatLine(rows, d.separator)
	if d.LastOnly {
		d.last = line
		d.hasLast = true
		return nil
	}
	if _, err := d.w.WriteString(line); err != nil {
		return err
	}
	return d.w.WriteByte('\n')
}

func (d *DelimitedWriter) Close() error {
	if d.LastOnly && d.hasLast {
		if _, err := d.w.WriteString(d.last); err != nil {
			return err
		}
		if err := d.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return d.w.Flush()
}

func formatLine(rows []statmill.Row, separator string) string {
	var buf []byte
	for i, row := range rows {
		if i > 0 {
			buf = append(buf, separator...)
		}
		buf = append(buf, formatValue(row)...)
	}
	return string(buf)
}

func formatValue(row statmill.Row) string {
	if row.Err != nil {
		return "error(" + row.Err.Error() + ")"
	}
	return strconv.FormatFloat(row.Value, 'g', -1, 64)
}
