// Package render delivers query result rows to their destinations: a
// delimited text writer, a summary table, a time-series plot, or any
// combination of them fanned out through MultiSink.
package render

import (
	"errors"

	"github.com/statmill/statmill/pkg/statmill"
)

// Sink receives the rows of one tick at a time, in stream order. Close
// flushes anything buffered; sinks that render only at end of stream (the
// table, the plot) do their work there.
type Sink interface {
	WriteRows(rows []statmill.Row) error
	Close() error
}

// MultiSink fans each tick's rows out to several sinks. A failing sink is
// dropped from subsequent ticks; its error is reported by Close along with
// the close errors of the rest.
type MultiSink struct {
	sinks []Sink
	errs  []error
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) WriteRows(rows []statmill.Row) error {
	kept := m.sinks[:0]
	for _, s := range m.sinks {
		if err := s.WriteRows(rows); err != nil {
			m.errs = append(m.errs, err)
			continue
		}
		kept = append(kept, s)
	}
	m.sinks = kept
	return nil
}

func (m *MultiSink) Close() error {
	errs := m.errs
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
