package statmill

import (
	"io"
	"log/slog"
	"sync"

	"github.com/statmill/statmill/pkg/statmill/dump"
)

// Row is one query's result for one tick. Err carries per-tick evaluation
// failures (a missing counter, an empty aggregate match) as a marker; such a
// row has no meaningful Value. Row errors never stop the stream.
type Row struct {
	Tick  int
	Label string
	Value float64
	Err   error
}

// Stream drives a set of queries over a snapshot source, one tick at a
// time. Its API follows bufio.Scanner: Scan advances to the next snapshot
// and evaluates every query against it, Rows returns the results for the
// current tick, and Err reports the terminating error after Scan returns
// false (nil on clean end of stream).
//
// Evaluation is strictly pull-based: nothing is read from the source until
// Scan is called, and abandoning the stream reads nothing further. Every
// query sees every tick, in the order the queries were supplied, so the
// stateful nodes of all queries stay synchronized with the stream.
type Stream struct {
	src     dump.Source
	queries []*Query
	logger  *slog.Logger

	// parallel evaluates queries for a tick concurrently. Scan still
	// returns only after every query has seen the tick, preserving the
	// between-tick barrier; per-query trees share no state.
	parallel bool

	tick int
	rows []Row
	err  error
	done bool
}

// NewStream creates a stream evaluator for the given source and queries.
func NewStream(src dump.Source, queries ...*Query) *Stream {
	return &Stream{
		src:     src,
		queries: queries,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tick:    -1,
	}
}

// SetLogger attaches a logger for per-row evaluation failures. The default
// discards them; rows carry the errors either way.
func (st *Stream) SetLogger(logger *slog.Logger) {
	if logger != nil {
		st.logger = logger
	}
}

// SetParallel toggles concurrent per-tick evaluation across queries.
func (st *Stream) SetParallel(parallel bool) {
	st.parallel = parallel
}

// Scan pulls the next snapshot and evaluates every query against it.
// It returns false at end of stream or on a source error; check Err.
func (st *Stream) Scan() bool {
	if st.done || st.err != nil {
		return false
	}

	snap, err := st.src.Next()
	if err != nil {
		st.done = true
		if err != io.EOF {
			st.err = err
		}
		return false
	}

	st.tick++
	rows := make([]Row, len(st.queries))

	if st.parallel {
		var wg sync.WaitGroup
		for i, q := range st.queries {
			wg.Add(1)
			go func(i int, q *Query) {
				defer wg.Done()
				rows[i] = st.evalOne(q, snap)
			}(i, q)
		}
		wg.Wait()
	} else {
		for i, q := range st.queries {
			rows[i] = st.evalOne(q, snap)
		}
	}

	st.rows = rows
	return true
}

func (st *Stream) evalOne(q *Query, snap *dump.Snapshot) Row {
	v, err := q.Eval(snap)
	row := Row{Tick: st.tick, Label: q.Label, Value: v, Err: err}
	if err != nil {
		row.Value = 0
		st.logger.Warn("query evaluation failed",
			"tick", st.tick,
			"query", q.Label,
			"error", err)
	}
	return row
}

// Rows returns the results of the most recent successful Scan, one row per
// query, in query order.
func (st *Stream) Rows() []Row {
	return st.rows
}

// Tick returns the index of the current tick, or -1 before the first Scan.
func (st *Stream) Tick() int {
	return st.tick
}

// Err returns the error that terminated the stream, or nil while scanning
// or after a clean end of stream.
func (st *Stream) Err() error {
	return st.err
}

// Reset zeroes the accumulated state of every query without discarding the
// compiled trees or disturbing the source position. The next Scan continues
// the stream with freshly-reset queries.
func (st *Stream) Reset() {
	ResetAll(st.queries)
}

// Queries returns the stream's queries in evaluation order.
func (st *Stream) Queries() []*Query {
	return st.queries
}
