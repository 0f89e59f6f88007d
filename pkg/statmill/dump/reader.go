package dump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Source produces the snapshots of a stream, one per call. Next returns
// io.EOF when the stream is exhausted; any other error is an I/O or syntax
// failure. Sources are not rewindable.
type Source interface {
	Next() (*Snapshot, error)
}

// A SyntaxError describes a malformed line in a statistics log.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

const (
	beginMarker = "Begin Simulation Statistics"
	endMarker   = "End Simulation Statistics"
)

// Reader parses gem5 m5out statistics logs into snapshots. A log is a series
// of sections delimited by "Begin Simulation Statistics" markers; each section
// line holds a counter name, its value, and an optional '#' description:
//
//	---------- Begin Simulation Statistics ----------
//	sim_seconds        0.001000   # Number of seconds simulated
//	system.cpu.numCycles  500000  # number of cpu cycles simulated
//	---------- End Simulation Statistics   ----------
//
// Vector buckets ("name::key value ...") are kept as flat counters under
// their full "name::key" spelling. Lines whose second field is not numeric
// are skipped; gem5 emits "nan" and "inf", which parse as their IEEE values.
//
// A Reader retains no reference to the snapshots it returns.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	line     int
	inDump   bool
	entries  []Entry
	err      error
}

// NewReader constructs a reader for a statistics log. fileName is used in
// error messages only.
func NewReader(r io.Reader, fileName string) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1024*1024)
	return &Reader{s: s, fileName: fileName}
}

// Next returns the next snapshot in the log, or io.EOF after the last one.
func (r *Reader) Next() (*Snapshot, error) {
	if r.err != nil {
		return nil, r.err
	}

	for r.s.Scan() {
		r.line++
		line := strings.TrimSpace(r.s.Text())

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue

		case strings.Contains(line, beginMarker):
			if r.inDump && len(r.entries) > 0 {
				// Unterminated previous section; flush it.
				return r.flush(), nil
			}
			r.inDump = true
			r.entries = r.entries[:0]
			continue

		case strings.Contains(line, endMarker):
			if !r.inDump {
				continue
			}
			r.inDump = false
			if len(r.entries) == 0 {
				continue
			}
			return r.flush(), nil
		}

		if !r.inDump {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			r.err = &SyntaxError{r.fileName, r.line, fmt.Sprintf("malformed counter line %q", line)}
			return nil, r.err
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			// Non-numeric payloads (histogram header rows, string
			// configuration values) are not counters.
			continue
		}
		r.entries = append(r.entries, Entry{Name: fields[0], Value: value})
	}

	if err := r.s.Err(); err != nil {
		r.err = err
		return nil, err
	}

	// Trailing section without an end marker.
	if r.inDump && len(r.entries) > 0 {
		r.inDump = false
		return r.flush(), nil
	}

	r.err = io.EOF
	return nil, io.EOF
}

func (r *Reader) flush() *Snapshot {
	snap := NewSnapshot(r.entries)
	r.entries = r.entries[:0]
	return snap
}
