// Package dump provides counter snapshots and the sources that produce them.
//
// A Snapshot is one tick of a counter stream: a flat, immutable mapping from
// dotted counter name (e.g. "system.cpu0.ipc") to numeric value. The dots are
// a naming convention, not nested containers. Sources produce snapshots one
// at a time; the Reader in this package parses gem5 m5out statistics logs,
// and RuntimeSource samples the host process's own Go runtime counters.
package dump

import (
	"fmt"
	"path"
)

// Entry is one named counter within a snapshot.
type Entry struct {
	Name  string
	Value float64
}

// Snapshot is an immutable set of named counters for a single tick.
// The insertion order of counters is preserved for deterministic iteration.
type Snapshot struct {
	entries []Entry
	index   map[string]float64
}

// NewSnapshot builds a snapshot from entries. Later duplicates overwrite
// earlier ones in the lookup index but keep their first position in order.
func NewSnapshot(entries []Entry) *Snapshot {
	s := &Snapshot{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]float64, len(entries)),
	}
	for _, e := range entries {
		if _, dup := s.index[e.Name]; !dup {
			s.entries = append(s.entries, e)
		}
		s.index[e.Name] = e.Value
	}
	return s
}

// NameError reports a counter lookup against a snapshot that does not
// contain the requested name.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("counter %q not found in snapshot", e.Name)
}

// Get returns the value of the named counter, or a *NameError if the
// snapshot has no such counter. Missing names never default silently.
func (s *Snapshot) Get(name string) (float64, error) {
	v, ok := s.index[name]
	if !ok {
		return 0, &NameError{Name: name}
	}
	return v, nil
}

// Has reports whether the snapshot contains the named counter.
func (s *Snapshot) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Match returns all entries whose full name matches the glob pattern, in
// snapshot order. Wildcards follow path.Match syntax; '*' spans dot
// boundaries because counter names contain no path separators.
func (s *Snapshot) Match(pattern string) []Entry {
	var out []Entry
	for _, e := range s.entries {
		ok, err := path.Match(pattern, e.Name)
		if err != nil {
			return nil
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the counter names in snapshot order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of counters in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.entries)
}
