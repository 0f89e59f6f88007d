package statmill

import (
	"github.com/statmill/statmill/pkg/statmill/dump"
)

// Query is a compiled formula with a stable display label. The label and
// tree are immutable after compilation; only the tree's internal state
// advances as the query is driven over a stream. Every query owns its tree
// exclusively.
type Query struct {
	Label   string
	formula string
	root    Node
}

// CompileQuery compiles formula into a fresh query labeled label. When
// label is empty the formula text itself is used.
func CompileQuery(label, formula string) (*Query, error) {
	root, err := Compile(formula)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = formula
	}
	return &Query{Label: label, formula: formula, root: root}, nil
}

// Eval evaluates the query's tree for one tick. Stateful nodes advance, so
// a query must see every tick of its stream exactly once and in order.
func (q *Query) Eval(s *dump.Snapshot) (float64, error) {
	return q.root.Eval(s)
}

// Reset restores all stateful nodes in the tree to freshly-compiled state.
func (q *Query) Reset() {
	q.root.Reset()
}

// Formula returns the original formula text.
func (q *Query) Formula() string {
	return q.formula
}

// String returns the compiled tree's canonical rendering.
func (q *Query) String() string {
	return q.root.String()
}

// ResetAll resets every query, zeroing accumulated state without
// discarding the compiled trees. Use it to restart measurement from a
// chosen point mid-stream.
func ResetAll(queries []*Query) {
	for _, q := range queries {
		q.Reset()
	}
}
