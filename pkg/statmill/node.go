package statmill

import (
	"fmt"
	"strconv"

	"github.com/statmill/statmill/pkg/statmill/dump"
)

// Node is a single evaluation unit in a compiled formula tree. Eval returns
// the node's value for the given snapshot; stateful nodes advance their
// internal state as a side effect, so a node must see every tick of its
// stream exactly once. Reset restores the node, and recursively all of its
// children, to freshly-constructed state; it is idempotent and never fails.
//
// Trees are built once by Compile and owned by exactly one Query. Sharing a
// node between queries would entangle their state and is not supported.
type Node interface {
	Eval(s *dump.Snapshot) (float64, error)
	Reset()
	String() string
}

// Constant is a fixed numeric value.
type Constant struct {
	Value float64
}

func (c *Constant) Eval(*dump.Snapshot) (float64, error) { return c.Value, nil }
func (c *Constant) Reset()                               {}
func (c *Constant) String() string {
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}

// Ref resolves a dotted counter name against the snapshot on every tick.
// Resolution is deferred to evaluation time: the same Ref tolerates a value
// that changes tick to tick while its name stays fixed. When the counter is
// absent the optional default is returned; without one, evaluation fails
// with the snapshot's *dump.NameError.
type Ref struct {
	Name    string
	Default *float64
}

func (r *Ref) Eval(s *dump.Snapshot) (float64, error) {
	v, err := s.Get(r.Name)
	if err != nil {
		if r.Default != nil {
			return *r.Default, nil
		}
		return 0, err
	}
	return v, nil
}

func (r *Ref) Reset() {}

func (r *Ref) String() string {
	if r.Default != nil {
		return fmt.Sprintf("LV(%q, %g)", r.Name, *r.Default)
	}
	return fmt.Sprintf("LV(%q)", r.Name)
}

// binaryNode combines two children with an arithmetic operator. It carries
// no state of its own; Reset just recurses.
type binaryNode struct {
	lhs, rhs Node
	op       string
	fn       func(a, b float64) float64
}

func (n *binaryNode) Eval(s *dump.Snapshot) (float64, error) {
	a, err := n.lhs.Eval(s)
	if err != nil {
		return 0, err
	}
	b, err := n.rhs.Eval(s)
	if err != nil {
		return 0, err
	}
	return n.fn(a, b), nil
}

func (n *binaryNode) Reset() {
	n.lhs.Reset()
	n.rhs.Reset()
}

func (n *binaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.lhs, n.op, n.rhs)
}

// Add returns a node computing lhs + rhs.
func Add(lhs, rhs Node) Node {
	return &binaryNode{lhs, rhs, "+", func(a, b float64) float64 { return a + b }}
}

// Sub returns a node computing lhs - rhs.
func Sub(lhs, rhs Node) Node {
	return &binaryNode{lhs, rhs, "-", func(a, b float64) float64 { return a - b }}
}

// Mul returns a node computing lhs * rhs.
func Mul(lhs, rhs Node) Node {
	return &binaryNode{lhs, rhs, "*", func(a, b float64) float64 { return a * b }}
}

// Div returns a node computing lhs / rhs. Division follows IEEE-754: a zero
// divisor yields ±Inf (or NaN for 0/0) rather than an error, so one
// degenerate tick cannot abort a stream. Callers may post-filter.
func Div(lhs, rhs Node) Node {
	return &binaryNode{lhs, rhs, "/", func(a, b float64) float64 { return a / b }}
}

// Neg returns a node computing -child.
func Neg(child Node) Node {
	return &negNode{child: child}
}

type negNode struct {
	child Node
}

func (n *negNode) Eval(s *dump.Snapshot) (float64, error) {
	v, err := n.child.Eval(s)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n *negNode) Reset() { n.child.Reset() }

func (n *negNode) String() string { return fmt.Sprintf("(-%s)", n.child) }
