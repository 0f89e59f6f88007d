package statmill

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
	"github.com/statmill/statmill/pkg/statmill/dump"
)

// Aggregate nodes reduce every counter matching a glob pattern in the
// current snapshot. The match set is recomputed on every tick, so a topology
// that changes mid-stream (a core appearing or disappearing) is handled
// correctly at the cost of a scan per evaluation. A pattern that matches
// nothing fails with *NoMatchError; an aggregate over nothing is never 0.

// AggregateSum returns a node summing all counters matching pattern.
func AggregateSum(pattern string) Node {
	return &aggregateNode{pattern: pattern, name: "Sum", reduce: func(xs []float64) float64 {
		var sum float64
		for _, v := range xs {
			sum += v
		}
		return sum
	}}
}

// AggregateAvg returns a node averaging all counters matching pattern.
func AggregateAvg(pattern string) Node {
	return &aggregateNode{pattern: pattern, name: "Avg", reduce: stats.Mean}
}

// AggregateMin returns a node taking the minimum over counters matching
// pattern.
func AggregateMin(pattern string) Node {
	return &aggregateNode{pattern: pattern, name: "Min", reduce: func(xs []float64) float64 {
		min, _ := stats.Bounds(xs)
		return min
	}}
}

// AggregateMax returns a node taking the maximum over counters matching
// pattern.
func AggregateMax(pattern string) Node {
	return &aggregateNode{pattern: pattern, name: "Max", reduce: func(xs []float64) float64 {
		_, max := stats.Bounds(xs)
		return max
	}}
}

// AggregateCount returns a node counting the counters matching pattern.
func AggregateCount(pattern string) Node {
	return &aggregateNode{pattern: pattern, name: "Count", reduce: func(xs []float64) float64 {
		return float64(len(xs))
	}}
}

type aggregateNode struct {
	pattern string
	name    string
	reduce  func([]float64) float64
}

func (n *aggregateNode) Eval(s *dump.Snapshot) (float64, error) {
	entries := s.Match(n.pattern)
	if len(entries) == 0 {
		return 0, &NoMatchError{Pattern: n.pattern}
	}
	xs := make([]float64, len(entries))
	for i, e := range entries {
		xs[i] = e.Value
	}
	return n.reduce(xs), nil
}

func (n *aggregateNode) Reset() {}

func (n *aggregateNode) String() string {
	return fmt.Sprintf("%s(%q)", n.name, n.pattern)
}
