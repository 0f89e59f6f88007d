package statmill

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/statmill/statmill/pkg/statmill/dump"
)

// Stateful nodes own their state exclusively and advance it once per Eval.
// Reset restores the state a fresh construction would have, so a reset tree
// is indistinguishable from a new one.

// Accumulate returns a node carrying a running sum of its child across
// ticks, seeded with start. Each Eval returns the sum including the current
// tick's value.
func Accumulate(child Node, start float64) Node {
	return &accumulateNode{child: child, start: start, sum: start}
}

type accumulateNode struct {
	child Node
	start float64
	sum   float64
}

func (n *accumulateNode) Eval(s *dump.Snapshot) (float64, error) {
	v, err := n.child.Eval(s)
	if err != nil {
		return 0, err
	}
	n.sum += v
	return n.sum, nil
}

func (n *accumulateNode) Reset() {
	n.child.Reset()
	n.sum = n.start
}

func (n *accumulateNode) String() string {
	return fmt.Sprintf("Accumulate(%s)", n.child)
}

// Delta returns a node computing the difference between the child's current
// and previous value. The first tick after construction or reset has no
// previous value and yields 0.
func Delta(child Node) Node {
	return &deltaNode{child: child}
}

type deltaNode struct {
	child Node
	prev  float64
	seen  bool
}

func (n *deltaNode) Eval(s *dump.Snapshot) (float64, error) {
	v, err := n.child.Eval(s)
	if err != nil {
		return 0, err
	}
	var out float64
	if n.seen {
		out = v - n.prev
	}
	n.prev = v
	n.seen = true
	return out, nil
}

func (n *deltaNode) Reset() {
	n.child.Reset()
	n.prev = 0
	n.seen = false
}

func (n *deltaNode) String() string {
	return fmt.Sprintf("Delta(%s)", n.child)
}

// ArithmeticMean returns a node computing the running arithmetic mean of
// its child over all ticks since the last reset.
func ArithmeticMean(child Node) Node {
	return &runningMeanNode{child: child, name: "ArithmeticMean", kind: meanArithmetic}
}

// GeometricMean returns a node computing the running geometric mean.
func GeometricMean(child Node) Node {
	return &runningMeanNode{child: child, name: "GeometricMean", kind: meanGeometric}
}

// HarmonicMean returns a node computing the running harmonic mean.
func HarmonicMean(child Node) Node {
	return &runningMeanNode{child: child, name: "HarmonicMean", kind: meanHarmonic}
}

type meanKind int

const (
	meanArithmetic meanKind = iota
	meanGeometric
	meanHarmonic
)

type runningMeanNode struct {
	child Node
	name  string
	kind  meanKind

	// acc is a sum, log-sum, or reciprocal sum depending on kind.
	acc   float64
	count int
}

func (n *runningMeanNode) Eval(s *dump.Snapshot) (float64, error) {
	v, err := n.child.Eval(s)
	if err != nil {
		return 0, err
	}
	n.count++
	switch n.kind {
	case meanArithmetic:
		n.acc += v
		return n.acc / float64(n.count), nil
	case meanGeometric:
		n.acc += math.Log(v)
		return math.Exp(n.acc / float64(n.count)), nil
	default: // meanHarmonic
		n.acc += 1 / v
		return float64(n.count) / n.acc, nil
	}
}

func (n *runningMeanNode) Reset() {
	n.child.Reset()
	n.acc = 0
	n.count = 0
}

func (n *runningMeanNode) String() string {
	return fmt.Sprintf("%s(%s)", n.name, n.child)
}

// SlidingSum returns a node computing the sum of the child's last length
// values. Until the window fills, the statistic covers the values seen so
// far.
func SlidingSum(child Node, length int) Node {
	return newSliding(child, length, "SlidingSum", func(w []float64) float64 {
		var sum float64
		for _, v := range w {
			sum += v
		}
		return sum
	})
}

// SlidingAMean returns a node computing the arithmetic mean over a sliding
// window of length values.
func SlidingAMean(child Node, length int) Node {
	return newSliding(child, length, "SlidingAMean", stats.Mean)
}

// SlidingGMean returns a node computing the geometric mean over a sliding
// window of length values.
func SlidingGMean(child Node, length int) Node {
	return newSliding(child, length, "SlidingGMean", stats.GeoMean)
}

// SlidingHMean returns a node computing the harmonic mean over a sliding
// window of length values.
func SlidingHMean(child Node, length int) Node {
	return newSliding(child, length, "SlidingHMean", func(w []float64) float64 {
		var recip float64
		for _, v := range w {
			recip += 1 / v
		}
		return float64(len(w)) / recip
	})
}

// SlidingMedian returns a node computing the median over a sliding window
// of length values.
func SlidingMedian(child Node, length int) Node {
	return newSliding(child, length, "SlidingMedian", func(w []float64) float64 {
		xs := make([]float64, len(w))
		copy(xs, w)
		return (&stats.Sample{Xs: xs}).Quantile(0.5)
	})
}

// SlidingMin returns a node computing the minimum over a sliding window.
func SlidingMin(child Node, length int) Node {
	return newSliding(child, length, "SlidingMin", func(w []float64) float64 {
		min, _ := stats.Bounds(w)
		return min
	})
}

// SlidingMax returns a node computing the maximum over a sliding window.
func SlidingMax(child Node, length int) Node {
	return newSliding(child, length, "SlidingMax", func(w []float64) float64 {
		_, max := stats.Bounds(w)
		return max
	})
}

func newSliding(child Node, length int, name string, stat func([]float64) float64) Node {
	return &slidingNode{
		child:  child,
		length: length,
		name:   name,
		stat:   stat,
		window: make([]float64, 0, length),
	}
}

type slidingNode struct {
	child  Node
	length int
	name   string
	stat   func([]float64) float64
	window []float64
}

func (n *slidingNode) Eval(s *dump.Snapshot) (float64, error) {
	v, err := n.child.Eval(s)
	if err != nil {
		return 0, err
	}
	if len(n.window) == n.length {
		copy(n.window, n.window[1:])
		n.window = n.window[:n.length-1]
	}
	n.window = append(n.window, v)
	return n.stat(n.window), nil
}

func (n *slidingNode) Reset() {
	n.child.Reset()
	n.window = n.window[:0]
}

func (n *slidingNode) String() string {
	return fmt.Sprintf("%s(%s, %d)", n.name, n.child, n.length)
}
