package statmill

import (
	"github.com/statmill/statmill/pkg/statmill/parser"
)

// MaxFormulaNodes bounds the size of a single formula's syntax tree.
// Exceeding it is a CompileError; pathological formulas cannot build
// unbounded trees.
const MaxFormulaNodes = 1000

// A constructor builds a node from the raw argument expressions of a call.
// Arguments are interpreted per constructor: some are sub-formulas compiled
// recursively, some are counter names or patterns, some must be numeric
// constants (a sliding window length is fixed at compile time, never
// snapshot-dependent).
type constructor struct {
	minArgs, maxArgs int
	build            func(c *compiler, args []parser.Expression) (Node, error)
}

// registry is the closed set of callable names. Compilation resolves calls
// against this table and nothing else: no host-language evaluation, no I/O,
// no side effects are reachable from a formula. Short aliases mirror the
// long names (LV, AC, AMean, ...), matching the classic query tool.
var registry = map[string]*constructor{}

func register(ctor *constructor, names ...string) {
	for _, name := range names {
		registry[name] = ctor
	}
}

func init() {
	register(&constructor{1, 2, buildRef}, "LogValue", "LV")
	register(&constructor{1, 2, buildIPC}, "IPC")
	register(&constructor{1, 2, buildCPI}, "CPI")

	register(&constructor{1, 2, buildAccumulate}, "Accumulate", "AC")
	register(&constructor{1, 1, buildDelta}, "Delta")

	register(&constructor{1, 1, buildMean(ArithmeticMean)}, "ArithmeticMean", "AMean")
	register(&constructor{1, 1, buildMean(GeometricMean)}, "GeometricMean", "GMean")
	register(&constructor{1, 1, buildMean(HarmonicMean)}, "HarmonicMean", "HMean")

	register(&constructor{2, 2, buildSliding(SlidingSum)}, "SlidingSum")
	register(&constructor{2, 2, buildSliding(SlidingAMean)}, "SlidingArithmeticMean", "SlidingAMean")
	register(&constructor{2, 2, buildSliding(SlidingGMean)}, "SlidingGeometricMean", "SlidingGMean")
	register(&constructor{2, 2, buildSliding(SlidingHMean)}, "SlidingHarmonicMean", "SlidingHMean")
	register(&constructor{2, 2, buildSliding(SlidingMedian)}, "SlidingMedian")
	register(&constructor{2, 2, buildSliding(SlidingMin)}, "SlidingMin")
	register(&constructor{2, 2, buildSliding(SlidingMax)}, "SlidingMax")

	register(&constructor{1, 1, buildAggregate(AggregateSum)}, "Sum")
	register(&constructor{1, 1, buildAggregate(AggregateAvg)}, "Avg")
	register(&constructor{1, 1, buildAggregate(AggregateMin)}, "Min")
	register(&constructor{1, 1, buildAggregate(AggregateMax)}, "Max")
	register(&constructor{1, 1, buildAggregate(AggregateCount)}, "Count")
}

// Compile turns formula text into a node tree. Compilation never touches a
// snapshot: counter names resolve at evaluation time. Each call builds a
// fresh tree, so two queries compiled from the same text share no state.
//
// Failures are reported as *CompileError: parse errors, unknown constructor
// names, wrong arity, non-constant arguments where constants are required,
// or a tree larger than MaxFormulaNodes.
func Compile(formula string) (Node, error) {
	p := parser.New(parser.NewLexer(formula))
	expr := p.ParseFormula()
	if msgs := p.Errors(); len(msgs) > 0 {
		return nil, parseErrors(formula, msgs)
	}
	if expr == nil {
		return nil, compileErrorf(formula, "empty formula")
	}
	if n := expr.CountNodes(); n > MaxFormulaNodes {
		return nil, compileErrorf(formula, "formula too large: %d nodes exceeds limit of %d", n, MaxFormulaNodes)
	}

	c := &compiler{formula: formula}
	return c.compileExpr(expr)
}

type compiler struct {
	formula string
}

func (c *compiler) compileExpr(expr parser.Expression) (Node, error) {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		return &Constant{Value: float64(e.Value)}, nil

	case *parser.FloatLiteral:
		return &Constant{Value: e.Value}, nil

	case *parser.StringLiteral:
		// A bare string in expression position is a counter reference,
		// so LV('a') / 'sim_seconds' reads naturally.
		return &Ref{Name: e.Value}, nil

	case *parser.Identifier:
		if _, isCtor := registry[e.Value]; isCtor {
			return nil, compileErrorf(c.formula, "%s is a function, call it with arguments", e.Value)
		}
		return &Ref{Name: e.Value}, nil

	case *parser.PrefixExpression:
		child, err := c.compileExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return Neg(child), nil

	case *parser.InfixExpression:
		lhs, err := c.compileExpr(e.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := c.compileExpr(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case "+":
			return Add(lhs, rhs), nil
		case "-":
			return Sub(lhs, rhs), nil
		case "*":
			return Mul(lhs, rhs), nil
		case "/":
			return Div(lhs, rhs), nil
		}
		return nil, compileErrorf(c.formula, "unknown operator %q", e.Operator)

	case *parser.CallExpression:
		return c.compileCall(e)
	}

	return nil, compileErrorf(c.formula, "unsupported expression %s", expr.String())
}

func (c *compiler) compileCall(call *parser.CallExpression) (Node, error) {
	name := call.Function.(*parser.Identifier).Value
	ctor, ok := registry[name]
	if !ok {
		return nil, compileErrorf(c.formula, "unknown function %q", name)
	}
	if n := len(call.Arguments); n < ctor.minArgs || n > ctor.maxArgs {
		if ctor.minArgs == ctor.maxArgs {
			return nil, compileErrorf(c.formula, "%s takes %d argument(s), got %d", name, ctor.minArgs, len(call.Arguments))
		}
		return nil, compileErrorf(c.formula, "%s takes %d to %d arguments, got %d", name, ctor.minArgs, ctor.maxArgs, len(call.Arguments))
	}
	return ctor.build(c, call.Arguments)
}

// nameArg extracts a counter name or pattern: a quoted string, or a bare
// dotted identifier.
func (c *compiler) nameArg(fn string, expr parser.Expression) (string, error) {
	switch e := expr.(type) {
	case *parser.StringLiteral:
		return e.Value, nil
	case *parser.Identifier:
		return e.Value, nil
	}
	return "", compileErrorf(c.formula, "%s expects a counter name, got %s", fn, expr.String())
}

// numberArg extracts a numeric constant, allowing a leading unary minus.
func (c *compiler) numberArg(fn string, expr parser.Expression) (float64, error) {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		return float64(e.Value), nil
	case *parser.FloatLiteral:
		return e.Value, nil
	case *parser.PrefixExpression:
		if e.Operator == "-" {
			v, err := c.numberArg(fn, e.Right)
			if err != nil {
				return 0, err
			}
			return -v, nil
		}
	}
	return 0, compileErrorf(c.formula, "%s expects a numeric constant, got %s", fn, expr.String())
}

func (c *compiler) lengthArg(fn string, expr parser.Expression) (int, error) {
	lit, ok := expr.(*parser.IntegerLiteral)
	if !ok || lit.Value < 1 {
		return 0, compileErrorf(c.formula, "%s expects a positive integer window length, got %s", fn, expr.String())
	}
	return int(lit.Value), nil
}

func buildRef(c *compiler, args []parser.Expression) (Node, error) {
	name, err := c.nameArg("LV", args[0])
	if err != nil {
		return nil, err
	}
	ref := &Ref{Name: name}
	if len(args) == 2 {
		def, err := c.numberArg("LV", args[1])
		if err != nil {
			return nil, err
		}
		ref.Default = &def
	}
	return ref, nil
}

func buildIPC(c *compiler, args []parser.Expression) (Node, error) {
	return buildCPURatio(c, "IPC", IPC, args)
}

func buildCPI(c *compiler, args []parser.Expression) (Node, error) {
	return buildCPURatio(c, "CPI", CPI, args)
}

func buildCPURatio(c *compiler, fn string, ctor func(string, *float64) Node, args []parser.Expression) (Node, error) {
	base, err := c.nameArg(fn, args[0])
	if err != nil {
		return nil, err
	}
	var def *float64
	if len(args) == 2 {
		v, err := c.numberArg(fn, args[1])
		if err != nil {
			return nil, err
		}
		def = &v
	}
	return ctor(base, def), nil
}

func buildAccumulate(c *compiler, args []parser.Expression) (Node, error) {
	child, err := c.compileExpr(args[0])
	if err != nil {
		return nil, err
	}
	start := 0.0
	if len(args) == 2 {
		start, err = c.numberArg("Accumulate", args[1])
		if err != nil {
			return nil, err
		}
	}
	return Accumulate(child, start), nil
}

func buildDelta(c *compiler, args []parser.Expression) (Node, error) {
	child, err := c.compileExpr(args[0])
	if err != nil {
		return nil, err
	}
	return Delta(child), nil
}

func buildMean(ctor func(Node) Node) func(*compiler, []parser.Expression) (Node, error) {
	return func(c *compiler, args []parser.Expression) (Node, error) {
		child, err := c.compileExpr(args[0])
		if err != nil {
			return nil, err
		}
		return ctor(child), nil
	}
}

func buildSliding(ctor func(Node, int) Node) func(*compiler, []parser.Expression) (Node, error) {
	return func(c *compiler, args []parser.Expression) (Node, error) {
		child, err := c.compileExpr(args[0])
		if err != nil {
			return nil, err
		}
		length, err := c.lengthArg("sliding window", args[1])
		if err != nil {
			return nil, err
		}
		return ctor(child, length), nil
	}
}

func buildAggregate(ctor func(string) Node) func(*compiler, []parser.Expression) (Node, error) {
	return func(c *compiler, args []parser.Expression) (Node, error) {
		pattern, err := c.nameArg("aggregate", args[0])
		if err != nil {
			return nil, err
		}
		return ctor(pattern), nil
	}
}
