package statmill

import (
	"fmt"
	"strings"
)

// CompileError reports a formula that could not be compiled into a node
// tree: malformed syntax, an unknown constructor, wrong arity, or an
// argument of the wrong kind. It is returned synchronously by Compile and
// never appears as a per-tick row marker.
type CompileError struct {
	Formula string
	Msg     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %s", e.Formula, e.Msg)
}

func compileErrorf(formula, format string, args ...interface{}) *CompileError {
	return &CompileError{Formula: formula, Msg: fmt.Sprintf(format, args...)}
}

func parseErrors(formula string, msgs []string) *CompileError {
	return &CompileError{Formula: formula, Msg: strings.Join(msgs, "; ")}
}

// NoMatchError reports an aggregate pattern that matched no counters in the
// current snapshot. It is distinct from a zero-valued result: an aggregate
// over nothing is an error marker, never 0.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("pattern %q matched no counters", e.Pattern)
}
