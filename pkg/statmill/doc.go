// Package statmill provides a query engine for streams of hierarchical
// performance-counter snapshots, such as the statistics dumps a gem5
// simulation appends to m5out/stats.txt. A textual formula compiles into a
// tree of evaluation nodes that is driven once per snapshot, producing one
// derived value per tick.
//
// # Quick Start
//
//	q, err := statmill.CompileQuery("ipc", "IPC('system.cpu')")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	f, _ := os.Open("m5out/stats.txt")
//	st := statmill.NewStream(dump.NewReader(f, "stats.txt"), q)
//	for st.Scan() {
//		for _, row := range st.Rows() {
//			fmt.Println(row.Tick, row.Label, row.Value)
//		}
//	}
//
// # Formula Language
//
// Formulas are arithmetic expressions over counter references and named
// constructors:
//
//	system.cpu0.ipc + system.cpu1.ipc
//	LV('host_seconds') / LV('sim_seconds')
//	Accumulate(IPC('system.cpu'))
//	SlidingAMean(Delta('sim_insts'), 10)
//	Sum('system.cpu*.numCycles') / Count('system.cpu*.numCycles')
//
// Dotted identifiers and quoted strings both name counters; quoted
// arguments to Sum/Avg/Min/Max/Count may contain glob wildcards. The
// operators + - * / and unary minus combine sub-expressions with
// conventional precedence.
//
// Compilation is sandboxed by construction: formulas resolve against a
// closed constructor registry, so no file access, host-language evaluation,
// or other side effect is reachable from formula text. Compiling never
// reads a snapshot; counter names resolve each tick.
//
// # Stateful Constructors
//
// Accumulate, Delta, the running means and the Sliding* family carry state
// from tick to tick, which makes results order-dependent: a stream is
// evaluated strictly sequentially and every query sees every tick. Reset on
// a query (or Stream.Reset for all of them) restores the state a freshly
// compiled tree would have, so measurement can be restarted mid-stream.
//
// # Error Policy
//
// Compile failures are synchronous (*CompileError). A missing counter or an
// aggregate pattern with no matches marks that one (tick, query) row with
// an error and the stream continues. Division by zero is not an error: it
// yields the IEEE-754 result (±Inf or NaN) so downstream consumers can
// distinguish a degenerate value from a failed evaluation.
//
// Subpackages: parser holds the formula lexer and Pratt parser, dump the
// snapshot model and log readers, render the delimited/table/plot sinks,
// and dashboard a WebSocket live view.
package statmill
