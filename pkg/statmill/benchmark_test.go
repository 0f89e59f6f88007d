package statmill

import (
	"fmt"
	"testing"

	"github.com/statmill/statmill/pkg/statmill/dump"
)

// BenchmarkCompile benchmarks compiling a representative formula.
func BenchmarkCompile(b *testing.B) {
	formula := "Accumulate(IPC('system.cpu')) / SlidingAMean(LV('sim_seconds'), 10)"
	for i := 0; i < b.N; i++ {
		if _, err := Compile(formula); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEval benchmarks a single tick of a stateful formula.
func BenchmarkEval(b *testing.B) {
	node, err := Compile("Accumulate(IPC('system.cpu'))")
	if err != nil {
		b.Fatal(err)
	}
	s := dump.NewSnapshot([]dump.Entry{
		{Name: "system.cpu.committedInsts", Value: 1000},
		{Name: "system.cpu.numCycles", Value: 500},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := node.Eval(s); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAggregate benchmarks a glob aggregate over a wide snapshot.
func BenchmarkAggregate(b *testing.B) {
	entries := make([]dump.Entry, 0, 1024)
	for i := 0; i < 1024; i++ {
		entries = append(entries, dump.Entry{
			Name:  fmt.Sprintf("system.cpu%d.ipc", i),
			Value: float64(i),
		})
	}
	s := dump.NewSnapshot(entries)
	node := AggregateSum("system.cpu*.ipc")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := node.Eval(s); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkStreamScan benchmarks driving several queries over a pre-loaded
// stream.
func BenchmarkStreamScan(b *testing.B) {
	snaps := make([]*dump.Snapshot, 100)
	for i := range snaps {
		snaps[i] = dump.NewSnapshot([]dump.Entry{
			{Name: "system.cpu.committedInsts", Value: float64(1000 * (i + 1))},
			{Name: "system.cpu.numCycles", Value: float64(500 * (i + 1))},
		})
	}
	formulas := []string{
		"IPC('system.cpu')",
		"Accumulate(IPC('system.cpu'))",
		"Delta(LV('system.cpu.numCycles'))",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		queries := make([]*Query, len(formulas))
		for j, f := range formulas {
			q, err := CompileQuery("", f)
			if err != nil {
				b.Fatal(err)
			}
			queries[j] = q
		}
		stream := NewStream(dump.Snapshots(snaps...), queries...)
		for stream.Scan() {
		}
		if err := stream.Err(); err != nil {
			b.Fatal(err)
		}
	}
}
