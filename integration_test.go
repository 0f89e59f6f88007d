package main

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/statmill/statmill/pkg/statmill"
	"github.com/statmill/statmill/pkg/statmill/dump"
	"github.com/statmill/statmill/pkg/statmill/render"
)

// TestIntegrationSuite drives the full pipeline: a recorded statistics log
// through the dump reader, the formula compiler, the stream evaluator, and
// the render sinks.
func TestIntegrationSuite(t *testing.T) {
	t.Run("FileToText", testFileToText)
	t.Run("AggregatesAcrossCores", testAggregatesAcrossCores)
	t.Run("StatefulAcrossDumps", testStatefulAcrossDumps)
	t.Run("ErrorRowsKeepStreaming", testErrorRowsKeepStreaming)
	t.Run("SlicedReplay", testSlicedReplay)
	t.Run("ConcurrentStreams", testConcurrentStreams)
}

func openStats(t *testing.T) *dump.Reader {
	t.Helper()
	f, err := os.Open("testdata/stats.txt")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return dump.NewReader(f, "stats.txt")
}

func compile(t *testing.T, label, formula string) *statmill.Query {
	t.Helper()
	q, err := statmill.CompileQuery(label, formula)
	if err != nil {
		t.Fatalf("compile %q: %v", formula, err)
	}
	return q
}

func testFileToText(t *testing.T) {
	stream := statmill.NewStream(openStats(t),
		compile(t, "ipc", "IPC('system.cpu0')"),
		compile(t, "seconds", "LV('sim_seconds')"),
	)

	var buf bytes.Buffer
	w := render.NewDelimitedWriter(&buf, ":")

	for stream.Scan() {
		if err := w.WriteRows(stream.Rows()); err != nil {
			t.Fatal(err)
		}
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	expected := "2:0.001\n2:0.002\n3:0.003\n"
	if got := buf.String(); got != expected {
		t.Errorf("output mismatch:\n got %q\nwant %q", got, expected)
	}
}

func testAggregatesAcrossCores(t *testing.T) {
	stream := statmill.NewStream(openStats(t),
		compile(t, "avg_ipc", "Avg('system.cpu*.ipc')"),
		compile(t, "misses", "Sum('system.l2.overall_misses::*')"),
		compile(t, "cores", "Count('system.cpu*.ipc')"),
	)

	var avg, misses, cores []float64
	for stream.Scan() {
		rows := stream.Rows()
		for _, row := range rows {
			if row.Err != nil {
				t.Fatalf("tick %d query %s: %v", row.Tick, row.Label, row.Err)
			}
		}
		avg = append(avg, rows[0].Value)
		misses = append(misses, rows[1].Value)
		cores = append(cores, rows[2].Value)
	}
	if err := stream.Err(); err != nil {
		t.Fatal(err)
	}

	wantAvg := []float64{1.25, 1.5, 2.25}
	wantMisses := []float64{200, 400, 700}
	for i := range wantAvg {
		if avg[i] != wantAvg[i] {
			t.Errorf("avg_ipc[%d] = %g, want %g", i, avg[i], wantAvg[i])
		}
		if misses[i] != wantMisses[i] {
			t.Errorf("misses[%d] = %g, want %g", i, misses[i], wantMisses[i])
		}
		if cores[i] != 2 {
			t.Errorf("cores[%d] = %g, want 2", i, cores[i])
		}
	}
}

func testStatefulAcrossDumps(t *testing.T) {
	stream := statmill.NewStream(openStats(t),
		compile(t, "total_ipc", "Accumulate(IPC('system.cpu0'))"),
		compile(t, "dticks", "Delta(LV('sim_ticks'))"),
	)

	var total, dticks []float64
	for stream.Scan() {
		rows := stream.Rows()
		total = append(total, rows[0].Value)
		dticks = append(dticks, rows[1].Value)
	}
	if err := stream.Err(); err != nil {
		t.Fatal(err)
	}

	wantTotal := []float64{2, 4, 7}
	wantDticks := []float64{0, 1e9, 1e9}
	for i := range wantTotal {
		if total[i] != wantTotal[i] {
			t.Errorf("total_ipc[%d] = %g, want %g", i, total[i], wantTotal[i])
		}
		if dticks[i] != wantDticks[i] {
			t.Errorf("dticks[%d] = %g, want %g", i, dticks[i], wantDticks[i])
		}
	}
}

func testErrorRowsKeepStreaming(t *testing.T) {
	stream := statmill.NewStream(openStats(t),
		compile(t, "missing", "Sum('system.gpu*.busy')"),
		compile(t, "present", "LV('sim_seconds')"),
	)

	ticks := 0
	for stream.Scan() {
		rows := stream.Rows()
		if rows[0].Err == nil {
			t.Error("expected a no-match marker for the gpu pattern")
		}
		if rows[1].Err != nil {
			t.Errorf("healthy query failed: %v", rows[1].Err)
		}
		ticks++
	}
	if err := stream.Err(); err != nil {
		t.Fatal(err)
	}
	if ticks != 3 {
		t.Errorf("expected 3 ticks despite error rows, got %d", ticks)
	}
}

func testSlicedReplay(t *testing.T) {
	src := dump.Slice(openStats(t), 1, 0, 1)
	stream := statmill.NewStream(src, compile(t, "s", "LV('sim_seconds')"))

	var got []float64
	for stream.Scan() {
		got = append(got, stream.Rows()[0].Value)
	}
	if err := stream.Err(); err != nil {
		t.Fatal(err)
	}
	want := []float64{0.002, 0.003}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("sliced replay = %v, want %v", got, want)
	}
}

func testConcurrentStreams(t *testing.T) {
	// Independent streams with independently compiled queries share no
	// state and may run concurrently.
	var wg sync.WaitGroup
	results := make([][]float64, 8)
	streams := make([]*statmill.Stream, len(results))
	for i := range streams {
		streams[i] = statmill.NewStream(openStats(t),
			compile(t, "acc", "Accumulate(IPC('system.cpu0'))"),
		)
		streams[i].SetParallel(i%2 == 0)
	}

	for i, stream := range streams {
		wg.Add(1)
		go func(i int, stream *statmill.Stream) {
			defer wg.Done()
			for stream.Scan() {
				results[i] = append(results[i], stream.Rows()[0].Value)
			}
		}(i, stream)
	}
	wg.Wait()

	want := []float64{2, 4, 7}
	for i, got := range results {
		if len(got) != len(want) {
			t.Fatalf("stream %d: got %v, want %v", i, got, want)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("stream %d tick %d = %g, want %g", i, j, got[j], want[j])
			}
		}
	}
}
