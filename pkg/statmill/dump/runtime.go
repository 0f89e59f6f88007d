package dump

import (
	"context"
	"runtime"
	"time"
)

// RuntimeSource samples the host process's Go runtime counters into
// snapshots at a fixed interval, exposing them under dotted names such as
// heap.alloc, goroutines.count and gc.pause_total_ns. It gives the query
// engine a live stream to evaluate against, with the same shape as a
// recorded statistics log.
//
// Next blocks until the next sampling interval, or returns the context's
// error once the context is cancelled. The first call samples immediately.
type RuntimeSource struct {
	ctx      context.Context
	interval time.Duration
	ticker   *time.Ticker
}

func NewRuntimeSource(ctx context.Context, interval time.Duration) *RuntimeSource {
	if interval <= 0 {
		interval = time.Second
	}
	return &RuntimeSource{ctx: ctx, interval: interval}
}

func (r *RuntimeSource) Next() (*Snapshot, error) {
	if r.ticker == nil {
		r.ticker = time.NewTicker(r.interval)
		return sampleRuntime(), nil
	}

	select {
	case <-r.ctx.Done():
		r.ticker.Stop()
		return nil, r.ctx.Err()
	case <-r.ticker.C:
		return sampleRuntime(), nil
	}
}

func sampleRuntime() *Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return NewSnapshot([]Entry{
		{"heap.alloc", float64(m.HeapAlloc)},
		{"heap.sys", float64(m.HeapSys)},
		{"heap.idle", float64(m.HeapIdle)},
		{"heap.inuse", float64(m.HeapInuse)},
		{"heap.released", float64(m.HeapReleased)},
		{"heap.objects", float64(m.HeapObjects)},
		{"stack.inuse", float64(m.StackInuse)},
		{"stack.sys", float64(m.StackSys)},
		{"sys.total", float64(m.Sys)},
		{"alloc.total", float64(m.TotalAlloc)},
		{"alloc.mallocs", float64(m.Mallocs)},
		{"alloc.frees", float64(m.Frees)},
		{"gc.num", float64(m.NumGC)},
		{"gc.num_forced", float64(m.NumForcedGC)},
		{"gc.pause_total_ns", float64(m.PauseTotalNs)},
		{"gc.cpu_fraction", m.GCCPUFraction},
		{"gc.next", float64(m.NextGC)},
		{"goroutines.count", float64(runtime.NumGoroutine())},
		{"cgo.calls", float64(runtime.NumCgoCall())},
	})
}
