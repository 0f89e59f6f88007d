package dump

import (
	"context"
	"io"
)

// Snapshots returns a Source that replays the given snapshots in order.
// It is primarily useful in tests and for pre-loaded streams.
func Snapshots(snaps ...*Snapshot) Source {
	return &sliceSource{snaps: snaps}
}

type sliceSource struct {
	snaps []*Snapshot
	pos   int
}

func (s *sliceSource) Next() (*Snapshot, error) {
	if s.pos >= len(s.snaps) {
		return nil, io.EOF
	}
	snap := s.snaps[s.pos]
	s.pos++
	return snap, nil
}

// Slice wraps a source with array-slice pacing: skip the first start
// snapshots, stop after emitting at most stop snapshots (0 means unlimited),
// and emit every step-th snapshot. step values below 1 are treated as 1.
func Slice(src Source, start, stop, step int) Source {
	if step < 1 {
		step = 1
	}
	return &slicedSource{src: src, start: start, stop: stop, step: step}
}

type slicedSource struct {
	src     Source
	start   int
	stop    int
	step    int
	skipped bool
	emitted int
}

func (s *slicedSource) Next() (*Snapshot, error) {
	if !s.skipped {
		for i := 0; i < s.start; i++ {
			if _, err := s.src.Next(); err != nil {
				return nil, err
			}
		}
		s.skipped = true
	}

	if s.stop > 0 && s.emitted >= s.stop {
		return nil, io.EOF
	}

	snap, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	// Discard the snapshots between strides.
	for i := 1; i < s.step; i++ {
		if _, err := s.src.Next(); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}
	s.emitted++
	return snap, nil
}

// WithContext wraps a source so that Next fails with the context's error
// once the context is cancelled. The underlying source is not read past
// cancellation.
func WithContext(ctx context.Context, src Source) Source {
	return &ctxSource{ctx: ctx, src: src}
}

type ctxSource struct {
	ctx context.Context
	src Source
}

func (c *ctxSource) Next() (*Snapshot, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}
	return c.src.Next()
}
