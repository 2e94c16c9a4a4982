package backend

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/marker"
	"github.com/hupe1980/primesieve/internal/partition"
)

// MarkFunc is the signature of marker.Mark.
type MarkFunc func(ctx context.Context, m *bitmap.Map, seg partition.Segment, opts ...marker.Option) (marker.Stats, error)

// Goroutine runs every segment in its own goroutine.
type Goroutine struct {
	// Allocator provides map storage. Defaults to bitmap.AnonAllocator.
	Allocator bitmap.Allocator
	// Mark replaces marker.Mark; used by tests.
	Mark MarkFunc
}

// Name implements Backend.
func (g *Goroutine) Name() string { return "goroutine" }

// Alloc implements Backend.
func (g *Goroutine) Alloc(bound uint32, _ int) (*Shared, error) {
	alloc := g.Allocator
	if alloc == nil {
		alloc = bitmap.AnonAllocator
	}
	m, err := bitmap.New(bound, alloc)
	if err != nil {
		return nil, err
	}
	return &Shared{Map: m}, nil
}

// Run implements Backend.
func (g *Goroutine) Run(ctx context.Context, sh *Shared, job Job) ([]marker.Stats, error) {
	mark := g.Mark
	if mark == nil {
		mark = marker.Mark
	}

	stats := make([]marker.Stats, len(job.Plan))
	opts := job.markerOptions()
	logger := job.logger()

	grp, gctx := errgroup.WithContext(ctx)
	for i, seg := range job.Plan {
		grp.Go(func() (err error) {
			if err := job.acquireWorker(gctx, seg.ID); err != nil {
				return err
			}
			defer job.Resources.ReleaseWorker()

			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(gctx, "worker panicked",
						"worker", seg.ID,
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = &WorkerError{Worker: seg.ID, Kind: ErrJoin, Err: fmt.Errorf("panic: %v", r)}
				}
			}()

			start := time.Now()
			st, err := mark(gctx, sh.Map, seg, opts...)
			if err != nil {
				return err
			}
			st.Segment = seg
			st.Duration = time.Since(start)
			stats[i] = st
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
