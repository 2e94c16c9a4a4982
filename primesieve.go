package primesieve

import (
	"context"
	"io"
	"iter"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/primesieve/internal/backend"
	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/marker"
	"github.com/hupe1980/primesieve/internal/partition"
	"github.com/hupe1980/primesieve/internal/presieve"
	"github.com/hupe1980/primesieve/resource"
)

// MaxBound is the largest supported bound.
const MaxBound = ^uint32(0)

// writeBufferSize is the chunk size of Result.WriteTo.
const writeBufferSize = 64 << 10

// WorkerStats describes the work done by one worker.
type WorkerStats struct {
	Worker int

	// Min and Max are the inclusive integer range of the worker's segment.
	// Both are zero when Empty.
	Min, Max uint64
	Empty    bool

	Seeds    int    // seed primes walked
	Marked   uint64 // bits flipped to composite
	Duration time.Duration
}

func newWorkerStats(st marker.Stats) WorkerStats {
	ws := WorkerStats{
		Worker:   st.Segment.ID,
		Empty:    st.Segment.Empty(),
		Seeds:    st.Seeds,
		Marked:   st.Marked,
		Duration: st.Duration,
	}
	if !ws.Empty {
		ws.Min, ws.Max = st.Segment.Min(), st.Segment.Max()
	}
	return ws
}

// Result is the sieved bit map of one run. It must be closed to release the
// map, and must not be used afterwards.
type Result struct {
	bound   uint32
	m       *bitmap.Map
	workers []WorkerStats
	elapsed time.Duration

	closeOnce sync.Once
	closeErr  error
	release   func() error
}

// Bound returns the inclusive upper bound of the run.
func (r *Result) Bound() uint32 { return r.bound }

// IsPrime reports whether n is prime. It is false for every n outside
// [2, Bound()].
func (r *Result) IsPrime(n uint32) bool {
	if n < 2 || n > r.bound {
		return false
	}
	return r.m.IsPrime(n)
}

// Count returns the number of primes in [2, Bound()].
func (r *Result) Count() int { return r.m.Count() }

// Primes yields the primes in [2, Bound()] in ascending order.
func (r *Result) Primes() iter.Seq[uint32] { return r.m.Primes() }

// WriteTo writes every prime in ascending order, one decimal number per line.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var n int64
	buf := make([]byte, 0, writeBufferSize)

	flush := func() error {
		k, err := w.Write(buf)
		n += int64(k)
		buf = buf[:0]
		return err
	}

	for p := range r.m.Primes() {
		buf = strconv.AppendUint(buf, uint64(p), 10)
		buf = append(buf, '\n')
		if len(buf) > writeBufferSize-16 {
			if err := flush(); err != nil {
				return n, err
			}
		}
	}
	if len(buf) > 0 {
		if err := flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Bitmap returns the primes as a compressed roaring bitmap.
func (r *Result) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	batch := make([]uint32, 0, 4096)
	for p := range r.m.Primes() {
		batch = append(batch, p)
		if len(batch) == cap(batch) {
			bm.AddMany(batch)
			batch = batch[:0]
		}
	}
	bm.AddMany(batch)
	bm.RunOptimize()
	return bm
}

// Workers returns the statistics of every worker, ordered by worker id.
func (r *Result) Workers() []WorkerStats { return slices.Clone(r.workers) }

// Elapsed returns the wall time of the run.
func (r *Result) Elapsed() time.Duration { return r.elapsed }

// Close releases the bit map. It is idempotent.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	r.closeOnce.Do(func() {
		r.closeErr = r.release()
	})
	return r.closeErr
}

// Run sieves [1, bound] with the configured number of workers and returns the
// resulting map. bound must be at least 2.
//
// On error no result is returned and every resource of the run is released.
func Run(ctx context.Context, bound uint32, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)

	start := time.Now()
	res, err := run(ctx, bound, &o)
	elapsed := time.Since(start)

	o.metricsCollector.RecordRun(bound, o.workers, elapsed, err)
	o.logger.LogRun(ctx, bound, o.workers, string(o.backend), elapsed, err)
	if err != nil {
		return nil, err
	}
	res.elapsed = elapsed
	return res, nil
}

func run(ctx context.Context, bound uint32, o *options) (*Result, error) {
	if o.workers < 1 {
		return nil, &ConfigError{Field: "workers", Value: o.workers, Reason: "must be at least 1"}
	}
	if bound < 2 {
		return nil, &ConfigError{Field: "bound", Value: bound, Reason: "must be at least 2"}
	}
	be, err := o.newBackend(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := partition.Plan(bound, o.workers)
	if err != nil {
		return nil, translateError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc := o.resources
	if rc == nil {
		rc = resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			MaxWorkers:       o.maxParallel,
		})
	}
	size := int64(bitmap.WordsFor(bound)) * 4
	if err := rc.AcquireMemory(size); err != nil {
		return nil, translateError(err)
	}

	sh, err := be.Alloc(bound, o.workers)
	if err != nil {
		rc.ReleaseMemory(size)
		return nil, translateError(err)
	}
	release := func() error {
		defer rc.ReleaseMemory(size)
		return sh.Close()
	}

	logger := o.logger.WithBound(bound)

	t := time.Now()
	presieve.Run(sh.Map)
	d := time.Since(t)
	o.metricsCollector.RecordBaseSieve(sh.Map.Len(), d)
	logger.LogBaseSieve(ctx, sh.Map.Len(), d)

	stats, err := be.Run(ctx, sh, backend.Job{
		Plan:             plan,
		Logger:           logger.Logger,
		Resources:        rc,
		ProgressInterval: o.progressInterval,
	})
	if err != nil {
		_ = release()
		return nil, translateError(err)
	}

	workers := make([]WorkerStats, len(stats))
	for i, st := range stats {
		workers[i] = newWorkerStats(st)
		o.metricsCollector.RecordWorker(workers[i])
		logger.LogWorker(ctx, workers[i])
	}

	return &Result{
		bound:   bound,
		m:       sh.Map,
		workers: workers,
		release: release,
	}, nil
}

func (o *options) newBackend(ctx context.Context) (backend.Backend, error) {
	if o.impl != nil {
		return o.impl, nil
	}
	switch o.backend {
	case BackendGoroutine:
		return &backend.Goroutine{}, nil
	case BackendProcess:
		return &backend.Process{
			Path: o.processPath,
			Args: o.processArgs,
			Env:  []string{envLogLevel + "=" + o.logger.minLevel(ctx).String()},
		}, nil
	}
	return nil, &ConfigError{Field: "backend", Value: o.backend, Reason: "must be goroutine or process"}
}
