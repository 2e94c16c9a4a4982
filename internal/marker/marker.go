package marker

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/partition"
	"github.com/hupe1980/primesieve/internal/presieve"
)

// firstFactor is the smallest cofactor struck; multiples of 2 and 3 are
// already marked by the base sieve.
const firstFactor = 5

// Stats describes the work done by one worker.
type Stats struct {
	Segment partition.Segment

	// Seeds is the number of seed primes walked.
	Seeds int

	// Marked is the number of bits this worker flipped to composite.
	Marked uint64

	// Duration is the wall time spent in Mark.
	Duration time.Duration
}

type config struct {
	logger   *slog.Logger
	progress time.Duration
}

// Option configures Mark.
type Option func(*config)

// WithLogger sets the logger used for progress reports.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgressInterval sets the minimum interval between progress reports.
func WithProgressInterval(d time.Duration) Option {
	return func(c *config) {
		c.progress = d
	}
}

// Mark strikes the composites of seg whose smallest prime factor is at least 5.
// m must have been prepared by presieve.Run.
func Mark(ctx context.Context, m *bitmap.Map, seg partition.Segment, opts ...Option) (Stats, error) {
	cfg := config{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	st := Stats{Segment: seg}
	if seg.Empty() {
		return st, nil
	}

	lo := seg.Min()
	hi := min(seg.Max(), uint64(m.Bound()))
	limit := presieve.Sqrt(m.Bound())
	progress := rate.Sometimes{Interval: cfg.progress}

	for p := m.NextPrime(3, limit); p != 0; p = m.NextPrime(p, limit) {
		if err := ctx.Err(); err != nil {
			st.Duration = time.Since(start)
			return st, err
		}
		st.Seeds++

		step := uint64(p)
		k := max(firstFactor, (lo+step-1)/step)
		if k%2 == 0 {
			k++ // p*k would be even
		}
		for x := step * k; x <= hi; x += 2 * step {
			if m.IsPrime(uint32(x)) {
				m.MarkComposite(uint32(x))
				st.Marked++
			}
		}

		progress.Do(func() {
			cfg.logger.DebugContext(ctx, "marking segment",
				"worker", seg.ID,
				"prime", p,
				"limit", limit,
				"marked", st.Marked,
			)
		})
	}

	st.Duration = time.Since(start)
	return st, nil
}
