package primesieve

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// the promsieve package provides a ready-made adapter.
type MetricsCollector interface {
	// RecordBaseSieve is called once the base sieve has prepared the map.
	// words is the size of the map in 32-bit words.
	RecordBaseSieve(words int, duration time.Duration)

	// RecordWorker is called once per worker after all workers joined.
	RecordWorker(ws WorkerStats)

	// RecordRun is called after each run.
	// err is nil if successful.
	RecordRun(bound uint32, workers int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBaseSieve(int, time.Duration)          {}
func (NoopMetricsCollector) RecordWorker(WorkerStats)                    {}
func (NoopMetricsCollector) RecordRun(uint32, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
	RunTotalNanos    atomic.Int64
	BaseSieveCount   atomic.Int64
	BaseSieveNanos   atomic.Int64
	BaseSieveWords   atomic.Int64
	WorkerCount      atomic.Int64
	WorkerTotalNanos atomic.Int64
	SeedsWalked      atomic.Int64
	BitsMarked       atomic.Uint64
}

// RecordBaseSieve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBaseSieve(words int, duration time.Duration) {
	b.BaseSieveCount.Add(1)
	b.BaseSieveWords.Add(int64(words))
	b.BaseSieveNanos.Add(duration.Nanoseconds())
}

// RecordWorker implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWorker(ws WorkerStats) {
	b.WorkerCount.Add(1)
	b.WorkerTotalNanos.Add(ws.Duration.Nanoseconds())
	b.SeedsWalked.Add(int64(ws.Seeds))
	b.BitsMarked.Add(ws.Marked)
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ uint32, _ int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
		RunAvgNanos:       avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		BaseSieveAvgNanos: avg(b.BaseSieveNanos.Load(), b.BaseSieveCount.Load()),
		BaseSieveWords:    b.BaseSieveWords.Load(),
		WorkerCount:       b.WorkerCount.Load(),
		WorkerAvgNanos:    avg(b.WorkerTotalNanos.Load(), b.WorkerCount.Load()),
		SeedsWalked:       b.SeedsWalked.Load(),
		BitsMarked:        b.BitsMarked.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount          int64
	RunErrors         int64
	RunAvgNanos       int64
	BaseSieveAvgNanos int64
	BaseSieveWords    int64
	WorkerCount       int64
	WorkerAvgNanos    int64
	SeedsWalked       int64
	BitsMarked        uint64
}
