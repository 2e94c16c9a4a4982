// Package promsieve exports sieve metrics to Prometheus.
//
// A Collector implements primesieve.MetricsCollector on its own registry, so
// it can be served over HTTP with promhttp.HandlerFor or flushed to a
// node_exporter textfile after a batch run:
//
//	c := promsieve.New("")
//	res, err := primesieve.Run(ctx, bound, primesieve.WithMetricsCollector(c))
//	// ...
//	_ = c.WriteToTextfile("/var/lib/node_exporter/primes.prom")
package promsieve

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/primesieve"
)

// DefaultNamespace prefixes every metric name when New is given "".
const DefaultNamespace = "primesieve"

var _ primesieve.MetricsCollector = (*Collector)(nil)

// Collector records sieve runs as Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	baseSieve     prometheus.Histogram
	mapWords      prometheus.Gauge
	workerLatency prometheus.Histogram
	seeds         prometheus.Counter
	marked        prometheus.Counter
	bound         prometheus.Gauge
	workers       prometheus.Gauge
}

// New creates a Collector whose metrics live in namespace.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total sieve runs",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of sieve runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
		baseSieve: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "base_sieve_duration_seconds",
			Help:      "Time spent in the single-threaded base sieve",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		mapWords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_words",
			Help:      "Size of the last composite map in 32-bit words",
		}),
		workerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_duration_seconds",
			Help:      "Time each worker spent marking its segment",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		seeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_primes_walked_total",
			Help:      "Seed primes walked by all workers",
		}),
		marked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "composites_marked_total",
			Help:      "Bits flipped to composite by all workers",
		}),
		bound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_bound",
			Help:      "Bound of the last run",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_workers",
			Help:      "Worker count of the last run",
		}),
	}

	c.registry.MustRegister(
		c.runs,
		c.runDuration,
		c.baseSieve,
		c.mapWords,
		c.workerLatency,
		c.seeds,
		c.marked,
		c.bound,
		c.workers,
	)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordBaseSieve implements primesieve.MetricsCollector.
func (c *Collector) RecordBaseSieve(words int, d time.Duration) {
	c.baseSieve.Observe(d.Seconds())
	c.mapWords.Set(float64(words))
}

// RecordWorker implements primesieve.MetricsCollector.
func (c *Collector) RecordWorker(ws primesieve.WorkerStats) {
	c.workerLatency.Observe(ws.Duration.Seconds())
	c.seeds.Add(float64(ws.Seeds))
	c.marked.Add(float64(ws.Marked))
}

// RecordRun implements primesieve.MetricsCollector.
func (c *Collector) RecordRun(bound uint32, workers int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(status).Inc()
	c.runDuration.WithLabelValues(status).Observe(d.Seconds())
	c.bound.Set(float64(bound))
	c.workers.Set(float64(workers))
}

// WriteToTextfile writes the current metrics in the text exposition format,
// atomically replacing path.
func (c *Collector) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
