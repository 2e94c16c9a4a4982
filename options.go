package primesieve

import (
	"log/slog"
	"time"

	"github.com/hupe1980/primesieve/internal/backend"
	"github.com/hupe1980/primesieve/resource"
)

// Backend selects how workers are executed.
type Backend string

const (
	// BackendGoroutine runs every worker as a goroutine of the calling process.
	BackendGoroutine Backend = "goroutine"
	// BackendProcess runs every worker as a child process sharing the bit map
	// through a shared-memory file.
	BackendProcess Backend = "process"
)

// ParseBackend returns the Backend named s.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendGoroutine, BackendProcess:
		return b, nil
	}
	return "", &ConfigError{Field: "backend", Value: s, Reason: "must be goroutine or process"}
}

type options struct {
	workers          int
	backend          Backend
	processPath      string
	processArgs      []string
	metricsCollector MetricsCollector
	logger           *Logger
	memoryLimit      int64
	maxParallel      int64
	resources        *resource.Controller
	progressInterval time.Duration

	// impl overrides backend; set by tests.
	impl backend.Backend
}

// Option configures a sieve run.
type Option func(*options)

// WithWorkers sets the number of workers, and therefore segments.
// Defaults to 1. Values below 1 make Run fail with ErrInvalidConfig.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBackend selects the worker backend. Defaults to BackendGoroutine.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithProcessCommand sets the executable and arguments used for worker
// processes of BackendProcess. Defaults to the running executable without
// arguments. The command must call ServeWorker when IsWorkerProcess reports
// true.
func WithProcessCommand(path string, args ...string) Option {
	return func(o *options) {
		o.processPath = path
		o.processArgs = args
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &primesieve.BasicMetricsCollector{}
//	res, _ := primesieve.Run(ctx, bound, primesieve.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Marked: %d, Avg worker: %dns\n", stats.BitsMarked, stats.WorkerAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := primesieve.NewJSONLogger(slog.LevelInfo)
//	res, _ := primesieve.Run(ctx, bound, primesieve.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryLimit caps the bytes the bit map may occupy. A run whose map
// would exceed the limit fails with ErrAllocation before anything is mapped.
// Ignored when WithResourceController is used.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxParallelWorkers caps how many workers execute at the same time.
// Every segment still gets its own worker. Ignored when
// WithResourceController is used.
func WithMaxParallelWorkers(n int64) Option {
	return func(o *options) {
		o.maxParallel = n
	}
}

// WithResourceController shares one resource.Controller across runs, so
// concurrent runs draw from a common memory budget and worker pool.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithProgressInterval sets the minimum interval between the debug-level
// progress reports of each worker. Defaults to five seconds.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers:          1,
		backend:          BackendGoroutine,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
