package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/marker"
	"github.com/hupe1980/primesieve/internal/mmap"
	"github.com/hupe1980/primesieve/internal/partition"
	"github.com/hupe1980/primesieve/resource"
)

var (
	// ErrSpawn is returned when a worker could not be started.
	ErrSpawn = errors.New("backend: worker spawn failed")
	// ErrJoin is returned when a worker terminated abnormally.
	ErrJoin = errors.New("backend: worker terminated abnormally")
)

// WorkerError reports the failure of a single worker.
// errors.Is matches both Kind (ErrSpawn or ErrJoin) and the cause.
type WorkerError struct {
	Worker int
	Kind   error
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v: %v", e.Worker, e.Kind, e.Err)
}

func (e *WorkerError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Shared is the storage handed to every worker of one run.
type Shared struct {
	Map *bitmap.Map

	// Process backend only.
	mapping *mmap.Mapping
	workers int
}

// Path returns the shared-memory file backing the map, or "" when the map is
// not shared across processes.
func (s *Shared) Path() string {
	if s.mapping == nil {
		return ""
	}
	return s.mapping.Path()
}

// Close releases the map storage. It is idempotent.
func (s *Shared) Close() error {
	return s.Map.Close()
}

// Job describes the parallel phase of one run.
type Job struct {
	Plan             []partition.Segment
	Logger           *slog.Logger
	Resources        *resource.Controller
	ProgressInterval time.Duration
}

func (j Job) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return j.Logger
}

func (j Job) markerOptions() []marker.Option {
	opts := []marker.Option{marker.WithLogger(j.logger())}
	if j.ProgressInterval > 0 {
		opts = append(opts, marker.WithProgressInterval(j.ProgressInterval))
	}
	return opts
}

// acquireWorker reserves a worker slot for worker id, logging when it has to wait.
func (j Job) acquireWorker(ctx context.Context, id int) error {
	if j.Resources.TryAcquireWorker() {
		return nil
	}
	j.logger().DebugContext(ctx, "waiting for worker slot",
		"worker", id,
		"running", j.Resources.RunningWorkers(),
	)
	return j.Resources.AcquireWorker(ctx)
}

// Backend realizes "spawn one worker per segment, join them all".
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Alloc reserves a zeroed map for [1, bound] shared by workers.
	Alloc(bound uint32, workers int) (*Shared, error)
	// Run executes job.Plan against sh and blocks until every worker is done.
	// Stats are ordered like job.Plan.
	Run(ctx context.Context, sh *Shared, job Job) ([]marker.Stats, error)
}
