package primesieve

import (
	"errors"
	"fmt"

	"github.com/hupe1980/primesieve/internal/backend"
	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/partition"
	"github.com/hupe1980/primesieve/resource"
)

var (
	// ErrInvalidConfig is returned when the bound or the worker count is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAllocation is returned when the bit map storage cannot be obtained.
	ErrAllocation = errors.New("bit map allocation failed")

	// ErrWorkerSpawn is returned when a worker could not be started.
	ErrWorkerSpawn = errors.New("worker spawn failed")

	// ErrWorkerJoin is returned when a worker terminated abnormally.
	ErrWorkerJoin = errors.New("worker terminated abnormally")
)

// ConfigError describes a rejected setting. It matches ErrInvalidConfig.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

func (e *ConfigError) Unwrap() error { return e.cause }

// WorkerError reports the failure of one worker. Op is "spawn" or "join"; it
// matches ErrWorkerSpawn or ErrWorkerJoin accordingly.
//
// The original underlying error can be accessed via errors.Unwrap.
type WorkerError struct {
	Op     string
	Worker int
	cause  error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d %s: %v", e.Worker, e.Op, e.cause)
}

func (e *WorkerError) Is(target error) bool {
	switch e.Op {
	case "spawn":
		return target == ErrWorkerSpawn
	case "join":
		return target == ErrWorkerJoin
	}
	return false
}

func (e *WorkerError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Worker lifecycle.
	var we *backend.WorkerError
	if errors.As(err, &we) {
		op := "join"
		if errors.Is(we.Kind, backend.ErrSpawn) {
			op = "spawn"
		}
		return &WorkerError{Op: op, Worker: we.Worker, cause: we.Err}
	}

	// Storage.
	if errors.Is(err, bitmap.ErrAllocation) {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	// Argument normalization.
	if errors.Is(err, partition.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return err
}
