package primesieve

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hupe1980/primesieve/internal/backend"
)

// envLogLevel carries the parent's log level to worker processes.
const envLogLevel = "PRIMESIEVE_LOG_LEVEL"

// IsWorkerProcess reports whether the running program was started as a
// worker of BackendProcess.
func IsWorkerProcess() bool {
	return backend.IsChild()
}

// ServeWorker runs the segment assigned to this worker process and returns
// the exit status to pass to os.Exit. Worker logs go to standard error.
func ServeWorker() int {
	level := noopLevel
	if s := os.Getenv(envLogLevel); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			level = slog.LevelInfo
		}
	}
	logger := NewTextLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := backend.ServeChild(ctx, logger.Logger); err != nil {
		logger.ErrorContext(ctx, "worker failed", "error", err)
		return 1
	}
	return 0
}
