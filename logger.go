package primesieve

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with sieve-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// noopLevel is above every level a handler is asked about.
const noopLevel = slog.Level(1000)

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: noopLevel,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithWorker adds a worker field to the logger.
func (l *Logger) WithWorker(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("worker", id),
	}
}

// WithBound adds a bound field to the logger.
func (l *Logger) WithBound(bound uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("bound", bound),
	}
}

// minLevel returns the lowest standard level the handler accepts, or
// noopLevel when it accepts none.
func (l *Logger) minLevel(ctx context.Context) slog.Level {
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(ctx, lvl) {
			return lvl
		}
	}
	return noopLevel
}

// LogBaseSieve logs the completion of the single-threaded base sieve.
func (l *Logger) LogBaseSieve(ctx context.Context, words int, duration time.Duration) {
	l.DebugContext(ctx, "base sieve completed",
		"words", words,
		"duration", duration,
	)
}

// LogWorker logs the outcome of one worker.
func (l *Logger) LogWorker(ctx context.Context, ws WorkerStats) {
	if ws.Empty {
		l.DebugContext(ctx, "worker completed",
			"worker", ws.Worker,
			"segment", "empty",
		)
		return
	}
	l.DebugContext(ctx, "worker completed",
		"worker", ws.Worker,
		"min", ws.Min,
		"max", ws.Max,
		"seeds", ws.Seeds,
		"marked", ws.Marked,
		"duration", ws.Duration,
	)
}

// LogRun logs a complete sieve run.
func (l *Logger) LogRun(ctx context.Context, bound uint32, workers int, backend string, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sieve failed",
			"bound", bound,
			"workers", workers,
			"backend", backend,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sieve completed",
			"bound", bound,
			"workers", workers,
			"backend", backend,
			"elapsed", elapsed,
		)
	}
}
