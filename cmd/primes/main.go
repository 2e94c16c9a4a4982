// Command primes prints every prime up to a bound, computed by a parallel
// sieve of Eratosthenes.
//
//	primes [-qv] [-m max_prime] [-c concurrency]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hupe1980/primesieve"
	"github.com/hupe1980/primesieve/internal/conv"
	"github.com/hupe1980/primesieve/promsieve"
)

func main() {
	if primesieve.IsWorkerProcess() {
		os.Exit(primesieve.ServeWorker())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

var options = [][2]string{
	{"-q", "don't print prime numbers"},
	{"-v", "verbose: print timing and count"},
	{"-m", "maximum size of the prime number"},
	{"-c", "concurrency to use"},
	{"-backend", "goroutine (default) or process"},
	{"-log-level", "debug, info, warn or error"},
	{"-log-json", "log as JSON"},
	{"-mem-limit", "maximum bit map size in bytes"},
	{"-metrics-file", "write Prometheus metrics to this file"},
}

func usage(w io.Writer) {
	fmt.Fprint(w, "Usage:\n  primes [-qv] [-m max_prime] [-c concurrency]\n\nOptions:\n")
	for _, o := range options {
		fmt.Fprintf(w, "  %-14s%s\n", o[0], o[1])
	}
}

// errUsage reports a command line that the flag set already rejected or a
// request for help; usage has been printed either way.
var errUsage = errors.New("invalid usage")

type config struct {
	bound       uint32
	workers     int
	quiet       bool
	verbose     bool
	backend     primesieve.Backend
	logger      *primesieve.Logger
	memLimit    int64
	metricsFile string
}

func parseFlags(args []string, stdout, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("primes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stdout) }

	var (
		bound       = fs.Uint64("m", uint64(primesieve.MaxBound), "maximum size of the prime number")
		workers     = fs.Int("c", 1, "concurrency to use")
		quiet       = fs.Bool("q", false, "don't print prime numbers")
		verbose     = fs.Bool("v", false, "verbose: print timing and count")
		backend     = fs.String("backend", string(primesieve.BackendGoroutine), "goroutine or process")
		logLevel    = fs.String("log-level", "", "debug, info, warn or error")
		logJSON     = fs.Bool("log-json", false, "log as JSON")
		memLimit    = fs.Int64("mem-limit", 0, "maximum bit map size in bytes")
		metricsFile = fs.String("metrics-file", "", "write Prometheus metrics to this file")
	)
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}

	m, err := conv.Uint64ToUint32(*bound)
	if err != nil {
		return nil, fmt.Errorf("-m: %w", err)
	}
	if _, err := conv.Int64ToUint64(*memLimit); err != nil {
		return nil, fmt.Errorf("-mem-limit: %w", err)
	}
	b, err := primesieve.ParseBackend(*backend)
	if err != nil {
		return nil, err
	}

	cfg := &config{
		bound:       m,
		workers:     *workers,
		quiet:       *quiet,
		verbose:     *verbose,
		backend:     b,
		logger:      primesieve.NoopLogger(),
		memLimit:    *memLimit,
		metricsFile: *metricsFile,
	}

	if *logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
			return nil, fmt.Errorf("-log-level: %w", err)
		}
		opts := &slog.HandlerOptions{Level: level}
		if *logJSON {
			cfg.logger = primesieve.NewLogger(slog.NewJSONHandler(stderr, opts))
		} else {
			cfg.logger = primesieve.NewLogger(slog.NewTextHandler(stderr, opts))
		}
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stdout, stderr)
	if errors.Is(err, errUsage) {
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "primes: %v\n", err)
		return 1
	}

	start := time.Now()
	count, err := sieve(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "primes: %v\n", err)
		return 1
	}

	if cfg.verbose {
		fmt.Fprintf(stdout, "Number of primes is %d.\n", count)
		fmt.Fprintf(stdout, "%.f seconds.\n", time.Since(start).Seconds())
	}
	return 0
}

// sieve runs the sieve, prints the primes unless quiet and returns their count.
func sieve(ctx context.Context, cfg *config, stdout, stderr io.Writer) (int, error) {
	if cfg.workers < 1 {
		return 0, &primesieve.ConfigError{Field: "workers", Value: cfg.workers, Reason: "must be at least 1"}
	}
	// Nothing is prime below 2.
	if cfg.bound < 2 {
		return 0, nil
	}

	opts := []primesieve.Option{
		primesieve.WithWorkers(cfg.workers),
		primesieve.WithBackend(cfg.backend),
		primesieve.WithLogger(cfg.logger),
		primesieve.WithMemoryLimit(cfg.memLimit),
	}
	var collector *promsieve.Collector
	if cfg.metricsFile != "" {
		collector = promsieve.New("")
		opts = append(opts, primesieve.WithMetricsCollector(collector))
	}

	res, err := primesieve.Run(ctx, cfg.bound, opts...)
	if collector != nil {
		if werr := collector.WriteToTextfile(cfg.metricsFile); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	if err != nil {
		return 0, err
	}
	defer res.Close()

	if cfg.verbose {
		for _, ws := range res.Workers() {
			fmt.Fprintf(stderr, "worker %d   min: %s  max: %s  seeds: %d   work: %d\n",
				ws.Worker, segmentEnd(ws, ws.Min), segmentEnd(ws, ws.Max), ws.Seeds, ws.Marked)
		}
	}

	if !cfg.quiet {
		if _, err := res.WriteTo(stdout); err != nil {
			return 0, err
		}
	}
	return res.Count(), nil
}

func segmentEnd(ws primesieve.WorkerStats, v uint64) string {
	if ws.Empty {
		return "-"
	}
	return strconv.FormatUint(v, 10)
}
