// Package primesieve computes every prime up to a 32-bit bound with a
// parallel, bit-packed sieve of Eratosthenes.
//
// One bit per integer records whether it is known to be composite. A
// single-threaded base sieve strikes the multiples of 2 and 3 and the small
// composites below the square root of the bound; then the integer range is
// split into one contiguous segment per worker and every worker strikes, in
// its own segment, the multiples of the seed primes found by the base sieve.
//
// # Quick Start
//
//	ctx := context.Background()
//	res, err := primesieve.Run(ctx, 1_000_000, primesieve.WithWorkers(8))
//	if err != nil {
//	    return err
//	}
//	defer res.Close()
//
//	fmt.Println(res.Count()) // 78498
//	for p := range res.Primes() {
//	    fmt.Println(p)
//	}
//
// # Backends
//
// Workers run as goroutines by default. WithBackend(BackendProcess) runs every
// segment in a child process instead; the bit map then lives in a shared
// memory file that all children map. Programs using the process backend must
// dispatch worker invocations at the very top of main:
//
//	func main() {
//	    if primesieve.IsWorkerProcess() {
//	        os.Exit(primesieve.ServeWorker())
//	    }
//	    // ...
//	}
//
// # Concurrency
//
// Segments are disjoint, but adjacent segments can share one 32-bit word of
// the map. Every word update is an atomic OR, so workers never lock.
//
// # Errors
//
// Failures are reported through ErrInvalidConfig, ErrAllocation,
// ErrWorkerSpawn and ErrWorkerJoin (use errors.Is), or the context error when
// the run was cancelled. No partial result is returned.
package primesieve
