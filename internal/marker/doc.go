// Package marker implements the per-worker phase of the segmented sieve.
//
// Mark walks the seed primes 5 <= p <= sqrt(bound) from the oracle left by
// the base sieve and strikes every odd multiple p*k (k >= 5) that falls
// inside the worker's segment. A worker only ever writes integers of its own
// segment; words shared with a neighbouring segment are updated atomically by
// the bitmap package.
//
// Cancellation is cooperative: the context is checked between seed primes.
package marker
