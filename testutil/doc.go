// Package testutil provides testing utilities for primesieve.
//
// This package is intended for use in tests and benchmarks only.
// It provides independent ground truth for sieve results: a plain byte-slice
// sieve and trial division, neither of which shares code with the engine.
//
// # Ground Truth
//
//	want := testutil.ReferencePrimes(1000)     // ascending primes <= 1000
//	ok := testutil.IsPrime(65537)              // trial division
//
// # Comparison
//
//	missing, extra := testutil.Diff(got, want)
package testutil
