// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between signed/unsigned and different bit-width integer types.
//
// Use cases:
//   - Validating untrusted input (CLI flags, environment handed to worker processes)
//   - Converting between Go's int (platform-dependent) and the fixed-width sieve domain
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices below the sieve bound), use direct type casts instead to avoid overhead.
package conv
