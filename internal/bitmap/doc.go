// Package bitmap provides the packed composite map shared by sieve workers.
//
// Layout:
//   - One bit per integer in [1, bound], packed into uint32 words
//   - Integer n lives in word (n-1)/32, bit (n-1)%32
//   - A clear bit means prime (or not yet known composite), a set bit composite
//
// The offset and the inverted encoding stay inside this package; callers use
// IsPrime and MarkComposite.
//
// Concurrency:
//   - Every word access is atomic (LoadUint32, OrUint32, AndUint32)
//   - Workers own disjoint integer ranges, but one word can straddle two
//     ranges; atomic Or keeps those shared words race-free without locks
//
// Storage comes from an Allocator, so the same Map can sit on the Go heap,
// an anonymous mapping or a shared-memory file visible to worker processes.
package bitmap
