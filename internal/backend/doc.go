// Package backend runs the parallel phase of the sieve.
//
// A Backend provides the shared composite map and executes one unit of work
// per partition segment, then joins them all:
//
//   - Goroutine: the map lives in an anonymous mapping; each segment runs in
//     its own goroutine under an errgroup. Panics are recovered and reported
//     as join failures.
//   - Process: the map lives in a named shared-memory file; each segment runs
//     in a re-executed copy of the current binary that maps the same file.
//     Per-worker statistics travel back through slots behind the map.
//
// Both return the same *Shared handle, which is the only way workers reach
// the map. Shared.Close releases the storage (and unlinks the file) on every
// exit path.
//
// A binary that uses the Process backend must call ServeChild early in main
// when IsChild reports true.
package backend
