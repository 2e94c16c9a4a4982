// Package mmap provides read-write memory mappings for sieve storage.
//
// # Overview
//
// The composite map of a large sieve is hundreds of megabytes. Mapping it
// outside the Go heap keeps it away from the garbage collector and turns an
// allocation failure into an error instead of a fatal runtime abort.
//
// # Usage
//
//	// Private, zero-filled memory for in-process workers.
//	m, err := mmap.MapAnon(size)
//	if err != nil { ... }
//	defer m.Close()
//
//	// Named memory visible to worker processes.
//	m, err := mmap.CreateShared(filepath.Join(mmap.SharedDir(), "sieve-123"), size)
//	defer m.Close() // unmaps and unlinks
//
//	// In the worker process:
//	w, err := mmap.OpenShared(path)
//	defer w.Close() // unmaps only
//
//	words := m.Uint32s()
//	trailer, _ := m.Region(offset, n)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE or MAP_SHARED.
//     SharedDir prefers /dev/shm so the file never touches a disk.
//   - Windows: VirtualAlloc for anonymous memory, CreateFileMapping/MapViewOfFile
//     for shared files.
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutines access Bytes() or Uint32s() after Close() returns.
package mmap
