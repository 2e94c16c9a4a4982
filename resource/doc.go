// Package resource implements the Controller for sieve resource limits.
//
// The Controller manages two resource types:
//
//   - Memory: Track and limit composite-map storage (non-blocking, fail-fast)
//   - Workers: Cap how many sieve workers run at the same time
//
// # Architecture
//
//	┌───────────────────────────────────────────┐
//	│                Controller                 │
//	├─────────────────────┬─────────────────────┤
//	│  Memory Limit       │  Worker Slots       │
//	│  (fail-fast)        │  (semaphore)        │
//	├─────────────────────┼─────────────────────┤
//	│  AcquireMemory      │  AcquireWorker      │
//	│  ReleaseMemory      │  TryAcquireWorker   │
//	│  MemoryUsage        │  ReleaseWorker      │
//	└─────────────────────┴─────────────────────┘
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(mapBytes); err != nil {
//	    // ErrMemoryLimitExceeded - the run cannot start
//	}
//	defer rc.ReleaseMemory(mapBytes)
//
// # Worker Slots
//
// Every segment still gets its own worker; the slot count only limits how
// many of them execute at once:
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
