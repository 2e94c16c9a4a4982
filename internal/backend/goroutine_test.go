package backend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/marker"
	"github.com/hupe1980/primesieve/internal/partition"
	"github.com/hupe1980/primesieve/internal/presieve"
	"github.com/hupe1980/primesieve/resource"
	"github.com/hupe1980/primesieve/testutil"
)

func runBackend(t *testing.T, b Backend, bound uint32, workers int, rc *resource.Controller) (*Shared, []marker.Stats, error) {
	t.Helper()

	sh, err := b.Alloc(bound, workers)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sh.Close() })

	presieve.Run(sh.Map)

	plan, err := partition.Plan(bound, workers)
	require.NoError(t, err)

	stats, err := b.Run(t.Context(), sh, Job{Plan: plan, Resources: rc})
	return sh, stats, err
}

func TestGoroutine_Correct(t *testing.T) {
	const bound = 500_000
	want := testutil.ReferencePrimes(bound)

	for _, workers := range []int{1, 2, 3, 7} {
		sh, stats, err := runBackend(t, &Goroutine{}, bound, workers, nil)
		require.NoError(t, err)
		require.Len(t, stats, workers)

		assert.Equal(t, want, slices.Collect(sh.Map.Primes()), "workers %d", workers)
		assert.Empty(t, sh.Path())
		for i, st := range stats {
			assert.Equal(t, i, st.Segment.ID)
			assert.Positive(t, st.Seeds)
		}
	}
}

func TestGoroutine_WorkerSlots(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxWorkers: 1})

	sh, stats, err := runBackend(t, &Goroutine{Allocator: bitmap.HeapAllocator}, 100_000, 8, rc)
	require.NoError(t, err)
	assert.Len(t, stats, 8)
	assert.Equal(t, 9592, sh.Map.Count())
	assert.Zero(t, rc.RunningWorkers())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestGoroutine_WaitsForBusySlot(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxWorkers: 1})
	require.True(t, rc.TryAcquireWorker())

	const bound = 10_000
	b := &Goroutine{Allocator: bitmap.HeapAllocator}
	sh, err := b.Alloc(bound, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sh.Close() })
	presieve.Run(sh.Map)

	plan, err := partition.Plan(bound, 2)
	require.NoError(t, err)

	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	done := make(chan error, 1)
	go func() {
		_, err := b.Run(t.Context(), sh, Job{Plan: plan, Logger: logger, Resources: rc})
		done <- err
	}()

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "waiting for worker slot")
	}, 5*time.Second, 5*time.Millisecond)

	rc.ReleaseWorker()
	require.NoError(t, <-done)
	assert.Equal(t, 1229, sh.Map.Count())
	assert.Zero(t, rc.RunningWorkers())
}

func TestGoroutine_PanicIsJoinError(t *testing.T) {
	b := &Goroutine{
		Mark: func(ctx context.Context, m *bitmap.Map, seg partition.Segment, opts ...marker.Option) (marker.Stats, error) {
			if seg.ID == 2 {
				panic("boom")
			}
			return marker.Mark(ctx, m, seg, opts...)
		},
	}

	_, stats, err := runBackend(t, b, 10_000, 4, nil)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, ErrJoin)

	var we *WorkerError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 2, we.Worker)
	assert.Contains(t, err.Error(), "boom")
}

func TestGoroutine_MarkErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	b := &Goroutine{
		Mark: func(context.Context, *bitmap.Map, partition.Segment, ...marker.Option) (marker.Stats, error) {
			return marker.Stats{}, boom
		},
	}

	_, _, err := runBackend(t, b, 1000, 3, nil)
	assert.ErrorIs(t, err, boom)
}

func TestGoroutine_Cancelled(t *testing.T) {
	b := &Goroutine{}
	sh, err := b.Alloc(1_000_000, 2)
	require.NoError(t, err)
	defer sh.Close()
	presieve.Run(sh.Map)

	plan, err := partition.Plan(1_000_000, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = b.Run(ctx, sh, Job{Plan: plan})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerError(t *testing.T) {
	cause := errors.New("exit status 3")
	err := error(&WorkerError{Worker: 5, Kind: ErrSpawn, Err: cause})

	assert.ErrorIs(t, err, ErrSpawn)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrJoin)
	assert.Equal(t, "worker 5: backend: worker spawn failed: exit status 3", err.Error())
}
