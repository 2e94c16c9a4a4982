package marker

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/primesieve/internal/bitmap"
	"github.com/hupe1980/primesieve/internal/partition"
	"github.com/hupe1980/primesieve/internal/presieve"
	"github.com/hupe1980/primesieve/testutil"
)

func prepared(t testing.TB, bound uint32) *bitmap.Map {
	t.Helper()
	m, err := bitmap.New(bound, nil)
	require.NoError(t, err)
	presieve.Run(m)
	return m
}

func TestMark_FullRange(t *testing.T) {
	for _, bound := range []uint32{2, 3, 4, 24, 25, 26, 49, 100, 1000, 65537, 1_000_003} {
		m := prepared(t, bound)

		seg, err := partition.Partition(bound, 1, 0)
		require.NoError(t, err)

		_, err = Mark(t.Context(), m, seg)
		require.NoError(t, err)

		missing, extra := testutil.Diff(slices.Collect(m.Primes()), testutil.ReferencePrimes(bound))
		assert.Empty(t, missing, "bound %d", bound)
		assert.Empty(t, extra, "bound %d", bound)
	}
}

func TestMark_SegmentsSequential(t *testing.T) {
	const bound = 200_003
	want := testutil.ReferencePrimes(bound)

	for workers := 1; workers <= 7; workers++ {
		m := prepared(t, bound)

		plan, err := partition.Plan(bound, workers)
		require.NoError(t, err)
		for _, seg := range plan {
			_, err := Mark(t.Context(), m, seg)
			require.NoError(t, err)
		}

		assert.Equal(t, want, slices.Collect(m.Primes()), "workers %d", workers)
	}
}

func TestMark_Concurrent(t *testing.T) {
	const bound = 1_000_000
	m := prepared(t, bound)

	plan, err := partition.Plan(bound, 13)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, seg := range plan {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Mark(t.Context(), m, seg)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 78498, m.Count())
}

func TestMark_WritesStayInSegment(t *testing.T) {
	const bound = 50_000

	before := prepared(t, bound)
	after := prepared(t, bound)

	plan, err := partition.Plan(bound, 5)
	require.NoError(t, err)
	seg := plan[2]

	_, err = Mark(t.Context(), after, seg)
	require.NoError(t, err)

	for n := uint32(1); n <= bound; n++ {
		inside := uint64(n) >= seg.Min() && uint64(n) <= seg.Max()
		if inside {
			require.Equal(t, testutil.IsPrime(n), after.IsPrime(n), "n=%d", n)
		} else {
			require.Equal(t, before.IsPrime(n), after.IsPrime(n), "n=%d written outside %s", n, seg)
		}
	}
}

func TestMark_EmptySegment(t *testing.T) {
	m := prepared(t, 2)

	plan, err := partition.Plan(2, 7)
	require.NoError(t, err)
	require.True(t, plan[0].Empty())

	st, err := Mark(t.Context(), m, plan[0])
	require.NoError(t, err)
	assert.Zero(t, st.Seeds)
	assert.Zero(t, st.Marked)
	assert.Equal(t, plan[0], st.Segment)
}

func TestMark_Stats(t *testing.T) {
	m := prepared(t, 100)
	seg, err := partition.Partition(100, 1, 0)
	require.NoError(t, err)

	st, err := Mark(t.Context(), m, seg)
	require.NoError(t, err)

	// Seeds 5 and 7; 25 35 49 55 65 77 85 91 95 are left by the base sieve.
	assert.Equal(t, 2, st.Seeds)
	assert.Equal(t, uint64(9), st.Marked)
}

func TestMark_Cancelled(t *testing.T) {
	m := prepared(t, 1_000_000)
	seg, err := partition.Partition(1_000_000, 1, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	st, err := Mark(ctx, m, seg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, st.Seeds)
}

func TestMark_ProgressLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := prepared(t, 10_000)
	seg, err := partition.Partition(10_000, 1, 0)
	require.NoError(t, err)

	_, err = Mark(t.Context(), m, seg, WithLogger(logger), WithProgressInterval(0))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "marking segment")
	assert.Contains(t, buf.String(), "worker=0")
}

func BenchmarkMark(b *testing.B) {
	const bound = 10_000_000
	seg, err := partition.Partition(bound, 1, 0)
	require.NoError(b, err)

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		m := prepared(b, bound)
		b.StartTimer()

		if _, err := Mark(context.Background(), m, seg); err != nil {
			b.Fatal(err)
		}
	}
}
