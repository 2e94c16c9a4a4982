package integration_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/primesieve"
	"github.com/hupe1980/primesieve/testutil"
)

// TestEdgeCase_WordBoundaries sieves bounds around multiples of the 32-bit
// word size, where the last word of the map is partially used.
func TestEdgeCase_WordBoundaries(t *testing.T) {
	for base := uint32(32); base <= 32*40; base += 32 {
		for _, bound := range []uint32{base - 1, base, base + 1} {
			for _, workers := range []int{1, 5} {
				res, err := primesieve.Run(t.Context(), bound, primesieve.WithWorkers(workers))
				require.NoError(t, err)

				got := slices.Collect(res.Primes())
				assert.Equal(t, testutil.ReferencePrimes(bound), got, "bound %d workers %d", bound, workers)
				require.NoError(t, res.Close())
			}
		}
	}
}

// TestEdgeCase_SquaresOfPrimes sieves bounds at and around p*p, the first
// composite each seed prime is responsible for.
func TestEdgeCase_SquaresOfPrimes(t *testing.T) {
	for _, p := range []uint32{5, 7, 11, 13, 251, 4093} {
		sq := p * p
		for _, bound := range []uint32{sq - 1, sq, sq + 1} {
			res, err := primesieve.Run(t.Context(), bound, primesieve.WithWorkers(3))
			require.NoError(t, err)

			assert.False(t, res.IsPrime(sq), "bound %d", bound)
			assert.Equal(t, len(testutil.ReferencePrimes(bound)), res.Count(), "bound %d", bound)
			require.NoError(t, res.Close())
		}
	}
}

// TestEdgeCase_SegmentBoundaries places segment boundaries on primes and on
// multiples of seed primes.
func TestEdgeCase_SegmentBoundaries(t *testing.T) {
	rng := testutil.NewRNG(7)
	for range 25 {
		bound := rng.Bound(1_000, 300_000)
		workers := 1 + rng.Intn(32)

		res, err := primesieve.Run(t.Context(), bound, primesieve.WithWorkers(workers))
		require.NoError(t, err)

		missing, extra := testutil.Diff(slices.Collect(res.Primes()), testutil.ReferencePrimes(bound))
		assert.Empty(t, missing, "bound %d workers %d seed %d", bound, workers, rng.Seed())
		assert.Empty(t, extra, "bound %d workers %d seed %d", bound, workers, rng.Seed())
		require.NoError(t, res.Close())
	}
}
