package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferencePrimes(t *testing.T) {
	assert.Nil(t, ReferencePrimes(0))
	assert.Nil(t, ReferencePrimes(1))
	assert.Equal(t, []uint32{2}, ReferencePrimes(2))
	assert.Equal(t, []uint32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, ReferencePrimes(30))
	assert.Len(t, ReferencePrimes(100), 25)
	assert.Len(t, ReferencePrimes(1_000_000), 78498)
}

func TestIsPrimeMatchesReference(t *testing.T) {
	want := ReferencePrimes(5000)
	var got []uint32
	for n := uint32(0); n <= 5000; n++ {
		if IsPrime(n) {
			got = append(got, n)
		}
	}
	assert.Equal(t, want, got)
	assert.True(t, IsPrime(4294967291))
	assert.False(t, IsPrime(4294967295))
}

func TestDiff(t *testing.T) {
	missing, extra := Diff([]uint32{2, 3, 9, 11}, []uint32{2, 3, 5, 7, 11, 13})
	assert.Equal(t, []uint32{5, 7, 13}, missing)
	assert.Equal(t, []uint32{9}, extra)

	missing, extra = Diff(nil, nil)
	assert.Empty(t, missing)
	assert.Empty(t, extra)
}

func TestRNG_Bound(t *testing.T) {
	rng := NewRNG(4711)
	assert.Equal(t, int64(4711), rng.Seed())

	for range 100 {
		b := rng.Bound(10, 20)
		assert.GreaterOrEqual(t, b, uint32(10))
		assert.LessOrEqual(t, b, uint32(20))
	}
	assert.Less(t, rng.Intn(5), 5)
}
