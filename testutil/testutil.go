package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// ReferencePrimes returns the primes in [2, bound] in ascending order.
func ReferencePrimes(bound uint32) []uint32 {
	if bound < 2 {
		return nil
	}

	composite := make([]bool, uint64(bound)+1)
	for p := uint64(2); p*p <= uint64(bound); p++ {
		if composite[p] {
			continue
		}
		for q := p * p; q <= uint64(bound); q += p {
			composite[q] = true
		}
	}

	primes := make([]uint32, 0, approxPrimeCount(bound))
	for n := uint64(2); n <= uint64(bound); n++ {
		if !composite[n] {
			primes = append(primes, uint32(n))
		}
	}
	return primes
}

// IsPrime reports whether n is prime using trial division.
func IsPrime(n uint32) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= uint64(n); d += 2 {
		if uint64(n)%d == 0 {
			return false
		}
	}
	return true
}

// Diff compares two ascending prime lists and returns the values of want
// missing from got and the values of got absent from want.
func Diff(got, want []uint32) (missing, extra []uint32) {
	i, j := 0, 0
	for i < len(got) && j < len(want) {
		switch {
		case got[i] == want[j]:
			i++
			j++
		case got[i] < want[j]:
			extra = append(extra, got[i])
			i++
		default:
			missing = append(missing, want[j])
			j++
		}
	}
	extra = append(extra, got[i:]...)
	missing = append(missing, want[j:]...)
	return missing, extra
}

func approxPrimeCount(bound uint32) int {
	if bound < 17 {
		return 8
	}
	x := float64(bound)
	return int(1.26 * x / math.Log(x))
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bound returns a pseudo-random sieve bound in [lo, hi].
func (r *RNG) Bound(lo, hi uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + uint32(r.rand.Int63n(int64(hi-lo)+1))
}
