package presieve

import (
	"math"

	"github.com/hupe1980/primesieve/internal/bitmap"
)

const (
	// evens marks every even integer; bit b of any word is integer 32w+b+1.
	evens uint32 = 0xAAAAAAAA
)

// threes marks multiples of three. 32 ≡ 2 (mod 3), so the phase shifts from
// word to word and repeats every three words.
var threes = [3]uint32{
	0x24924924, // 3, 6, 9, ... 30
	0x49249249, // 33, 36, ... 63
	0x92492492, // 66, 69, ... 96
}

// Sqrt returns floor(sqrt(n)).
func Sqrt(n uint32) uint32 {
	r := uint64(math.Sqrt(float64(n)))
	for r*r > uint64(n) {
		r--
	}
	for (r+1)*(r+1) <= uint64(n) {
		r++
	}
	return uint32(r)
}

// Run marks all composites of m whose smallest prime factor is 2 or 3, and
// all composites up to Sqrt(m.Bound()).
func Run(m *bitmap.Map) {
	n := m.Len()
	if n == 0 {
		return
	}

	i := 0
	for ; i+2 < n; i += 3 {
		m.OrWord(i, evens|threes[0])
		m.OrWord(i+1, evens|threes[1])
		m.OrWord(i+2, evens|threes[2])
	}
	// Remaining 0-2 words.
	if i < n {
		m.OrWord(i, evens|threes[0])
	}
	if i+1 < n {
		m.OrWord(i+1, evens|threes[1])
	}

	bound := m.Bound()
	m.MarkComposite(1)
	if bound >= 2 {
		m.MarkPrime(2)
	}
	if bound >= 3 {
		m.MarkPrime(3)
	}
	if bound < 4 {
		return
	}

	limit := Sqrt(bound)
	for p := uint32(5); p <= Sqrt(limit); p += 2 {
		if !m.IsPrime(p) {
			continue
		}
		for j := uint32(5); p*j <= limit; j += 2 {
			m.MarkComposite(p * j)
		}
	}
}
