package bitmap

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
	"sync/atomic"

	"github.com/hupe1980/primesieve/internal/mmap"
)

// WordBits is the number of integers tracked per storage word.
const WordBits = 32

// ErrAllocation is returned when storage for a map cannot be obtained.
var ErrAllocation = errors.New("bitmap: allocation failed")

// Allocator returns zeroed storage for n words and a function releasing it.
// The release function may be nil.
type Allocator func(n int) ([]uint32, func() error, error)

// HeapAllocator allocates storage on the Go heap.
func HeapAllocator(n int) ([]uint32, func() error, error) {
	return make([]uint32, n), nil, nil
}

// AnonAllocator allocates storage in a private anonymous mapping.
func AnonAllocator(n int) ([]uint32, func() error, error) {
	m, err := mmap.MapAnon(n * 4)
	if err != nil {
		return nil, nil, err
	}
	words, err := m.Uint32s(n)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return words, m.Close, nil
}

// WordsFor returns the number of words needed to track [1, bound].
func WordsFor(bound uint32) int {
	return int((uint64(bound) + WordBits - 1) / WordBits)
}

// Map is the composite map for the integers [1, bound].
type Map struct {
	words   []uint32
	bound   uint32
	release func() error
	closed  atomic.Bool
}

// New allocates a zeroed map for [1, bound]. A nil alloc uses HeapAllocator.
func New(bound uint32, alloc Allocator) (*Map, error) {
	n := WordsFor(bound)
	if n == 0 {
		return &Map{bound: bound}, nil
	}
	if alloc == nil {
		alloc = HeapAllocator
	}

	words, release, err := alloc(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %d words: %w", ErrAllocation, n, err)
	}

	return FromWords(bound, words, release)
}

// FromWords wraps existing storage. words must hold at least WordsFor(bound)
// entries; release is called once by Close.
func FromWords(bound uint32, words []uint32, release func() error) (*Map, error) {
	n := WordsFor(bound)
	if len(words) < n {
		if release != nil {
			_ = release()
		}
		return nil, fmt.Errorf("%w: have %d words, need %d", ErrAllocation, len(words), n)
	}
	return &Map{
		words:   words[:n],
		bound:   bound,
		release: release,
	}, nil
}

// Bound returns the largest integer tracked by the map.
func (m *Map) Bound() uint32 {
	return m.bound
}

// Len returns the number of storage words.
func (m *Map) Len() int {
	return len(m.words)
}

// Bytes returns the size of the storage in bytes.
func (m *Map) Bytes() int64 {
	return int64(len(m.words)) * 4
}

// IsPrime reports whether n is not marked composite.
// Precondition: 1 <= n <= Bound().
func (m *Map) IsPrime(n uint32) bool {
	i := n - 1
	return atomic.LoadUint32(&m.words[i/WordBits])&(1<<(i%WordBits)) == 0
}

// MarkComposite marks n composite. Marking twice is a no-op.
// Precondition: 1 <= n <= Bound().
func (m *Map) MarkComposite(n uint32) {
	i := n - 1
	atomic.OrUint32(&m.words[i/WordBits], 1<<(i%WordBits))
}

// MarkPrime clears the composite mark of n.
// Precondition: 1 <= n <= Bound().
func (m *Map) MarkPrime(n uint32) {
	i := n - 1
	atomic.AndUint32(&m.words[i/WordBits], ^uint32(1<<(i%WordBits)))
}

// Word returns storage word i.
func (m *Map) Word(i int) uint32 {
	return atomic.LoadUint32(&m.words[i])
}

// OrWord sets the bits of mask in storage word i.
func (m *Map) OrWord(i int, mask uint32) {
	atomic.OrUint32(&m.words[i], mask)
}

// NextPrime returns the smallest odd i > cur with i <= limit that is not
// marked composite, or 0 if there is none. cur must be odd.
func (m *Map) NextPrime(cur, limit uint32) uint32 {
	for i := uint64(cur) + 2; i <= uint64(limit); i += 2 {
		if m.IsPrime(uint32(i)) {
			return uint32(i)
		}
	}
	return 0
}

// Count returns the number of integers in [1, Bound()] not marked composite.
func (m *Map) Count() int {
	if len(m.words) == 0 {
		return 0
	}

	count := 0
	last := len(m.words) - 1
	for i := 0; i < last; i++ {
		count += WordBits - bits.OnesCount32(m.Word(i))
	}

	// Bits past bound in the last word carry no meaning.
	tail := uint(m.bound) - uint(last)*WordBits
	valid := uint32(1<<tail - 1)
	if tail == WordBits {
		valid = ^uint32(0)
	}
	count += bits.OnesCount32(^m.Word(last) & valid)

	return count
}

// Primes yields, in ascending order, every integer in [2, Bound()] not marked
// composite.
func (m *Map) Primes() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := range m.words {
			free := ^m.Word(i)
			for free != 0 {
				n := uint64(i)*WordBits + uint64(bits.TrailingZeros32(free)) + 1
				if n > uint64(m.bound) {
					return
				}
				if n >= 2 && !yield(uint32(n)) {
					return
				}
				free &= free - 1
			}
		}
	}
}

// Close releases the storage. It is idempotent.
func (m *Map) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.words = nil
	if m.release != nil {
		return m.release()
	}
	return nil
}
