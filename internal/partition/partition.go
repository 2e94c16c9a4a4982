// Package partition splits the sieve domain [0, bound] into contiguous,
// non-overlapping worker segments.
package partition

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for a zero worker count or an out-of-range worker id.
var ErrInvalidConfig = errors.New("partition: invalid config")

// Segment is the share of [0, bound] owned by one worker, stored half-open as
// [Start, End).
type Segment struct {
	ID    int
	Start uint64
	End   uint64
}

// Empty reports whether the segment holds no integers.
func (s Segment) Empty() bool {
	return s.End <= s.Start
}

// Len returns the number of integers in the segment.
func (s Segment) Len() uint64 {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

// Min returns the smallest integer of the segment.
func (s Segment) Min() uint64 {
	return s.Start
}

// Max returns the largest integer of the segment. Meaningless when Empty.
func (s Segment) Max() uint64 {
	return s.End - 1
}

func (s Segment) String() string {
	if s.Empty() {
		return fmt.Sprintf("#%d[empty]", s.ID)
	}
	return fmt.Sprintf("#%d[%d,%d]", s.ID, s.Min(), s.Max())
}

// Partition returns the segment of worker id among workers.
//
// Segment k spans [floor(k*(bound+1)/workers), floor((k+1)*(bound+1)/workers) - 1].
// The products are computed in 64 bits, so the boundaries of neighbouring
// segments come from the same expression and meet exactly.
func Partition(bound uint32, workers, id int) (Segment, error) {
	if workers <= 0 {
		return Segment{}, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, workers)
	}
	if id < 0 || id >= workers {
		return Segment{}, fmt.Errorf("%w: worker id %d out of range [0, %d)", ErrInvalidConfig, id, workers)
	}

	total := uint64(bound) + 1
	n := uint64(workers)
	return Segment{
		ID:    id,
		Start: uint64(id) * total / n,
		End:   (uint64(id) + 1) * total / n,
	}, nil
}

// Plan returns the segments of all workers, ordered by id.
func Plan(bound uint32, workers int) ([]Segment, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, workers)
	}

	segments := make([]Segment, workers)
	for id := range segments {
		seg, err := Partition(bound, workers, id)
		if err != nil {
			return nil, err
		}
		segments[id] = seg
	}
	return segments, nil
}
