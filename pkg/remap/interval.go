package remap

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"
)

// Interval is the half-open range [Start, End) over uint64.
// An interval with Start >= End holds no values.
type Interval struct {
	Start uint64
	End   uint64
}

// NewInterval returns [start, start+length).
func NewInterval(start, length uint64) (Interval, error) {
	end, carry := bits.Add64(start, length, 0)
	if carry != 0 {
		return Interval{}, fmt.Errorf("interval %d+%d: %w", start, length, ErrArithmeticOverflow)
	}
	return Interval{Start: start, End: end}, nil
}

// Point returns the singleton interval [v, v+1).
func Point(v uint64) (Interval, error) {
	return NewInterval(v, 1)
}

// Len returns the number of values in the interval.
func (i Interval) Len() uint64 {
	if i.Empty() {
		return 0
	}
	return i.End - i.Start
}

// Empty reports whether the interval contains no values.
func (i Interval) Empty() bool {
	return i.Start >= i.End
}

// Contains reports whether v lies in the interval.
func (i Interval) Contains(v uint64) bool {
	return v >= i.Start && v < i.End
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.Start, i.End)
}

// MinStart returns the smallest start among the non-empty intervals of set.
func MinStart(set []Interval) (uint64, error) {
	var (
		best  uint64
		found bool
	)
	for _, iv := range set {
		if iv.Empty() {
			continue
		}
		if !found || iv.Start < best {
			best = iv.Start
			found = true
		}
	}
	if !found {
		return 0, ErrEmptyInputSet
	}
	return best, nil
}

// TotalLen sums the lengths of every interval in set. Overlapping intervals
// are counted once per occurrence.
func TotalLen(set []Interval) uint64 {
	var n uint64
	for _, iv := range set {
		n += iv.Len()
	}
	return n
}

// nonEmpty returns the non-empty intervals of set sorted by start.
func nonEmpty(set []Interval) []Interval {
	out := make([]Interval, 0, len(set))
	for _, iv := range set {
		if !iv.Empty() {
			out = append(out, iv)
		}
	}
	slices.SortFunc(out, func(a, b Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}
