package remap

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"
	"sort"
)

// Triple maps the source range [Src, Src+Len) onto [Dest, Dest+Len).
type Triple struct {
	Dest uint64
	Src  uint64
	Len  uint64
}

// SrcEnd returns the exclusive end of the source range.
func (t Triple) SrcEnd() uint64 {
	return t.Src + t.Len
}

// Source returns the source range as an interval.
func (t Triple) Source() Interval {
	return Interval{Start: t.Src, End: t.Src + t.Len}
}

// Translate applies the triple's offset to v, which must lie in the source
// range.
func (t Triple) Translate(v uint64) (uint64, error) {
	if v < t.Src {
		return 0, fmt.Errorf("value %d below source start %d: %w", v, t.Src, ErrArithmeticOverflow)
	}
	out, carry := bits.Add64(t.Dest, v-t.Src, 0)
	if carry != 0 {
		return 0, fmt.Errorf("translate %d by %s: %w", v, t, ErrArithmeticOverflow)
	}
	return out, nil
}

func (t Triple) String() string {
	return fmt.Sprintf("(%d %d %d)", t.Dest, t.Src, t.Len)
}

// Table is one stage of a pipeline. It is immutable after NewTable returns
// and safe for concurrent use. A nil or empty Table is the identity.
type Table struct {
	name    string
	triples []Triple // sorted by Src, non-overlapping
}

// NewTable validates triples and returns a table holding them sorted by
// source start. The input order is irrelevant. Every rejection wraps
// ErrMalformedTriple and is reported as a *TripleError.
func NewTable(name string, triples []Triple) (*Table, error) {
	for i, tr := range triples {
		if err := checkTriple(name, i, tr); err != nil {
			return nil, err
		}
	}

	order := make([]int, len(triples))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(triples[a].Src, triples[b].Src)
	})

	sorted := make([]Triple, len(triples))
	for i, idx := range order {
		sorted[i] = triples[idx]
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.SrcEnd() > sorted[i].Src {
			return nil, &TripleError{
				Table:  name,
				Index:  idx,
				Triple: sorted[i],
				Other:  order[i-1],
				Reason: "source range overlaps",
			}
		}
	}

	return &Table{name: name, triples: sorted}, nil
}

func checkTriple(table string, i int, tr Triple) error {
	reason := ""
	switch {
	case tr.Len == 0:
		reason = "zero length"
	case overflows(tr.Src, tr.Len):
		reason = "source range exceeds uint64"
	case overflows(tr.Dest, tr.Len):
		reason = "destination range exceeds uint64"
	default:
		return nil
	}
	return &TripleError{Table: table, Index: i, Triple: tr, Other: -1, Reason: reason}
}

func overflows(start, length uint64) bool {
	_, carry := bits.Add64(start, length, 0)
	return carry != 0
}

// Name returns the stage name given at construction. It is informational.
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Len returns the number of triples.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.triples)
}

// Triples returns a copy of the triples in source order.
func (t *Table) Triples() []Triple {
	if t == nil {
		return nil
	}
	return slices.Clone(t.triples)
}

// search returns the index of the first triple whose source range ends after v.
func (t *Table) search(v uint64) int {
	return sort.Search(len(t.triples), func(i int) bool {
		return t.triples[i].SrcEnd() > v
	})
}

// Find returns the triple whose source range contains v.
func (t *Table) Find(v uint64) (Triple, bool) {
	if t == nil {
		return Triple{}, false
	}
	i := t.search(v)
	if i < len(t.triples) && t.triples[i].Src <= v {
		return t.triples[i], true
	}
	return Triple{}, false
}

// LookupScalar maps a single value through the table. Values not covered by
// any triple are returned unchanged.
func (t *Table) LookupScalar(v uint64) uint64 {
	tr, ok := t.Find(v)
	if !ok {
		return v
	}
	// Construction guarantees Dest+Len fits, so this cannot wrap.
	return tr.Dest + (v - tr.Src)
}

// LookupIntervals maps every interval of in through the table. Each input is
// split at the triple boundaries it crosses: covered fragments are shifted by
// their triple's offset, uncovered fragments pass through unchanged. Empty
// inputs are dropped. The result is neither sorted nor merged, and fragments
// coming from different inputs may overlap.
func (t *Table) LookupIntervals(in []Interval) []Interval {
	sorted := nonEmpty(in)
	out := make([]Interval, 0, len(sorted))
	for _, iv := range sorted {
		out = t.split(out, iv)
	}
	return out
}

func (t *Table) split(out []Interval, iv Interval) []Interval {
	s, e := iv.Start, iv.End
	if t != nil {
		for i := t.search(s); i < len(t.triples) && s < e; i++ {
			tr := t.triples[i]
			ts, te := tr.Src, tr.SrcEnd()
			if ts >= e {
				break
			}
			if s < ts {
				out = append(out, Interval{Start: s, End: ts})
				s = ts
			}
			hi := min(e, te)
			out = append(out, Interval{Start: tr.Dest + (s - ts), End: tr.Dest + (hi - ts)})
			s = hi
		}
	}
	if s < e {
		out = append(out, Interval{Start: s, End: e})
	}
	return out
}
