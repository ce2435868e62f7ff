package remap

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTriple is returned when a table is built from a triple with a
	// zero length, an unrepresentable range, or a source range that overlaps
	// another triple of the same table.
	ErrMalformedTriple = errors.New("malformed triple")

	// ErrEmptyInputSet is returned when a reduction is asked for the minimum
	// of an empty interval set.
	ErrEmptyInputSet = errors.New("empty input set")

	// ErrArithmeticOverflow is returned when a value would leave the uint64
	// range.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

// TripleError describes a triple rejected at table construction.
// Index refers to the position in the slice passed to NewTable. Other is the
// index of the conflicting triple for overlaps and -1 otherwise.
type TripleError struct {
	Table  string
	Index  int
	Triple Triple
	Other  int
	Reason string
}

func (e *TripleError) Error() string {
	prefix := "triple"
	if e.Table != "" {
		prefix = e.Table + ": triple"
	}
	if e.Other >= 0 {
		return fmt.Sprintf("%s %d %s: %s with triple %d", prefix, e.Index, e.Triple, e.Reason, e.Other)
	}
	return fmt.Sprintf("%s %d %s: %s", prefix, e.Index, e.Triple, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedTriple.
func (e *TripleError) Unwrap() error {
	return ErrMalformedTriple
}
