// Package remap implements the piecewise-linear interval remapping pipeline
// used to solve almanac puzzles.
//
// A Table is built once from (destination, source, length) triples and is
// read-only afterwards. Values outside every triple map to themselves. A
// Pipeline chains tables in declared order and pushes either single values or
// whole half-open intervals through every stage. Intervals are split at triple
// boundaries rather than enumerated, so ranges spanning billions of integers
// cost time proportional to the number of fragments, not the number of values.
package remap
