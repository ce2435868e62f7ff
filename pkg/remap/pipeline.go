package remap

import (
	"fmt"
	"slices"
)

// Pipeline is an ordered chain of tables. The output of stage i is the input
// of stage i+1; stages are never skipped or reordered.
type Pipeline struct {
	stages []*Table
}

// NewPipeline returns a pipeline over stages in the given order. A nil stage
// acts as the identity.
func NewPipeline(stages ...*Table) *Pipeline {
	return &Pipeline{stages: slices.Clone(stages)}
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Stages returns the stages in order.
func (p *Pipeline) Stages() []*Table {
	return slices.Clone(p.stages)
}

// Propagate pushes the interval set through every stage.
func (p *Pipeline) Propagate(in []Interval) []Interval {
	return p.PropagateEach(in, nil)
}

// PropagateEach is Propagate with a callback invoked after every stage with
// that stage's output. fn may be nil and must not modify out.
func (p *Pipeline) PropagateEach(in []Interval, fn func(i int, st *Table, out []Interval)) []Interval {
	cur := nonEmpty(in)
	for i, st := range p.stages {
		cur = st.LookupIntervals(cur)
		if fn != nil {
			fn(i, st, cur)
		}
	}
	return cur
}

// MinimumReachable returns the smallest value reachable at the end of the
// pipeline from any value of in. It fails with ErrEmptyInputSet when in holds
// no values.
func (p *Pipeline) MinimumReachable(in []Interval) (uint64, error) {
	out := p.Propagate(in)
	m, err := MinStart(out)
	if err != nil {
		return 0, fmt.Errorf("minimum reachable over %d intervals: %w", len(in), err)
	}
	return m, nil
}

// LookupScalar maps v through every stage with Table.LookupScalar.
func (p *Pipeline) LookupScalar(v uint64) uint64 {
	for _, st := range p.stages {
		v = st.LookupScalar(v)
	}
	return v
}

// PropagateScalar maps v by propagating the singleton interval [v, v+1). It
// agrees with LookupScalar for every v below math.MaxUint64, which has no
// half-open singleton and yields ErrArithmeticOverflow.
func (p *Pipeline) PropagateScalar(v uint64) (uint64, error) {
	pt, err := Point(v)
	if err != nil {
		return 0, err
	}
	out := p.Propagate([]Interval{pt})
	if len(out) != 1 || out[0].Len() != 1 {
		return 0, fmt.Errorf("singleton %s split into %v", pt, out)
	}
	return out[0].Start, nil
}

// Trace returns v followed by its value after each stage.
func (p *Pipeline) Trace(v uint64) []uint64 {
	path := make([]uint64, 0, len(p.stages)+1)
	path = append(path, v)
	for _, st := range p.stages {
		v = st.LookupScalar(v)
		path = append(path, v)
	}
	return path
}
