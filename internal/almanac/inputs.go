package almanac

import (
	"fmt"

	"github.com/leapstack-labs/seedmap/pkg/remap"
)

// SeedPoints returns every seed as the singleton interval [v, v+1).
func (a *Almanac) SeedPoints() ([]remap.Interval, error) {
	out := make([]remap.Interval, 0, len(a.Seeds))
	for i, v := range a.Seeds {
		pt, err := remap.Point(v)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", i, err)
		}
		out = append(out, pt)
	}
	return out, nil
}

// SeedRanges reads the seeds as (start, length) pairs and returns
// [start, start+length) for each. Zero-length pairs are kept and become empty
// intervals, which the pipeline ignores.
func (a *Almanac) SeedRanges() ([]remap.Interval, error) {
	if len(a.Seeds)%2 != 0 {
		return nil, fmt.Errorf("seed ranges need an even count of numbers, got %d", len(a.Seeds))
	}
	out := make([]remap.Interval, 0, len(a.Seeds)/2)
	for i := 0; i < len(a.Seeds); i += 2 {
		iv, err := remap.NewInterval(a.Seeds[i], a.Seeds[i+1])
		if err != nil {
			return nil, fmt.Errorf("seed range %d: %w", i/2, err)
		}
		out = append(out, iv)
	}
	return out, nil
}

// Inputs returns the seed intervals for the given mode.
func (a *Almanac) Inputs(mode Mode) ([]remap.Interval, error) {
	switch mode {
	case ModePoints:
		return a.SeedPoints()
	case ModeRanges:
		return a.SeedRanges()
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

// Tables builds one remap.Table per stage in declaration order.
func (a *Almanac) Tables() ([]*remap.Table, error) {
	tables := make([]*remap.Table, 0, len(a.Stages))
	for _, st := range a.Stages {
		tbl, err := remap.NewTable(st.Name, st.Triples)
		if err != nil {
			if a.File != "" {
				return nil, fmt.Errorf("%s:%d: %w", a.File, st.Line, err)
			}
			return nil, fmt.Errorf("line %d: %w", st.Line, err)
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

// Pipeline assembles the stages into a pipeline.
func (a *Almanac) Pipeline() (*remap.Pipeline, error) {
	tables, err := a.Tables()
	if err != nil {
		return nil, err
	}
	return remap.NewPipeline(tables...), nil
}

// TripleCount returns the number of triples across all stages.
func (a *Almanac) TripleCount() int {
	n := 0
	for _, st := range a.Stages {
		n += len(st.Triples)
	}
	return n
}
