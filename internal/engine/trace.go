package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/seedmap/internal/almanac"
	"github.com/leapstack-labs/seedmap/pkg/remap"
)

// TraceStep is the value of a seed after one stage.
type TraceStep struct {
	Stage   string
	Input   uint64
	Output  uint64
	Matched bool
	Triple  remap.Triple
}

// TraceResult follows one seed through every stage.
type TraceResult struct {
	Path  string
	Seed  uint64
	Steps []TraceStep
	Final uint64
}

// Trace follows seed through the almanac at path, reporting the triple hit at
// every stage.
func (e *Engine) Trace(ctx context.Context, path string, seed uint64, skipChainCheck bool) (*TraceResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read almanac: %w", err)
	}
	return e.TraceInput(ctx, path, data, seed, skipChainCheck)
}

// TraceInput is Trace over an in-memory almanac.
func (e *Engine) TraceInput(ctx context.Context, path string, data []byte, seed uint64, skipChainCheck bool) (*TraceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	alm, err := almanac.Parse(bytes.NewReader(data), almanac.Options{File: path, SkipChainCheck: skipChainCheck})
	if err != nil {
		return nil, err
	}
	pipeline, err := alm.Pipeline()
	if err != nil {
		return nil, err
	}

	values := pipeline.Trace(seed)
	res := &TraceResult{Path: path, Seed: seed, Final: values[len(values)-1]}
	for i, st := range pipeline.Stages() {
		tr, ok := st.Find(values[i])
		res.Steps = append(res.Steps, TraceStep{
			Stage:   st.Name(),
			Input:   values[i],
			Output:  values[i+1],
			Matched: ok,
			Triple:  tr,
		})
	}
	e.logger.Debug("traced seed", "input", path, "seed", seed, "final", res.Final)
	return res, nil
}
