package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/seedmap/internal/almanac"
	"github.com/leapstack-labs/seedmap/internal/state"
	"github.com/leapstack-labs/seedmap/pkg/remap"
)

// SolveRequest describes one solve.
type SolveRequest struct {
	// Path is read when Input is nil and is used in messages and history.
	Path string
	// Input holds the almanac text. Optional.
	Input []byte
	Mode  almanac.Mode
	// SkipChainCheck accepts maps not named as a <from>-to-<to> chain.
	SkipChainCheck bool
}

// Result is the outcome of a solve.
type Result struct {
	RunID     string
	Path      string
	Mode      almanac.Mode
	Answer    uint64
	Chain     []string
	Stages    int
	Triples   int
	Inputs    int
	Values    uint64
	Fragments int
	Workers   int
	Cached    bool
	Duration  time.Duration
}

// Solve parses the almanac, propagates its seeds and returns the lowest
// reachable location.
func (e *Engine) Solve(ctx context.Context, req SolveRequest) (*Result, error) {
	start := time.Now()

	if req.Mode == "" {
		req.Mode = almanac.ModeRanges
	}

	data := req.Input
	if data == nil {
		var err error
		data, err = os.ReadFile(req.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read almanac: %w", err)
		}
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	logger := e.logger.With(slog.String("input", req.Path), slog.String("mode", req.Mode.String()))

	if e.reuse && e.store != nil {
		prev, err := e.store.LatestCompleted(ctx, hash, req.Mode.String(), req.SkipChainCheck)
		if err != nil {
			return nil, err
		}
		if prev != nil && prev.Answer != nil {
			logger.Debug("reusing earlier run", slog.String("run_id", prev.ID))
			return cachedResult(prev, req, time.Since(start)), nil
		}
	}

	var runID string
	if e.store != nil {
		run, err := e.store.CreateRun(ctx, state.NewRun{
			InputPath: req.Path,
			InputHash: hash,
			Mode:      req.Mode.String(),
			Workers:   e.workers,

			SkipChainCheck: req.SkipChainCheck,
		})
		if err != nil {
			return nil, err
		}
		runID = run.ID
		logger = logger.With(slog.String("run_id", runID))
	}

	res, err := e.solve(ctx, logger, data, req)
	if err != nil {
		logger.Debug("solve failed", slog.String("error", err.Error()))
		if runID != "" {
			if ferr := e.store.FailRun(context.WithoutCancel(ctx), runID, err.Error()); ferr != nil {
				logger.Warn("failed to record run failure", slog.String("error", ferr.Error()))
			}
		}
		return nil, err
	}

	res.RunID = runID
	res.Duration = time.Since(start)

	if runID != "" {
		if err := e.store.CompleteRun(ctx, runID, state.Outcome{
			Answer:    res.Answer,
			Chain:     res.Chain,
			Stages:    res.Stages,
			Triples:   res.Triples,
			Inputs:    res.Inputs,
			Values:    res.Values,
			Fragments: res.Fragments,
		}); err != nil {
			return nil, err
		}
	}

	logger.Info("solved",
		slog.Uint64("answer", res.Answer),
		slog.Int("fragments", res.Fragments),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

func (e *Engine) solve(ctx context.Context, logger *slog.Logger, data []byte, req SolveRequest) (*Result, error) {
	alm, err := almanac.Parse(bytes.NewReader(data), almanac.Options{File: req.Path, SkipChainCheck: req.SkipChainCheck})
	if err != nil {
		return nil, err
	}
	pipeline, err := alm.Pipeline()
	if err != nil {
		return nil, err
	}
	in, err := alm.Inputs(req.Mode)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:    req.Path,
		Mode:    req.Mode,
		Chain:   alm.Chain,
		Stages:  pipeline.Len(),
		Triples: alm.TripleCount(),
		Inputs:  len(in),
		Values:  remap.TotalLen(in),
		Workers: max(e.workers, 1),
	}
	logger.Debug("pipeline built", slog.Int("stages", res.Stages), slog.Int("triples", res.Triples), slog.Int("inputs", res.Inputs))

	if e.workers > 1 {
		reach, err := pipeline.ReachConcurrent(ctx, in, e.workers)
		if err != nil {
			return nil, fmt.Errorf("failed to solve %s: %w", describe(req.Path), err)
		}
		res.Answer, res.Fragments = reach.Min, reach.Fragments
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cur := pipeline.PropagateEach(in, func(i int, st *remap.Table, out []remap.Interval) {
		logger.Debug("stage applied", slog.Int("stage", i), slog.String("name", st.Name()), slog.Int("fragments", len(out)))
	})
	res.Fragments = len(cur)
	res.Answer, err = remap.MinStart(cur)
	if err != nil {
		return nil, fmt.Errorf("failed to solve %s: %w", describe(req.Path), err)
	}
	return res, nil
}

// cachedResult rebuilds a Result from a completed run.
func cachedResult(prev *state.Run, req SolveRequest, took time.Duration) *Result {
	var chain []string
	if len(prev.Chain) > 0 {
		chain = prev.Chain
	}
	return &Result{
		RunID:     prev.ID,
		Path:      req.Path,
		Mode:      req.Mode,
		Answer:    *prev.Answer,
		Chain:     chain,
		Stages:    prev.Stages,
		Triples:   prev.Triples,
		Inputs:    prev.Inputs,
		Values:    prev.Values,
		Fragments: prev.Fragments,
		Workers:   prev.Workers,
		Cached:    true,
		Duration:  took,
	}
}

func describe(path string) string {
	if path == "" {
		return "almanac"
	}
	return path
}
