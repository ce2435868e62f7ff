package remap

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Reach summarises a propagation: the lowest reachable value and how many
// fragments the last stage produced.
type Reach struct {
	Min       uint64
	Fragments int
}

// MinimumReachableConcurrent computes the same result as MinimumReachable,
// propagating each input interval on its own goroutine with at most workers
// running at once. workers < 1 means GOMAXPROCS.
func (p *Pipeline) MinimumReachableConcurrent(ctx context.Context, in []Interval, workers int) (uint64, error) {
	r, err := p.ReachConcurrent(ctx, in, workers)
	if err != nil {
		return 0, err
	}
	return r.Min, nil
}

// ReachConcurrent is MinimumReachableConcurrent that also counts fragments.
// Intervals are split independently of each other, so the count equals
// len(p.Propagate(in)).
func (p *Pipeline) ReachConcurrent(ctx context.Context, in []Interval, workers int) (Reach, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu    sync.Mutex
		reach Reach
		found bool
	)

	for _, iv := range in {
		if iv.Empty() {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := p.Propagate([]Interval{iv})
			m, err := MinStart(out)
			if err != nil {
				return err
			}
			mu.Lock()
			reach.Fragments += len(out)
			if !found || m < reach.Min {
				reach.Min, found = m, true
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Reach{}, err
	}
	if err := ctx.Err(); err != nil {
		return Reach{}, err
	}
	if !found {
		return Reach{}, fmt.Errorf("minimum reachable over %d intervals: %w", len(in), ErrEmptyInputSet)
	}
	return reach, nil
}
