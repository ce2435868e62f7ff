package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/leapstack-labs/seedmap/internal/cli/output"
	"github.com/leapstack-labs/seedmap/internal/engine"
	"github.com/spf13/cobra"
)

// SolveOptions holds options for the solve command.
type SolveOptions struct {
	NoRecord       bool
	Watch          bool
	SkipChainCheck bool
}

// SolveOutput is the JSON form of a solve.
type SolveOutput struct {
	RunID      string   `json:"run_id,omitempty"`
	Path       string   `json:"path"`
	Mode       string   `json:"mode"`
	Answer     uint64   `json:"answer"`
	Chain      []string `json:"chain,omitempty"`
	Stages     int      `json:"stages"`
	Triples    int      `json:"triples,omitempty"`
	Inputs     int      `json:"inputs"`
	Values     uint64   `json:"values,omitempty"`
	Fragments  int      `json:"fragments,omitempty"`
	Workers    int      `json:"workers"`
	Cached     bool     `json:"cached"`
	DurationMS float64  `json:"duration_ms"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand() *cobra.Command {
	opts := &SolveOptions{}

	cmd := &cobra.Command{
		Use:   "solve <file>",
		Short: "Find the lowest location reachable from an almanac's seeds",
		Long: `Parse an almanac, push its seeds through every map and print the lowest
location reached.

With --mode points every number on the seeds line is one seed. With
--mode ranges (the default) the numbers are read as start/length pairs and
whole ranges are propagated without enumerating them.

Each solve is recorded in the state database unless --no-record is given.`,
		Example: `  # Solve with seed ranges
  seedmap solve almanac.txt

  # Treat seeds as individual values
  seedmap solve almanac.txt --mode points

  # Spread the ranges over 8 workers and print JSON
  seedmap solve almanac.txt --workers 8 -o json

  # Re-solve whenever the file changes
  seedmap solve almanac.txt --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "Do not record the run in the state database")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Watch the file and solve again on every change")
	cmd.Flags().BoolVar(&opts.SkipChainCheck, "skip-chain-check", false, "Accept maps that do not form a <from>-to-<to> chain")

	return cmd
}

func runSolve(cmd *cobra.Command, path string, opts *SolveOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, EngineOptions{Record: !opts.NoRecord})
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	req := engine.SolveRequest{
		Path:           path,
		Mode:           cmdCtx.Cfg.Mode,
		SkipChainCheck: opts.SkipChainCheck,
	}

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path))
		return cmdCtx.Engine.Watch(ctx, req, func(res *engine.Result, err error) {
			if err != nil {
				r.Error(err.Error())
				return
			}
			if rerr := renderSolve(r, res); rerr != nil {
				r.Error(rerr.Error())
			}
		})
	}

	res, err := cmdCtx.Engine.Solve(contextOf(cmd), req)
	if err != nil {
		return err
	}
	return renderSolve(r, res)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func renderSolve(r *output.Renderer, res *engine.Result) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(solveOutput(res))
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Lowest location"))
		r.Println("")
		r.Println(output.FormatKeyValue("Answer", fmt.Sprintf("%d", res.Answer)))
		solveDetails(r, res)
		return nil
	default:
		r.Answer("Lowest location", res.Answer)
		solveDetails(r, res)
		return nil
	}
}

func solveDetails(r *output.Renderer, res *engine.Result) {
	r.KeyValue("File", res.Path)
	r.KeyValue("Mode", res.Mode.String())
	if res.Cached {
		r.KeyValue("Run", res.RunID+" (reused)")
		return
	}
	if len(res.Chain) > 0 {
		r.KeyValue("Chain", strings.Join(res.Chain, " → "))
	}
	r.KeyValue("Stages", fmt.Sprintf("%d (%s triples)", res.Stages, r.Number(uint64(res.Triples)))) //nolint:gosec // counts are non-negative
	r.KeyValue("Inputs", fmt.Sprintf("%d intervals, %s values", res.Inputs, r.Number(res.Values)))
	if res.Fragments > 0 {
		r.KeyValue("Fragments", fmt.Sprintf("%d", res.Fragments))
	}
	r.KeyValue("Workers", fmt.Sprintf("%d", res.Workers))
	if res.RunID != "" {
		r.KeyValue("Run", res.RunID)
	}
	r.KeyValue("Took", res.Duration.Round(time.Microsecond).String())
}

func solveOutput(res *engine.Result) SolveOutput {
	return SolveOutput{
		RunID:      res.RunID,
		Path:       res.Path,
		Mode:       res.Mode.String(),
		Answer:     res.Answer,
		Chain:      res.Chain,
		Stages:     res.Stages,
		Triples:    res.Triples,
		Inputs:     res.Inputs,
		Values:     res.Values,
		Fragments:  res.Fragments,
		Workers:    res.Workers,
		Cached:     res.Cached,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
}
