package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/seedmap/internal/cli/output"
	"github.com/leapstack-labs/seedmap/internal/engine"
	"github.com/spf13/cobra"
)

// TraceOutput is the JSON form of a trace.
type TraceOutput struct {
	Path  string           `json:"path"`
	Seed  uint64           `json:"seed"`
	Final uint64           `json:"final"`
	Steps []TraceStepEntry `json:"steps"`
}

// TraceStepEntry is one stage of a trace.
type TraceStepEntry struct {
	Stage   string  `json:"stage"`
	Input   uint64  `json:"input"`
	Output  uint64  `json:"output"`
	Matched bool    `json:"matched"`
	Triple  *string `json:"triple,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand() *cobra.Command {
	var skipChainCheck bool

	cmd := &cobra.Command{
		Use:   "trace <file> <seed>",
		Short: "Follow one seed through every map",
		Long: `Show the value of a single seed after each map of the almanac, and the
triple that moved it. Values outside every triple pass through unchanged.`,
		Example: `  # Trace seed 79
  seedmap trace almanac.txt 79

  # As JSON
  seedmap trace almanac.txt 79 -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q: must be a non-negative integer", args[1])
			}
			return runTrace(cmd, args[0], seed, skipChainCheck)
		},
	}

	cmd.Flags().BoolVar(&skipChainCheck, "skip-chain-check", false, "Accept maps that do not form a <from>-to-<to> chain")

	return cmd
}

func runTrace(cmd *cobra.Command, path string, seed uint64, skipChainCheck bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, EngineOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cmdCtx.Engine.Trace(contextOf(cmd), path, seed, skipChainCheck)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(traceOutput(res))
	}

	r.Header(1, fmt.Sprintf("Trace of seed %d", res.Seed))
	r.Println("")

	rows := make([][]string, 0, len(res.Steps))
	for _, st := range res.Steps {
		via := "identity"
		if st.Matched {
			via = st.Triple.String()
		}
		rows = append(rows, []string{st.Stage, r.Number(st.Input), r.Number(st.Output), via})
	}
	r.Table([]string{"Stage", "In", "Out", "Via"}, rows)
	r.Println("")
	r.Answer("Location", res.Final)
	return nil
}

func traceOutput(res *engine.TraceResult) TraceOutput {
	out := TraceOutput{Path: res.Path, Seed: res.Seed, Final: res.Final, Steps: make([]TraceStepEntry, 0, len(res.Steps))}
	for _, st := range res.Steps {
		e := TraceStepEntry{Stage: st.Stage, Input: st.Input, Output: st.Output, Matched: st.Matched}
		if st.Matched {
			s := st.Triple.String()
			e.Triple = &s
		}
		out.Steps = append(out.Steps, e)
	}
	return out
}
