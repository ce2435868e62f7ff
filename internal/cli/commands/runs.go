package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/seedmap/internal/cli/output"
	"github.com/leapstack-labs/seedmap/internal/state"
	"github.com/spf13/cobra"
)

// RunEntry is the JSON form of a recorded run.
type RunEntry struct {
	ID          string     `json:"id"`
	InputPath   string     `json:"input_path"`
	InputHash   string     `json:"input_hash"`
	Mode        string     `json:"mode"`
	Workers     int        `json:"workers"`
	Status      string     `json:"status"`
	Answer      *uint64    `json:"answer,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMS  float64    `json:"duration_ms,omitempty"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded solves",
		Long:  `List solves recorded in the state database, newest first.`,
		Example: `  # Last 20 runs
  seedmap runs

  # Everything, as JSON
  seedmap runs --limit 0 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, EngineOptions{History: true})
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cmdCtx.Engine.Runs(contextOf(cmd), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		entries := make([]RunEntry, 0, len(runs))
		for _, run := range runs {
			entries = append(entries, runEntry(run))
		}
		return r.JSON(entries)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
	if len(runs) == 0 {
		r.Println("")
		r.Muted("No runs recorded yet. Run 'seedmap solve <file>' first.")
		return nil
	}
	r.Println("")

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		answer := "-"
		if run.Answer != nil {
			answer = r.Number(*run.Answer)
		}
		took := "-"
		if run.CompletedAt != nil {
			took = run.Duration().Round(time.Microsecond).String()
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			run.InputPath,
			run.Mode,
			string(run.Status),
			answer,
			took,
		})
	}
	r.Table([]string{"ID", "Started", "Input", "Mode", "Status", "Answer", "Took"}, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runEntry(run *state.Run) RunEntry {
	e := RunEntry{
		ID:          run.ID,
		InputPath:   run.InputPath,
		InputHash:   run.InputHash,
		Mode:        run.Mode,
		Workers:     run.Workers,
		Status:      string(run.Status),
		Answer:      run.Answer,
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
	if run.CompletedAt != nil {
		e.DurationMS = float64(run.Duration().Microseconds()) / 1000
	}
	return e
}
