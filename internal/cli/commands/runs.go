package commands

import (
	"strconv"
	"time"

	"github.com/leapstack-labs/widarcfg/internal/state"
	"github.com/spf13/cobra"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List ingest runs or show one run's skipped observations",
		Example: `  # Most recent runs
  widarcfg runs

  # Skipped observations of one run
  widarcfg runs 3f2c1a9e-5b7d-4c1e-9a8f-2d6b0e4c7a11`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showRun(cmd, args[0])
			}
			return listRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func listRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	store, err := cmdCtx.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*state.Run{}
	}

	cells := make([][]string, len(runs))
	for i, run := range runs {
		cells[i] = []string{
			run.ID, string(run.Status), run.StartedAt.Format(time.RFC3339),
			strconv.Itoa(run.Executions), strconv.Itoa(run.Rows), strconv.Itoa(run.Skipped),
		}
	}
	return cmdCtx.Renderer.Data(runs, []string{"id", "status", "started", "executions", "rows", "skipped"}, cells)
}

// RunDetail is a run together with its skipped observations.
type RunDetail struct {
	state.Run `yaml:",inline"`
	Skips     []state.Skip `json:"skips" yaml:"skips"`
}

func showRun(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	store, err := cmdCtx.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	skips, err := store.ListSkips(ctx, id)
	if err != nil {
		return err
	}
	if skips == nil {
		skips = []state.Skip{}
	}

	if r.Structured() {
		return r.Data(RunDetail{Run: *run, Skips: skips}, nil, nil)
	}

	r.Header(1, "Run "+run.ID)
	r.KeyValue("Root", run.Root)
	r.KeyValue("Status", string(run.Status))
	r.KeyValue("Started", run.StartedAt.Format(time.RFC3339))
	if run.CompletedAt != nil {
		r.KeyValue("Completed", run.CompletedAt.Format(time.RFC3339))
	}
	r.KeyValue("Executions", run.Executions)
	r.KeyValue("Rows", run.Rows)
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}
	r.Println()

	r.Header(2, "Skipped")
	cells := make([][]string, len(skips))
	for i, s := range skips {
		cells[i] = []string{s.Path, s.Reason}
	}
	return r.Table([]string{"path", "reason"}, cells)
}
