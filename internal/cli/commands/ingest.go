package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/leapstack-labs/widarcfg/internal/state"
	"github.com/spf13/cobra"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [dir...]",
		Short: "Store the subband record set in the state database",
		Long: `Build the subband record set and store it in the state database as one
ingest run. Rows of an observation that is ingested again replace the rows
stored for it before. Skipped observations are recorded with the run.`,
		Example: `  # Ingest the whole archive into the default sqlite database
  widarcfg ingest --root /data/evla

  # Ingest into DuckDB
  widarcfg ingest --backend duckdb --state subbands.duckdb`,
		RunE: runIngest,
	}
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	paths, err := cmdCtx.ProgramPaths(args)
	if err != nil {
		return err
	}

	store, err := cmdCtx.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := ingest(ctx, cmdCtx, store, cmdCtx.Cfg.Root, paths)
	if err != nil {
		return err
	}

	if r.Structured() {
		return r.Data(run, nil, nil)
	}
	if run.Skipped > 0 {
		r.Warning(fmt.Sprintf("skipped %d observations (see: widarcfg runs %s)", run.Skipped, run.ID))
	}
	r.Success(fmt.Sprintf("Ingested %d observations, %d rows", run.Executions, run.Rows))
	r.Muted(fmt.Sprintf("Run %s saved to %s", run.ID, cmdCtx.Cfg.StatePath))
	return nil
}

// ingest reads paths and stores their rows as one run. A run that fails
// part way is marked failed and its error returned.
func ingest(ctx context.Context, c *CommandContext, store *state.Store, root string, paths []string) (*state.Run, error) {
	run, err := store.CreateRun(ctx, root)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("ingest started", "run", run.ID, "programs", len(paths))

	counts, err := ingestRun(ctx, c, store, run.ID, paths)
	if err != nil {
		if cerr := store.CompleteRun(ctx, run.ID, state.RunStatusFailed, counts, err.Error()); cerr != nil {
			c.Logger.Error("failed to mark run failed", "run", run.ID, "err", cerr)
		}
		return nil, err
	}
	if err := store.CompleteRun(ctx, run.ID, state.RunStatusCompleted, counts, ""); err != nil {
		return nil, err
	}
	c.Logger.Info("ingest completed", "run", run.ID, "rows", counts.Rows, "skipped", counts.Skipped)
	return store.GetRun(ctx, run.ID)
}

func ingestRun(ctx context.Context, c *CommandContext, store *state.Store, runID string, paths []string) (state.RunCounts, error) {
	var counts state.RunCounts

	execs, skips, err := execution.ReadPaths(ctx, paths, c.BatchOptions())
	if err != nil {
		return counts, err
	}
	rows, rowSkips, err := execution.CollectRows(ctx, execs, c.BatchOptions())
	if err != nil {
		return counts, err
	}
	skips = append(skips, rowSkips...)

	counts.Executions = len(execs) - len(rowSkips)
	counts.Skipped = len(skips)
	for _, s := range skips {
		if err := store.RecordSkip(ctx, runID, s.Path, s.Err.Error()); err != nil {
			return counts, err
		}
	}
	if err := store.SaveRows(ctx, runID, rows); err != nil {
		return counts, err
	}
	counts.Rows = len(rows)
	return counts, nil
}
