package commands

import (
	"fmt"

	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/spf13/cobra"
)

// NewTableCommand creates the table command.
func NewTableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table [dir...]",
		Short: "Build the subband record set",
		Long: `Build one record per valid subband of every representative configuration.

Without arguments every program under the archive root is read. Observations
that fail to parse are reported and skipped.`,
		Example: `  # Every program under the archive root, as CSV
  widarcfg table --root /data/evla -o csv > subbands.csv

  # Two observations as JSON
  widarcfg table 2021/01/20A-123 2021/02/20A-456 -o json`,
		RunE: runTable,
	}
	return cmd
}

func runTable(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	execs, skips, err := cmdCtx.ReadExecutions(cmd.Context(), args)
	if err != nil {
		return err
	}
	rows, rowSkips, err := execution.CollectRows(cmd.Context(), execs, cmdCtx.BatchOptions())
	if err != nil {
		return fmt.Errorf("failed to collect rows: %w", err)
	}
	reportSkips(r, append(skips, rowSkips...))

	if rows == nil {
		rows = []execution.Row{}
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = row.Values()
	}
	return r.Data(rows, execution.Columns, cells)
}
