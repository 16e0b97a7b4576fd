package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/widarcfg/internal/batch"
	"github.com/leapstack-labs/widarcfg/internal/vci"
	"github.com/spf13/cobra"
)

// NewVCICommand creates the vci command group.
func NewVCICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vci",
		Short: "Inspect and rewrite VCI documents",
		Long:  `Commands operating on WIDAR correlator configuration (VCI) documents.`,
	}
	cmd.AddCommand(newVCISummaryCommand())
	cmd.AddCommand(newVCIFormatCommand())
	return cmd
}

func newVCISummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>...",
		Short: "Print the baseband and subband layout of VCI documents",
		Long: `Print the baseband and subband layout of one or more VCI documents.
Documents are parsed in parallel; the first one that fails to parse stops
the command.`,
		Example: `  widarcfg vci summary 2021/01/20A-123/20A-123.01.vci
  widarcfg vci summary 2021/01/20A-123/*.vci -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			docs, err := batch.Map(cmd.Context(), cmdCtx.Cfg.Workers, args,
				func(_ context.Context, path string) (*vci.Document, error) {
					return vci.ParseFile(path)
				})
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if r.Structured() {
				return r.Data(docs, nil, nil)
			}
			for _, doc := range docs {
				r.Printf("%s", doc.Summary())
			}
			return nil
		},
	}
}

func newVCIFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "format <in> <out>",
		Short:   "Rewrite a VCI document pretty-printed as UTF-8",
		Example: `  widarcfg vci format raw.vci pretty.vci`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			doc, err := vci.ParseFile(args[0])
			if err != nil {
				return err
			}
			if err := doc.Write(args[1]); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}
			cmdCtx.Logger.Debug("formatted vci document", "in", args[0], "out", args[1])
			cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %s", args[1]))
			return nil
		},
	}
}
