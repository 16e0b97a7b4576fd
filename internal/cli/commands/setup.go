// Package commands implements the widarcfg subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/widarcfg/internal/cli/config"
	"github.com/leapstack-labs/widarcfg/internal/cli/output"
	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/leapstack-labs/widarcfg/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig(ctx)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// BatchOptions returns batch reader options with the command logger.
func (c *CommandContext) BatchOptions() execution.BatchOptions {
	opts := c.Cfg.BatchOptions()
	opts.Logger = c.Logger
	return opts
}

// ProgramPaths returns the programs named by args, otherwise every program
// under the configured archive root. An argument that is not a directory
// is taken as a label relative to the root.
func (c *CommandContext) ProgramPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		paths := make([]string, len(args))
		for i, a := range args {
			if info, err := os.Stat(a); err == nil && info.IsDir() {
				paths[i] = a
				continue
			}
			paths[i] = filepath.Join(c.Cfg.Root, filepath.FromSlash(a))
		}
		return paths, nil
	}
	if err := c.Cfg.ValidateRoot(); err != nil {
		return nil, err
	}
	return execution.ProgramPaths(c.Cfg.Root, c.Cfg.IncludeTests)
}

// ReadExecutions opens the programs named by args, or all of them.
func (c *CommandContext) ReadExecutions(ctx context.Context, args []string) ([]*execution.Execution, []execution.Skip, error) {
	paths, err := c.ProgramPaths(args)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("reading observations", "count", len(paths))
	return execution.ReadPaths(ctx, paths, c.BatchOptions())
}

// OpenStore opens the configured state database, creating its directory.
func (c *CommandContext) OpenStore(ctx context.Context) (*state.Store, error) {
	path := c.Cfg.StatePath
	if path != ":memory:" && path != "" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}
	return state.Open(ctx, state.Backend(c.Cfg.Backend), path, c.Logger)
}

// reportSkips prints a warning line per skipped observation.
func reportSkips(r *output.Renderer, skips []execution.Skip) {
	for _, s := range skips {
		r.Warning(fmt.Sprintf("skipped %s: %v", s.Path, s.Err))
	}
}
