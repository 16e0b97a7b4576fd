package execution

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/leapstack-labs/widarcfg/internal/batch"
	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// KnownInvalid lists projects whose scripts are known not to parse.
var KnownInvalid = []string{
	"53714A-242A",
}

// ErrKnownInvalid marks an observation skipped because it is listed as
// known invalid.
var ErrKnownInvalid = errors.New("known invalid")

// BatchOptions configures the batch readers.
type BatchOptions struct {
	Workers int
	// KnownInvalid overrides the package default when non-nil.
	KnownInvalid []string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

func (o BatchOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o BatchOptions) knownInvalid() []string {
	if o.KnownInvalid != nil {
		return o.KnownInvalid
	}
	return KnownInvalid
}

// Skip records an observation left out of a batch.
type Skip struct {
	Path string
	Err  error
}

// ParseIfValid opens the observation at path unless it is known invalid.
// Recoverable parse failures are returned as errors for the caller to
// skip; anything else should abort the batch.
func ParseIfValid(path string, opts BatchOptions) (*Execution, error) {
	if slices.Contains(opts.knownInvalid(), filepath.Base(path)) {
		return nil, ErrKnownInvalid
	}
	return Open(path, Options{Logger: opts.Logger})
}

// ReadPaths opens every observation in paths. Items that fail with a
// recoverable error are logged and reported as skips; results keep the
// order of paths.
func ReadPaths(ctx context.Context, paths []string, opts BatchOptions) ([]*Execution, []Skip, error) {
	logger := opts.logger()

	results := batch.Settle(ctx, opts.Workers, paths, func(_ context.Context, p string) (*Execution, error) {
		return ParseIfValid(p, opts)
	})

	var (
		execs []*Execution
		skips []Skip
	)
	for _, r := range results {
		path := paths[r.Index]
		switch {
		case r.Err == nil:
			execs = append(execs, r.Value)
		case errors.Is(r.Err, ErrKnownInvalid):
			logger.Warn("skipping known invalid observation", "path", path)
			skips = append(skips, Skip{Path: path, Err: r.Err})
		case core.Recoverable(r.Err):
			logger.Warn("skipping observation", "path", path, "err", r.Err)
			skips = append(skips, Skip{Path: path, Err: r.Err})
		default:
			return nil, nil, r.Err
		}
	}
	return execs, skips, nil
}

// ReadAll opens every non-test program under root.
func ReadAll(ctx context.Context, root string, opts BatchOptions) ([]*Execution, []Skip, error) {
	paths, err := ProgramPaths(root, false)
	if err != nil {
		return nil, nil, err
	}
	return ReadPaths(ctx, paths, opts)
}

// CollectRows flattens executions into one record set, in execution
// order. Executions whose rows cannot be built are logged and skipped.
func CollectRows(ctx context.Context, execs []*Execution, opts BatchOptions) ([]Row, []Skip, error) {
	logger := opts.logger()

	results := batch.Settle(ctx, opts.Workers, execs, func(_ context.Context, ex *Execution) ([]Row, error) {
		return ex.Rows()
	})

	var (
		rows  []Row
		skips []Skip
		seen  = make(map[RowKey]bool)
	)
	for _, r := range results {
		ex := execs[r.Index]
		if r.Err != nil {
			if !core.Recoverable(r.Err) {
				return nil, nil, r.Err
			}
			logger.Warn("skipping rows", "label", ex.Label, "err", r.Err)
			skips = append(skips, Skip{Path: ex.Path, Err: r.Err})
			continue
		}
		for _, row := range r.Value {
			if seen[row.Key()] {
				return nil, nil, core.NewParseError(ex.Label, "rows", "duplicate row %+v", row.Key())
			}
			seen[row.Key()] = true
		}
		rows = append(rows, r.Value...)
	}
	return rows, skips, nil
}
