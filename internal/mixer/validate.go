package mixer

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/widarcfg/internal/batch"
	"github.com/leapstack-labs/widarcfg/internal/execution"
)

// UsedFlag returns the first non-Okay used-offset flag over every subband
// of the representative configurations of ex, walking setups, then
// basebands, then subbands. Okay means every subband passed. A subband
// without an integration time has an unbounded fmin and fails.
func UsedFlag(ex *execution.Execution) (Flag, error) {
	bmax := ex.Source.MaxBaseline
	for item := range ex.Subbands() {
		f, err := NewFreqs(item.Config, item.Subband, bmax)
		if err != nil {
			return 0, err
		}
		flag, err := f.UsedFlag()
		if err != nil {
			return 0, err
		}
		if flag != Okay {
			return flag, nil
		}
	}
	return Okay, nil
}

// Check is the classification of one subband.
type Check struct {
	Setup string
	Valid bool
	Freqs
	Opt  Flag
	Used Flag
}

// Checks classifies every subband of the representative configurations
// of ex, in the order UsedFlag walks them.
func Checks(ex *execution.Execution) ([]Check, error) {
	bmax := ex.Source.MaxBaseline
	var out []Check
	for item := range ex.Subbands() {
		f, err := NewFreqs(item.Config, item.Subband, bmax)
		if err != nil {
			return nil, err
		}
		opt, err := f.OptFlag()
		if err != nil {
			return nil, err
		}
		used, err := f.UsedFlag()
		if err != nil {
			return nil, err
		}
		out = append(out, Check{Setup: item.Config.Setup.ID, Valid: item.Subband.Valid, Freqs: f, Opt: opt, Used: used})
	}
	return out, nil
}

// Invalid is an execution whose used offsets fall outside the window.
type Invalid struct {
	Execution *execution.Execution
	Flag      Flag
}

// Options configures ValidateUsed.
type Options struct {
	Workers int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// ValidateUsed runs UsedFlag over execs and returns the executions that
// are not Okay, in input order. Executions that cannot be classified are
// logged and left out.
func ValidateUsed(ctx context.Context, execs []*execution.Execution, opts Options) []Invalid {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := batch.Settle(ctx, opts.Workers, execs, func(_ context.Context, ex *execution.Execution) (Flag, error) {
		return UsedFlag(ex)
	})

	var out []Invalid
	for _, r := range results {
		ex := execs[r.Index]
		if r.Err != nil {
			logger.Warn("skipping mixer validation", "label", ex.Label, "err", r.Err)
			continue
		}
		if r.Value != Okay {
			out = append(out, Invalid{Execution: ex, Flag: r.Value})
		}
	}
	return out
}
