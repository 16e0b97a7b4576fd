package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/widarcfg/internal/cli/output"
	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/leapstack-labs/widarcfg/internal/mixer"
	"github.com/spf13/cobra"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Detail bool // Classify every subband instead of listing failures
	Strict bool // Fail when any observation is not Okay
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [dir...]",
		Short: "Check WIDAR mixer offsets against the allowed window",
		Long: `Classify the used mixer offset of every subband against the window
bounded below by fringe rotation and integration time and above by a fraction
of the subband bandwidth.

Only observations with at least one subband outside the window are listed.
Use --detail to show the optimum and used classification of every subband.`,
		Example: `  # Every observation under the archive root
  widarcfg validate --root /data/evla

  # Per-subband detail for one observation
  widarcfg validate 2021/01/20A-123 --detail

  # Fail in CI when any offset is out of range
  widarcfg validate --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Detail, "detail", false, "Classify every subband")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with an error when any observation fails")
	return cmd
}

// InvalidInfo is one observation whose used offsets are out of range.
type InvalidInfo struct {
	Label string `json:"label" yaml:"label"`
	Flag  string `json:"flag" yaml:"flag"`
}

// CheckInfo is the classification of one subband.
type CheckInfo struct {
	Label    string  `json:"label" yaml:"label"`
	Setup    string  `json:"loif" yaml:"loif"`
	Baseband string  `json:"baseband" yaml:"baseband"`
	Subband  int     `json:"subband" yaml:"subband"`
	Valid    bool    `json:"valid" yaml:"valid"`
	FMin     float64 `json:"f_min" yaml:"f_min"`
	FMax     float64 `json:"f_max" yaml:"f_max"`
	FOpt     float64 `json:"f_opt" yaml:"f_opt"`
	FUsed    float64 `json:"f_used" yaml:"f_used"`
	Opt      string  `json:"opt" yaml:"opt"`
	Used     string  `json:"used" yaml:"used"`
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	execs, skips, err := cmdCtx.ReadExecutions(cmd.Context(), args)
	if err != nil {
		return err
	}
	reportSkips(r, skips)

	if opts.Detail {
		return validateDetail(cmdCtx, execs)
	}

	invalid := mixer.ValidateUsed(cmd.Context(), execs, mixer.Options{
		Workers: cmdCtx.Cfg.Workers,
		Logger:  cmdCtx.Logger,
	})

	infos := make([]InvalidInfo, len(invalid))
	cells := make([][]string, len(invalid))
	for i, inv := range invalid {
		infos[i] = InvalidInfo{Label: inv.Execution.Label, Flag: inv.Flag.String()}
		cells[i] = []string{inv.Execution.Label, flagText(r, inv.Flag)}
	}

	if !r.Structured() && len(invalid) == 0 {
		r.Success(fmt.Sprintf("All %d observations have mixer offsets in range", len(execs)))
	} else if err := r.Data(infos, []string{"label", "flag"}, cells); err != nil {
		return err
	}

	if opts.Strict && len(invalid) > 0 {
		return fmt.Errorf("%d of %d observations have mixer offsets out of range", len(invalid), len(execs))
	}
	return nil
}

func validateDetail(cmdCtx *CommandContext, execs []*execution.Execution) error {
	r := cmdCtx.Renderer

	var (
		infos []CheckInfo
		cells [][]string
	)
	for _, ex := range execs {
		checks, err := mixer.Checks(ex)
		if err != nil {
			cmdCtx.Logger.Warn("skipping mixer validation", "label", ex.Label, "err", err)
			r.Warning(fmt.Sprintf("skipped %s: %v", ex.Label, err))
			continue
		}
		for _, c := range checks {
			infos = append(infos, CheckInfo{
				Label:    ex.Label,
				Setup:    c.Setup,
				Baseband: c.Baseband,
				Subband:  c.Subband,
				Valid:    c.Valid,
				FMin:     c.FMin,
				FMax:     c.FMax,
				FOpt:     c.FOpt,
				FUsed:    c.FUsed,
				Opt:      c.Opt.String(),
				Used:     c.Used.String(),
			})
			cells = append(cells, []string{
				ex.Label, c.Setup, c.Baseband, strconv.Itoa(c.Subband), strconv.FormatBool(c.Valid),
				formatHz(c.FMin), formatHz(c.FMax), formatHz(c.FOpt), formatHz(c.FUsed),
				flagText(r, c.Opt), flagText(r, c.Used),
			})
		}
	}
	if infos == nil {
		infos = []CheckInfo{}
	}
	return r.Data(infos, []string{"label", "loif", "baseband", "subband", "valid", "f_min", "f_max", "f_opt", "f_used", "opt", "used"}, cells)
}

func flagText(r *output.Renderer, f mixer.Flag) string {
	if r.EffectiveMode() != output.ModeText {
		return f.String()
	}
	if f.Bad() {
		return r.Styles().Error.Render(f.String())
	}
	return r.Styles().Success.Render(f.String())
}

func formatHz(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
