package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/widarcfg/internal/cli/output"
	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <dir | label | year month project>",
		Short: "Reconstruct the WIDAR configurations of one observation",
		Long: `Parse one observation directory and show its header facts, LOIF setups
and the configuration resolved for every scan.

The observation can be given as a directory, as a label relative to the
archive root ("2021/01/20A-123") or as year, month and project.

Output adapts to environment:
  - Terminal: Styled text
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Parse a directory
  widarcfg parse /data/evla/2021/01/20A-123

  # Parse by label under the archive root
  widarcfg parse --root /data/evla 2021/01/20A-123

  # Output as JSON
  widarcfg parse 2021 01 20A-123 -o json`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("expected a directory, a label or year month project, got %d arguments", len(args))
			}
			return nil
		},
		RunE: runParse,
	}
	return cmd
}

// SetupInfo describes one LOIF setup.
type SetupInfo struct {
	ID         string     `json:"id" yaml:"id"`
	Receiver   string     `json:"receiver" yaml:"receiver"`
	Mode       bool       `json:"mode" yaml:"mode"`
	EightBit   bool       `json:"eight_bit" yaml:"eight_bit"`
	Flag       int        `json:"flag" yaml:"flag"`
	UsesOffset bool       `json:"uses_offset" yaml:"uses_offset"`
	Freqs      [4]float64 `json:"freqs" yaml:"freqs"`
	Offsets    [4]float64 `json:"offsets" yaml:"offsets"`
	Scans      int        `json:"scans" yaml:"scans"`
}

// ScanInfo describes the configuration resolved for one scan.
type ScanInfo struct {
	Index    int      `json:"index" yaml:"index"`
	Field    string   `json:"field" yaml:"field"`
	LoIf     string   `json:"loif" yaml:"loif"`
	VCI      string   `json:"vci" yaml:"vci"`
	ConfigID string   `json:"config_id" yaml:"config_id"`
	Intents  []string `json:"intents" yaml:"intents"`
}

// ParseOutput is the structured output of the parse command.
type ParseOutput struct {
	Label       string      `json:"label" yaml:"label"`
	Path        string      `json:"path" yaml:"path"`
	Script      string      `json:"script" yaml:"script"`
	Encoding    string      `json:"encoding" yaml:"encoding"`
	Dialect     string      `json:"dialect" yaml:"dialect"`
	Project     string      `json:"project" yaml:"project"`
	DBID        string      `json:"dbid" yaml:"dbid"`
	MJD         float64     `json:"mjd" yaml:"mjd"`
	MaxConfig   string      `json:"max_config" yaml:"max_config"`
	MaxBaseline float64     `json:"max_baseline" yaml:"max_baseline"`
	ValidCount  int         `json:"valid_subbands" yaml:"valid_subbands"`
	Setups      []SetupInfo `json:"setups" yaml:"setups"`
	Scans       []ScanInfo  `json:"scans" yaml:"scans"`
}

func runParse(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	ex, err := openObservation(cmdCtx, args)
	if err != nil {
		return err
	}

	out := describe(ex)
	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Data(out, nil, nil)
	}
	return parseText(r, out)
}

// openObservation opens a directory argument directly and anything else
// as a label under the archive root.
func openObservation(c *CommandContext, args []string) (*execution.Execution, error) {
	opts := execution.Options{Logger: c.Logger}
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return execution.Open(args[0], opts)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", args[0], err)
		}
		return execution.OpenLabel(c.Cfg.Root, opts, filepath.FromSlash(args[0]))
	}
	return execution.OpenLabel(c.Cfg.Root, opts, args...)
}

func describe(ex *execution.Execution) ParseOutput {
	out := ParseOutput{
		Label:       ex.Label,
		Path:        ex.Path,
		Script:      ex.ScriptPath,
		Encoding:    ex.Source.Encoding,
		Dialect:     ex.Source.Dialect.String(),
		Project:     ex.Source.ProjectCode,
		DBID:        ex.Source.DBID,
		MJD:         ex.Source.StartMJD,
		MaxConfig:   ex.Source.MaxArrayConfig.String(),
		MaxBaseline: ex.Source.MaxBaseline,
		Setups:      []SetupInfo{},
		Scans:       []ScanInfo{},
	}
	for range ex.ValidSubbands() {
		out.ValidCount++
	}
	for _, l := range ex.LoIfs() {
		s, o := l.Setup, l.Offset
		out.Setups = append(out.Setups, SetupInfo{
			ID:         s.ID,
			Receiver:   s.Receiver,
			Mode:       s.Mode,
			EightBit:   s.IsEightBit,
			Flag:       s.Flag,
			UsesOffset: s.UsesOffset,
			Freqs:      [4]float64{s.AC1, s.AC2, s.BD1, s.BD2},
			Offsets:    [4]float64{o.AC1, o.BD1, o.AC2, o.BD2},
			Scans:      len(ex.ConfigsBySetup(s.ID)),
		})
	}
	for _, idx := range ex.ScanIndices() {
		cfg, _ := ex.Config(idx)
		out.Scans = append(out.Scans, ScanInfo{
			Index:    idx,
			Field:    cfg.Scan.Field,
			LoIf:     cfg.Setup.ID,
			VCI:      filepath.Base(cfg.VCI.Path),
			ConfigID: cfg.VCI.ConfigID,
			Intents:  cfg.Scan.Intents,
		})
	}
	return out
}

func parseText(r *output.Renderer, out ParseOutput) error {
	r.Header(1, out.Label)
	r.KeyValue("Script", out.Script)
	r.KeyValue("Encoding", out.Encoding)
	r.KeyValue("Dialect", out.Dialect)
	r.KeyValue("Project", out.Project)
	r.KeyValue("DBID", out.DBID)
	r.KeyValue("Start MJD", strconv.FormatFloat(out.MJD, 'f', -1, 64))
	r.KeyValue("Max config", fmt.Sprintf("%s (%g m)", out.MaxConfig, out.MaxBaseline))
	r.KeyValue("Valid subbands", out.ValidCount)
	r.Println()

	r.Header(2, "Setups")
	rows := make([][]string, 0, len(out.Setups))
	for _, s := range out.Setups {
		rows = append(rows, []string{
			s.ID, s.Receiver, strconv.FormatBool(s.Mode), strconv.FormatBool(s.EightBit),
			strconv.Itoa(s.Flag), strconv.Itoa(s.Scans),
			joinFloats(s.Freqs[:], 1e6), joinFloats(s.Offsets[:], 1e6),
		})
	}
	if err := r.Table([]string{"loif", "rcvr", "mode", "8bit", "flag", "scans", "freqs (MHz)", "offsets (MHz)"}, rows); err != nil {
		return err
	}
	r.Println()

	r.Header(2, "Scans")
	rows = rows[:0]
	for _, s := range out.Scans {
		rows = append(rows, []string{
			strconv.Itoa(s.Index), s.Field, s.LoIf, s.VCI, s.ConfigID, strings.Join(s.Intents, " "),
		})
	}
	return r.Table([]string{"scan", "field", "loif", "vci", "config", "intents"}, rows)
}

func joinFloats(vs []float64, unit float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v/unit, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}
