package commands

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/leapstack-labs/widarcfg/internal/evla"
	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/spf13/cobra"
)

// EncodingsOptions holds options for the encodings command.
type EncodingsOptions struct {
	Files bool // List every script instead of counts
}

// NewEncodingsCommand creates the encodings command.
func NewEncodingsCommand() *cobra.Command {
	opts := &EncodingsOptions{}
	cmd := &cobra.Command{
		Use:   "encodings",
		Short: "Survey the text encodings of every script",
		Long: `Detect the text encoding of every observing script under the archive root
and count scripts per encoding.`,
		Example: `  # Counts per encoding
  widarcfg encodings --root /data/evla

  # Every script that is not UTF-8
  widarcfg encodings --files -o csv | grep -v utf-8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncodings(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Files, "files", false, "List the encoding of every script")
	return cmd
}

// EncodingCount is the number of scripts in one encoding.
type EncodingCount struct {
	Encoding string `json:"encoding" yaml:"encoding"`
	Scripts  int    `json:"scripts" yaml:"scripts"`
}

// ScriptEncoding is the detected encoding of one script.
type ScriptEncoding struct {
	Path     string `json:"path" yaml:"path"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

func runEncodings(cmd *cobra.Command, opts *EncodingsOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if err := cmdCtx.Cfg.ValidateRoot(); err != nil {
		return err
	}
	paths, err := execution.ScriptPaths(cmdCtx.Cfg.Root)
	if err != nil {
		return err
	}

	scripts := make([]ScriptEncoding, 0, len(paths))
	counts := make(map[string]int)
	for _, p := range paths {
		raw, err := os.ReadFile(p) //nolint:gosec // G304: path comes from the archive listing
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		enc := evla.DetectEncoding(raw)
		scripts = append(scripts, ScriptEncoding{Path: p, Encoding: enc})
		counts[enc]++
	}

	if opts.Files {
		cells := make([][]string, len(scripts))
		for i, s := range scripts {
			cells[i] = []string{s.Path, s.Encoding}
		}
		return r.Data(scripts, []string{"path", "encoding"}, cells)
	}

	out := make([]EncodingCount, 0, len(counts))
	for enc, n := range counts {
		out = append(out, EncodingCount{Encoding: enc, Scripts: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scripts != out[j].Scripts {
			return out[i].Scripts > out[j].Scripts
		}
		return out[i].Encoding < out[j].Encoding
	})
	cells := make([][]string, len(out))
	for i, c := range out {
		cells[i] = []string{c.Encoding, strconv.Itoa(c.Scripts)}
	}
	return r.Data(out, []string{"encoding", "scripts"}, cells)
}
