// Package execution assembles one observation directory into its WIDAR
// configurations: every scan joined to its LOIF setup, its WIDAR offsets
// and the correlator configuration document in effect.
package execution

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/widarcfg/internal/evla"
	"github.com/leapstack-labs/widarcfg/internal/vci"
	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// WidarConfig is the configuration used for one scan.
type WidarConfig struct {
	Scan   evla.Scan
	Setup  evla.Setup
	Offset evla.Offset
	VCI    *vci.Document
}

// ConfigSubband is one subband of a representative configuration.
type ConfigSubband struct {
	Config   WidarConfig
	Baseband vci.Baseband
	Subband  vci.Subband
}

// Options configures Open.
type Options struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Execution is one observation: a script plus its VCI documents. It is
// read-only once opened.
type Execution struct {
	Path    string
	Label   string
	Year    string
	Month   string
	Project string

	ScriptPath string
	VCIPaths   []string

	Source    *evla.Source
	Setups    *evla.SetupTable
	Offsets   *evla.OffsetTable
	Scans     []evla.Scan
	Documents []*vci.Document

	configsByScan  map[int]WidarConfig
	configsBySetup map[string][]WidarConfig
	setupOrder     []string
}

// Open parses the observation directory at path. Any structural failure
// aborts construction.
func Open(path string, opts Options) (*Execution, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat observation: %w", err)
	}
	if !info.IsDir() {
		return nil, core.NewParseError(path, "observation", "not a directory")
	}

	ex := &Execution{Path: path}
	ex.Project = filepath.Base(path)
	ex.Month = filepath.Base(filepath.Dir(path))
	ex.Year = filepath.Base(filepath.Dir(filepath.Dir(path)))
	ex.Label = ex.Year + "/" + ex.Month + "/" + ex.Project

	scripts, err := filepath.Glob(filepath.Join(path, "*.evla"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	vcis, err := filepath.Glob(filepath.Join(path, "*.vci"))
	if err != nil {
		return nil, fmt.Errorf("failed to list vci files: %w", err)
	}
	sort.Strings(scripts)
	sort.Strings(vcis)

	switch {
	case len(scripts) == 0:
		return nil, core.NewParseError(ex.Label, "files", "no .evla files found")
	case len(vcis) == 0:
		return nil, core.NewParseError(ex.Label, "files", "no .vci files found")
	case len(scripts) > 1:
		return nil, core.NewParseError(ex.Label, "files", "more than one .evla file found")
	}
	ex.ScriptPath = scripts[0]
	ex.VCIPaths = vcis

	logger.Debug("opening execution", "label", ex.Label, "vci_files", len(vcis))

	for _, p := range vcis {
		doc, err := vci.ParseFile(p)
		if err != nil {
			return nil, err
		}
		ex.Documents = append(ex.Documents, doc)
	}

	if ex.Source, err = evla.Load(ex.ScriptPath); err != nil {
		return nil, err
	}
	if ex.Setups, err = evla.ParseSetups(ex.Source); err != nil {
		return nil, err
	}
	if ex.Offsets, err = evla.ParseOffsets(ex.Source); err != nil {
		return nil, err
	}
	if ex.Scans, err = evla.ParseScans(ex.Source); err != nil {
		return nil, err
	}
	if !evla.SameKeys(ex.Setups, ex.Offsets) {
		return nil, core.NewParseError(ex.ScriptPath, "LOIF offsets",
			"setup ids %v do not match offset ids %v", ex.Setups.IDs(), ex.Offsets.IDs())
	}

	if err := ex.assemble(); err != nil {
		return nil, err
	}

	logger.Debug("opened execution",
		"label", ex.Label,
		"dialect", ex.Source.Dialect.String(),
		"scans", len(ex.Scans),
		"setups", ex.Setups.Len(),
	)
	return ex, nil
}

// OpenLabel opens an observation below root, either by its label
// ("2021/01/20A-123") or by year, month and project.
func OpenLabel(root string, opts Options, parts ...string) (*Execution, error) {
	switch len(parts) {
	case 1, 3:
		return Open(filepath.Join(append([]string{root}, parts...)...), opts)
	default:
		return nil, fmt.Errorf("%w: expected a label or year, month and project, got %d arguments",
			core.ErrValue, len(parts))
	}
}

func (ex *Execution) assemble() error {
	byScan, err := ResolveConfigs(ex.Scans, ex.Documents)
	if err != nil {
		var rerr *ResolveError
		if errors.As(err, &rerr) {
			return fmt.Errorf("%s: %w", ex.Label, err)
		}
		return err
	}

	ex.configsByScan = make(map[int]WidarConfig, len(ex.Scans))
	ex.configsBySetup = make(map[string][]WidarConfig)
	for _, scan := range ex.Scans {
		setup, ok := ex.Setups.Get(scan.LoIfID)
		if !ok {
			return core.NewParseError(ex.ScriptPath, "scans", "scan %d selects undefined %s", scan.Index, scan.LoIfID)
		}
		offset, _ := ex.Offsets.Get(scan.LoIfID)

		cfg := WidarConfig{Scan: scan, Setup: setup, Offset: offset, VCI: byScan[scan.Index]}
		ex.configsByScan[scan.Index] = cfg
		ex.configsBySetup[scan.LoIfID] = append(ex.configsBySetup[scan.LoIfID], cfg)
	}

	// Declaration order; setups that no scan selects have no configs.
	for _, id := range ex.Setups.IDs() {
		if len(ex.configsBySetup[id]) > 0 {
			ex.setupOrder = append(ex.setupOrder, id)
		}
	}
	return nil
}

// Config returns the configuration of the scan with the given index.
func (ex *Execution) Config(scan int) (WidarConfig, bool) {
	cfg, ok := ex.configsByScan[scan]
	return cfg, ok
}

// ScanIndices returns every scan index in script order.
func (ex *Execution) ScanIndices() []int {
	out := make([]int, len(ex.Scans))
	for i, s := range ex.Scans {
		out[i] = s.Index
	}
	return out
}

// SetupIDs returns the ids of the setups that at least one scan selects,
// in declaration order.
func (ex *Execution) SetupIDs() []string {
	return append([]string(nil), ex.setupOrder...)
}

// ConfigsBySetup returns the configurations of every scan selecting id,
// in scan order.
func (ex *Execution) ConfigsBySetup(id string) []WidarConfig {
	return append([]WidarConfig(nil), ex.configsBySetup[id]...)
}

// Representatives returns the first configuration of each selected setup.
// Baseband and subband layout repeats across the scans of one setup, so
// analyses that need one configuration per setup use these.
func (ex *Execution) Representatives() []WidarConfig {
	out := make([]WidarConfig, 0, len(ex.setupOrder))
	for _, id := range ex.setupOrder {
		out = append(out, ex.configsBySetup[id][0])
	}
	return out
}

// Subbands yields every subband of every representative configuration in
// setup, baseband, subband order, valid or not.
func (ex *Execution) Subbands() iter.Seq[ConfigSubband] {
	return func(yield func(ConfigSubband) bool) {
		for _, cfg := range ex.Representatives() {
			for _, bb := range cfg.VCI.Basebands {
				for _, sb := range bb.Subbands {
					if !yield(ConfigSubband{Config: cfg, Baseband: bb, Subband: sb}) {
						return
					}
				}
			}
		}
	}
}

// ValidSubbands yields the valid subbands of Subbands.
func (ex *Execution) ValidSubbands() iter.Seq[ConfigSubband] {
	return func(yield func(ConfigSubband) bool) {
		for item := range ex.Subbands() {
			if item.Subband.Valid && !yield(item) {
				return
			}
		}
	}
}

// AllInvalid reports whether no representative configuration has a valid
// subband.
func (ex *Execution) AllInvalid() bool {
	for range ex.ValidSubbands() {
		return false
	}
	return true
}

// LoIf is one setup paired with its offsets.
type LoIf struct {
	Setup  evla.Setup
	Offset evla.Offset
}

// LoIfs returns every declared setup with its offsets, in declaration order.
func (ex *Execution) LoIfs() []LoIf {
	out := make([]LoIf, 0, ex.Setups.Len())
	for _, id := range ex.Setups.IDs() {
		s, _ := ex.Setups.Get(id)
		o, _ := ex.Offsets.Get(id)
		out = append(out, LoIf{Setup: s, Offset: o})
	}
	return out
}
