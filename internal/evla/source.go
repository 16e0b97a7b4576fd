// Package evla parses observing scripts (.evla files) into the records
// needed to rebuild WIDAR configurations: header facts, LOIF setups and
// offsets, and the ordered scan sequence.
//
// Two generations of the script format exist. The dialect is detected once
// per Source and selects the record grammar used by every parser here.
package evla

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// Source is a decoded script together with the facts extracted from its
// header comments. It is built once and never modified.
type Source struct {
	Path     string
	Text     string
	Encoding string

	Dialect     core.Dialect
	HasScanLoop bool

	// MaxArrayConfig is the declared configuration with the longest baseline.
	MaxArrayConfig core.ArrayConfig
	// MaxBaseline is the maximum baseline of MaxArrayConfig in meters.
	MaxBaseline float64

	ProjectCode string
	DBID        string
	StartMJD    float64
}

// Load reads and decodes the script at path.
func Load(path string) (*Source, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the observation directory listing
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	text, enc, err := Decode(raw)
	if err != nil {
		return nil, core.NewValueError(path, "%v", err)
	}

	src, err := NewSource(path, text)
	if err != nil {
		return nil, err
	}
	src.Encoding = enc
	return src, nil
}

// NewSource builds a Source from already-decoded text.
func NewSource(path, text string) (*Source, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	src := &Source{
		Path:        path,
		Text:        text,
		Encoding:    "utf-8",
		Dialect:     core.DialectNew,
		HasScanLoop: strings.Contains(text, scanLoopMarker),
	}
	if oldDialectPattern.MatchString(text) {
		src.Dialect = core.DialectOld
	}

	m := arrayConfPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, core.NewParseError(path, "array configurations", "could not parse array configuration codes")
	}
	cfg, err := ParseMaxArrayConfig(strings.Split(m[1], ","))
	if err != nil {
		return nil, core.NewParseError(path, "array configurations", "%v", err)
	}
	baseline, err := cfg.MaxBaseline()
	if err != nil {
		return nil, core.NewParseError(path, "array configurations", "%v", err)
	}
	src.MaxArrayConfig = cfg
	src.MaxBaseline = baseline

	m = projectPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, core.NewParseError(path, "project", "could not parse project code information")
	}
	src.ProjectCode, src.DBID = m[1], m[2]

	m = mjdPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, core.NewParseError(path, "start MJD", "could not parse assumed MJD start")
	}
	mjd, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, core.NewParseError(path, "start MJD", "invalid MJD %q", m[1])
	}
	src.StartMJD = mjd

	return src, nil
}

// ParseMaxArrayConfig picks the configuration with the longest baseline
// from a list of declared configurations.
//
// Each entry is reduced to its lowest letter. Move notation such as
// "C=>CNB" works out because "N" sorts after every real configuration
// letter, and "Any" is read as "A". The lowest letter across entries wins.
func ParseMaxArrayConfig(entries []string) (core.ArrayConfig, error) {
	var best rune
	for _, entry := range entries {
		entry = strings.ReplaceAll(strings.TrimSpace(entry), "Any", "A")
		var low rune
		for _, r := range entry {
			if !unicode.IsLetter(r) {
				continue
			}
			if low == 0 || r < low {
				low = r
			}
		}
		if low == 0 {
			return 0, fmt.Errorf("no configuration letter in %q", entry)
		}
		if best == 0 || low < best {
			best = low
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("empty configuration list")
	}
	if best > unicode.MaxASCII {
		return 0, fmt.Errorf("invalid configuration letter %q", best)
	}
	return core.ArrayConfig(best), nil
}

// TuningOffsetMHz returns the document-wide tuning offset, or 0 when the
// script does not declare one.
func (s *Source) TuningOffsetMHz() (float64, error) {
	m := tuningPattern.FindStringSubmatch(s.Text)
	if m == nil {
		return 0, nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, core.NewValueError(s.Path, "invalid tuningOffsetMHz %q", m[1])
	}
	return v, nil
}

func (s *Source) grammar() grammar {
	return grammarFor(s.Dialect)
}
