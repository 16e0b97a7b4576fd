package evla

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/widarcfg/internal/vci"
	"github.com/leapstack-labs/widarcfg/pkg/core"
)

const mhz = 1e6

// Setup is one LOIF (local oscillator / IF) definition.
type Setup struct {
	ID    string // e.g. "loif01"
	Index int

	// Mode is true when the frequencies are baseband center frequencies and
	// false when they are signed sums of LO frequencies.
	Mode     bool
	Receiver string

	// Baseband center frequencies in Hz.
	AC1, AC2, BD1, BD2 float64

	Flag int

	// IsEightBit is true when only the first pair of basebands is tuned.
	IsEightBit bool
	// UsesOffset records whether any frequency referenced the tuning offset.
	UsesOffset bool
	// TuningOffset is the document-wide tuning offset in Hz.
	TuningOffset float64
}

// IsThreeBit reports whether the setup tunes all four basebands.
func (s Setup) IsThreeBit() bool {
	return !s.IsEightBit
}

// BasebandFreq returns the center frequency for a baseband pair name such
// as "A0/C0".
func (s Setup) BasebandFreq(name string) (float64, error) {
	switch name {
	case "A0/C0", "A1/C1":
		return s.AC1, nil
	case "A2/C2":
		return s.AC2, nil
	case "B0/D0", "B1/D1":
		return s.BD1, nil
	case "B2/D2":
		return s.BD2, nil
	}
	return 0, core.NewValueError("", "%s: unknown baseband %q", s.ID, name)
}

// SkyFreq returns the sky frequency of a subband's center in Hz. It is
// only defined for baseband-center-frequency setups.
func (s Setup) SkyFreq(sb vci.Subband) (float64, error) {
	if !s.Mode {
		return 0, core.NewValueError("", "%s: sky frequency is undefined for LO-sum setups", s.ID)
	}
	center, err := s.BasebandFreq(sb.Baseband.Name)
	if err != nil {
		return 0, err
	}
	start := center - sb.Baseband.BW/2
	return start + sb.CenterFreq, nil
}

// Offset holds the WIDAR frequency offsets for one LOIF setup.
type Offset struct {
	ID    string
	Index int

	// Offset frequencies in Hz.
	AC1, BD1, AC2, BD2 float64
}

// BasebandFreq returns the offset for a baseband pair name.
func (o Offset) BasebandFreq(name string) (float64, error) {
	switch name {
	case "A0/C0", "A1/C1":
		return o.AC1, nil
	case "A2/C2":
		return o.AC2, nil
	case "B0/D0", "B1/D1":
		return o.BD1, nil
	case "B2/D2":
		return o.BD2, nil
	}
	return 0, core.NewValueError("", "%s: unknown baseband %q", o.ID, name)
}

// Table is an ordered set of records keyed by LOIF id.
type Table[T comparable] struct {
	ids  []string
	byID map[string]T
}

// SetupTable maps LOIF ids to setups in declaration order.
type SetupTable = Table[Setup]

// OffsetTable maps LOIF ids to offsets in declaration order.
type OffsetTable = Table[Offset]

func newTable[T comparable]() *Table[T] {
	return &Table[T]{byID: make(map[string]T)}
}

// add inserts rec. Repeating an identical declaration is harmless; a
// conflicting one is not.
func (t *Table[T]) add(id string, rec T) error {
	if prev, ok := t.byID[id]; ok {
		if prev != rec {
			return fmt.Errorf("conflicting declarations of %s", id)
		}
		return nil
	}
	t.ids = append(t.ids, id)
	t.byID[id] = rec
	return nil
}

// Get returns the record for id.
func (t *Table[T]) Get(id string) (T, bool) {
	rec, ok := t.byID[id]
	return rec, ok
}

// IDs returns the ids in declaration order.
func (t *Table[T]) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Len returns the number of records.
func (t *Table[T]) Len() int {
	return len(t.ids)
}

// SameKeys reports whether two tables hold exactly the same ids.
func SameKeys[A, B comparable](a *Table[A], b *Table[B]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, id := range a.ids {
		if _, ok := b.byID[id]; !ok {
			return false
		}
	}
	return true
}

// ParseSetups extracts every LoIfSetup record from the script.
func ParseSetups(src *Source) (*SetupTable, error) {
	offsetMHz, err := src.TuningOffsetMHz()
	if err != nil {
		return nil, err
	}

	matches := src.grammar().setup.FindAllStringSubmatch(src.Text, -1)
	if len(matches) == 0 {
		return nil, core.NewParseError(src.Path, "LOIF setups", "could not find LOIF center frequencies")
	}

	table := newTable[Setup]()
	for _, m := range matches {
		setup, err := newSetup(m[1:], offsetMHz)
		if err != nil {
			return nil, core.NewParseError(src.Path, "LOIF setups", "%v", err)
		}
		if err := table.add(setup.ID, setup); err != nil {
			return nil, core.NewParseError(src.Path, "LOIF setups", "%v", err)
		}
	}
	return table, nil
}

// newSetup builds a Setup from the eight captured groups:
// id, mode, receiver, ac1, ac2, bd1, bd2, flag.
func newSetup(g []string, offsetMHz float64) (Setup, error) {
	ix, err := strconv.Atoi(g[0])
	if err != nil {
		return Setup{}, fmt.Errorf("invalid LOIF index %q", g[0])
	}
	s := Setup{
		ID:           "loif" + g[0],
		Index:        ix,
		Mode:         g[1] == "True",
		Receiver:     g[2],
		TuningOffset: offsetMHz * mhz,
	}

	freqs := make([]float64, 4)
	for i, field := range g[3:7] {
		v, err := evalFieldMHz(field, offsetMHz)
		if err != nil {
			return Setup{}, fmt.Errorf("%s: %w", s.ID, err)
		}
		freqs[i] = v * mhz
		if strings.Contains(field, offsetTerm) {
			s.UsesOffset = true
		}
	}
	s.AC1, s.AC2, s.BD1, s.BD2 = freqs[0], freqs[1], freqs[2], freqs[3]
	s.IsEightBit = s.AC2+s.BD2 == 0

	s.Flag, err = strconv.Atoi(g[7])
	if err != nil {
		return Setup{}, fmt.Errorf("%s: invalid flag %q", s.ID, g[7])
	}
	return s, nil
}

// ParseOffsets extracts every setWidarOffsetFreq record from the script.
func ParseOffsets(src *Source) (*OffsetTable, error) {
	offsetMHz, err := src.TuningOffsetMHz()
	if err != nil {
		return nil, err
	}

	matches := src.grammar().offset.FindAllStringSubmatch(src.Text, -1)
	if len(matches) == 0 {
		return nil, core.NewParseError(src.Path, "LOIF offsets", "could not find LOIF offset frequencies")
	}

	table := newTable[Offset]()
	for _, m := range matches {
		ix, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, core.NewParseError(src.Path, "LOIF offsets", "invalid LOIF index %q", m[1])
		}
		o := Offset{ID: "loif" + m[1], Index: ix}
		freqs := make([]float64, 4)
		for i, field := range m[2:6] {
			v, err := evalFieldMHz(field, offsetMHz)
			if err != nil {
				return nil, core.NewParseError(src.Path, "LOIF offsets", "%s: %v", o.ID, err)
			}
			freqs[i] = v * mhz
		}
		// setWidarOffsetFreq takes (ac1, bd1, ac2, bd2).
		o.AC1, o.BD1, o.AC2, o.BD2 = freqs[0], freqs[1], freqs[2], freqs[3]
		if err := table.add(o.ID, o); err != nil {
			return nil, core.NewParseError(src.Path, "LOIF offsets", "%v", err)
		}
	}
	return table, nil
}
