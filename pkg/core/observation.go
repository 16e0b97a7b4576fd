package core

import "fmt"

// =============================================================================
// Script dialect
// =============================================================================

// Dialect identifies which generation of the observing-script format a
// file was written in.
type Dialect int

const (
	// DialectNew scripts keep LOIF setups in a `loifs['loifN']` dict.
	DialectNew Dialect = iota
	// DialectOld scripts bind each setup to a `loifN` variable.
	DialectOld
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectOld:
		return "old"
	case DialectNew:
		return "new"
	default:
		return "unknown"
	}
}

// =============================================================================
// Array configurations
// =============================================================================

// ArrayConfig is a single-letter antenna configuration code, A through D.
type ArrayConfig byte

// Array configurations ordered from the longest baseline to the shortest.
const (
	ConfigA ArrayConfig = 'A'
	ConfigB ArrayConfig = 'B'
	ConfigC ArrayConfig = 'C'
	ConfigD ArrayConfig = 'D'
)

// maxBaselines holds the maximum baseline per configuration in meters.
var maxBaselines = map[ArrayConfig]float64{
	ConfigA: 36400,
	ConfigB: 11100,
	ConfigC: 3400,
	ConfigD: 1030,
}

func (c ArrayConfig) String() string {
	return string(rune(c))
}

// MaxBaseline returns the maximum baseline length in meters.
func (c ArrayConfig) MaxBaseline() (float64, error) {
	b, ok := maxBaselines[c]
	if !ok {
		return 0, fmt.Errorf("unknown array configuration %q", c.String())
	}
	return b, nil
}
