package evla

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// Timing is the approximate sidereal time budget of a scan in seconds.
type Timing struct {
	Total    float64
	Slew     float64
	OnSource float64
}

// Scan is one scan block of the script.
type Scan struct {
	Index  int
	Field  string
	DBID   int
	LoIfID string
	Timing Timing
	// Intents are sticky: a block without an addIntent line keeps the
	// intents of the previous block.
	Intents []string
}

// scanState is carried from one scan block to the next.
type scanState struct {
	loif      string
	intents   []string
	lastIndex int
}

// ParseScans walks the script line by line and returns its scan blocks in
// order.
//
// A LOIF selection line is only written when the selection changes, so a
// block without one reuses the previous block's setup. The search for the
// selection stops at the first blank line after the block header.
func ParseScans(src *Source) ([]Scan, error) {
	sel := src.grammar().selection
	lines := strings.Split(src.Text, "\n")

	var (
		scans []Scan
		state scanState
	)
	for i, line := range lines {
		head := scanHeaderPattern.FindStringSubmatch(line)
		if head == nil {
			continue
		}

		scan, next, err := parseScanBlock(src.Path, lines, i, head, state, sel)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
		state = next
	}
	return scans, nil
}

type lineMatcher interface {
	FindStringSubmatch(s string) []string
}

func parseScanBlock(path string, lines []string, i int, head []string, state scanState, sel lineMatcher) (Scan, scanState, error) {
	ix, err := strconv.Atoi(head[1])
	if err != nil {
		return Scan{}, state, core.NewValueError(path, "invalid scan number %q", head[1])
	}
	if ix <= state.lastIndex {
		return Scan{}, state, core.NewParseError(path, "scans", "scan %d follows scan %d", ix, state.lastIndex)
	}
	dbid, err := strconv.Atoi(head[3])
	if err != nil {
		return Scan{}, state, core.NewValueError(path, "scan %d: invalid DB ID %q", ix, head[3])
	}

	// The header is always followed by the sidereal time comment.
	var tm []string
	if i+1 < len(lines) {
		tm = scanTimePattern.FindStringSubmatch(lines[i+1])
	}
	if tm == nil {
		return Scan{}, state, core.NewParseError(path, "scans", "scan %d: could not parse times", ix)
	}
	timing := Timing{}
	timing.Total, _ = strconv.ParseFloat(tm[1], 64)
	timing.Slew, _ = strconv.ParseFloat(tm[2], 64)
	timing.OnSource, _ = strconv.ParseFloat(tm[3], 64)

	// addIntent sets rather than appends, so a new line replaces the
	// intents wholesale.
	if i+2 < len(lines) {
		if m := scanIntentPattern.FindStringSubmatch(lines[i+2]); m != nil {
			state.intents = strings.Fields(m[1])
		}
	}
	if state.intents == nil {
		return Scan{}, state, core.NewParseError(path, "scans", "scan %d: invalid addIntent convention", ix)
	}

	found := false
	for _, peek := range lines[i:] {
		if strings.TrimSpace(peek) == "" {
			found = true
			break
		}
		if m := sel.FindStringSubmatch(peek); m != nil {
			state.loif = "loif" + m[1]
			found = true
			break
		}
	}
	if !found || state.loif == "" {
		return Scan{}, state, core.NewParseError(path, "scans", "scan %d: invalid loifName convention", ix)
	}
	state.lastIndex = ix

	intents := make([]string, len(state.intents))
	copy(intents, state.intents)
	return Scan{
		Index:   ix,
		Field:   head[2],
		DBID:    dbid,
		LoIfID:  state.loif,
		Timing:  timing,
		Intents: intents,
	}, state, nil
}
