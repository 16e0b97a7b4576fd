package testutil

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// LoIf describes one LOIF setup and its WIDAR offsets in a script fixture.
// Frequencies are raw MHz field text so expressions can be exercised.
type LoIf struct {
	ID       string
	Mode     string
	Receiver string
	// Freqs are ac1, ac2, bd1, bd2.
	Freqs [4]string
	Flag  string
	// Offsets are ac1, bd1, ac2, bd2.
	Offsets [4]string
}

// ScanBlock describes one scan block. An empty LoIf omits the selection
// line so the previous scan's setup carries forward.
type ScanBlock struct {
	Index   int
	Field   string
	DBID    int
	Intents string
	LoIf    string
	// NoBlank ends the block without a line terminator, as the last
	// block of a file that does not end in a newline.
	NoBlank bool
}

// Script renders an observing script in either dialect.
type Script struct {
	Dialect      core.Dialect
	Project      string
	DBID         string
	MJD          string
	ArrayConfigs string
	TuningOffset string
	ScanLoop     bool
	LoIfs        []LoIf
	Scans        []ScanBlock
}

// DefaultLoIf is an 8-bit C-band setup with baseband-center tuning.
func DefaultLoIf(id string) LoIf {
	return LoIf{
		ID:       id,
		Mode:     "True",
		Receiver: "6GHz",
		Freqs:    [4]string{"4744.0", "0.0", "7144.0", "0.0"},
		Flag:     "0",
		Offsets:  [4]string{"0.0", "0.0", "0.0", "0.0"},
	}
}

// DefaultScript is a two-scan new-dialect script with one setup.
func DefaultScript(project string) Script {
	return Script{
		Dialect:      core.DialectNew,
		Project:      project,
		DBID:         "97920310",
		MJD:          "59229.5",
		ArrayConfigs: "C=>CNB, CNB=>B",
		LoIfs:        []LoIf{DefaultLoIf("0")},
		Scans: []ScanBlock{
			{Index: 1, Field: "J1331+3030", DBID: 101, Intents: "CALIBRATE_FLUX OBSERVE_TARGET", LoIf: "0"},
			{Index: 2, Field: "J1331+3030", DBID: 101},
		},
	}
}

// Render produces the script text.
func (s Script) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# EVLA PROJECT %s, DB ID %s\n", s.Project, s.DBID)
	fmt.Fprintf(&b, "#   Assumed Script Start: Fri Jan 15 2021 (MJD %s)\n", s.MJD)
	fmt.Fprintf(&b, "#   Array Configurations: %s\n", s.ArrayConfigs)
	b.WriteString("\n")
	if s.TuningOffset != "" {
		fmt.Fprintf(&b, "tuningOffsetMHz = %s\n\n", s.TuningOffset)
	}
	if s.Dialect == core.DialectNew {
		b.WriteString("loifs = {}\n")
	}
	for _, l := range s.LoIfs {
		args := fmt.Sprintf("%s,\"%s\",%s,%s,%s,%s,%s",
			l.Mode, l.Receiver, l.Freqs[0], l.Freqs[1], l.Freqs[2], l.Freqs[3], l.Flag)
		offs := strings.Join(l.Offsets[:], ",")
		if s.Dialect == core.DialectOld {
			fmt.Fprintf(&b, "loif%s = LoIfSetup(%s)\n", l.ID, args)
			fmt.Fprintf(&b, "loif%s.setWidarOffsetFreq(%s)\n", l.ID, offs)
		} else {
			fmt.Fprintf(&b, "loifs['loif%s'] = LoIfSetup(%s)\n", l.ID, args)
			fmt.Fprintf(&b, "loifs['loif%s'].setWidarOffsetFreq(%s)\n", l.ID, offs)
		}
	}
	b.WriteString("\n")
	if s.ScanLoop {
		b.WriteString("for iter1 in range(0, 2):\n    pass\n\n")
	}
	for _, sc := range s.Scans {
		fmt.Fprintf(&b, "# Scan num. %d, '%s', DB ID %d\n", sc.Index, sc.Field, sc.DBID)
		b.WriteString("# Approx sidereal time: total = 60s, slew = 20s, on source = 40s\n")
		if sc.Intents != "" {
			fmt.Fprintf(&b, "intents.addIntent('ScanIntent=\"%s\"')\n", sc.Intents)
		}
		if sc.LoIf != "" {
			if s.Dialect == core.DialectOld {
				fmt.Fprintf(&b, "subarray.setLoIfSetup(loif%s)\n", sc.LoIf)
			} else {
				fmt.Fprintf(&b, "loifName = 'loif%s'\n", sc.LoIf)
			}
		}
		b.WriteString("subarray.execute(array.time('+00:01:00'))")
		if !sc.NoBlank {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
