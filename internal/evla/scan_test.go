package evla

import (
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/testutil"
	"github.com/leapstack-labs/widarcfg/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseScansFrom(t *testing.T, s testutil.Script) ([]Scan, error) {
	t.Helper()
	src, err := NewSource("obs.evla", s.Render())
	require.NoError(t, err)
	return ParseScans(src)
}

func TestParseScans(t *testing.T) {
	for _, d := range []core.Dialect{core.DialectOld, core.DialectNew} {
		t.Run(d.String(), func(t *testing.T) {
			s := twoSetupScript(d)
			s.Scans = []testutil.ScanBlock{
				{Index: 1, Field: "3C286", DBID: 11, Intents: "CALIBRATE_FLUX", LoIf: "0"},
				{Index: 2, Field: "3C286", DBID: 11},
				{Index: 3, Field: "J1407+2827", DBID: 12, Intents: "CALIBRATE_POL_LEAKAGE OBSERVE_TARGET", LoIf: "1"},
				{Index: 4, Field: "target", DBID: 13},
			}

			scans, err := parseScansFrom(t, s)
			require.NoError(t, err)
			require.Len(t, scans, 4)

			assert.Equal(t, []int{1, 2, 3, 4}, []int{scans[0].Index, scans[1].Index, scans[2].Index, scans[3].Index})
			assert.Equal(t, "loif0", scans[0].LoIfID)
			assert.Equal(t, "loif0", scans[1].LoIfID, "selection carries forward")
			assert.Equal(t, "loif1", scans[2].LoIfID)
			assert.Equal(t, "loif1", scans[3].LoIfID)

			assert.Equal(t, []string{"CALIBRATE_FLUX"}, scans[1].Intents)
			assert.Equal(t, []string{"CALIBRATE_POL_LEAKAGE", "OBSERVE_TARGET"}, scans[3].Intents)

			assert.Equal(t, "3C286", scans[0].Field)
			assert.Equal(t, 12, scans[2].DBID)
			assert.Equal(t, Timing{Total: 60, Slew: 20, OnSource: 40}, scans[0].Timing)
		})
	}
}

func TestParseScans_IntentsAreCopied(t *testing.T) {
	scans, err := parseScansFrom(t, testutil.DefaultScript("20A-123"))
	require.NoError(t, err)
	require.Len(t, scans, 2)

	scans[0].Intents[0] = "MUTATED"
	assert.Equal(t, "CALIBRATE_FLUX", scans[1].Intents[0])
}

func TestParseScans_Errors(t *testing.T) {
	tests := []struct {
		name  string
		scans []testutil.ScanBlock
	}{
		{
			name:  "first scan without LOIF",
			scans: []testutil.ScanBlock{{Index: 1, Field: "f", DBID: 1, Intents: "OBSERVE_TARGET"}},
		},
		{
			name:  "first scan without intents",
			scans: []testutil.ScanBlock{{Index: 1, Field: "f", DBID: 1, LoIf: "0"}},
		},
		{
			name: "block runs into end of file",
			scans: []testutil.ScanBlock{
				{Index: 1, Field: "f", DBID: 1, Intents: "OBSERVE_TARGET", LoIf: "0"},
				{Index: 2, Field: "f", DBID: 1, NoBlank: true},
			},
		},
		{
			name: "non increasing index",
			scans: []testutil.ScanBlock{
				{Index: 2, Field: "f", DBID: 1, Intents: "OBSERVE_TARGET", LoIf: "0"},
				{Index: 2, Field: "f", DBID: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.DefaultScript("20A-123")
			s.Scans = tt.scans
			_, err := parseScansFrom(t, s)
			assert.ErrorIs(t, err, core.ErrParse)
		})
	}
}

func TestParseScans_MissingTiming(t *testing.T) {
	text := dropLines(testutil.DefaultScript("20A-123").Render(), "# Approx sidereal time")
	src, err := NewSource("obs.evla", text)
	require.NoError(t, err)

	_, err = ParseScans(src)
	var perr *core.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "could not parse times")
}
