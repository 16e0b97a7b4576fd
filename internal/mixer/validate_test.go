package mixer

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/leapstack-labs/widarcfg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The default fixture subbands are 128 MHz wide without recirculation and
// dump every second, so the window is [30 Hz, 128e6/3e3 Hz]. An offset of
// 0.01 MHz is inside, 0 is below and 0.1 MHz is above.
const (
	offsetOkay  = "0.01"
	offsetAbove = "0.1"
)

func openWith(t *testing.T, project string, mutate func(*testutil.Observation)) *execution.Execution {
	t.Helper()
	obs := testutil.DefaultObservation(project)
	if mutate != nil {
		mutate(&obs)
	}
	dir := obs.Write(t, t.TempDir())
	ex, err := execution.Open(dir, execution.Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return ex
}

func setOffsets(ac1, bd1 string) func(*testutil.Observation) {
	return func(o *testutil.Observation) {
		o.Script.LoIfs[0].Offsets = [4]string{ac1, bd1, "0.0", "0.0"}
	}
}

func TestNewFreqs(t *testing.T) {
	ex := openWith(t, "20A-123", setOffsets(offsetOkay, offsetOkay))
	cfg, ok := ex.Config(1)
	require.True(t, ok)
	sb := cfg.VCI.Basebands[0].Subbands[0]

	f, err := NewFreqs(cfg, sb, ex.Source.MaxBaseline)
	require.NoError(t, err)

	sky := 4744e6 - 512e6 + 64e6
	assert.InDelta(t, sky, f.FSky, 1e-3)
	assert.InDelta(t, 1.0, f.Tau, 1e-12)
	assert.InDelta(t, 460*(11100.0/20000)*(sky/50e9), f.FMaxFringe, 1e-9)
	assert.InDelta(t, 30.0, f.FMin, 1e-12)
	assert.InDelta(t, 128e6/3e3, f.FMax, 1e-9)
	assert.InDelta(t, 1.25/math.Pi*math.Sqrt(256e6), f.FOpt, 1e-6)
	assert.InDelta(t, 1e4, f.FUsed, 1e-6)
	assert.Equal(t, "A0/C0", f.Baseband)

	opt, err := f.OptFlag()
	require.NoError(t, err)
	assert.Equal(t, Okay, opt)
	used, err := f.UsedFlag()
	require.NoError(t, err)
	assert.Equal(t, Okay, used)
}

func TestNewFreqs_Recirculation(t *testing.T) {
	ex := openWith(t, "20A-123", func(o *testutil.Observation) {
		o.VCIs[0].Basebands[0].Subbands[0].Recirc = 2
		o.VCIs[0].Basebands[0].Subbands[0].MinIntegUS = 500000
	})
	cfg, _ := ex.Config(1)
	f, err := NewFreqs(cfg, cfg.VCI.Basebands[0].Subbands[0], ex.Source.MaxBaseline)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, f.Tau, 1e-12)
	assert.InDelta(t, 128e6/4e4, f.FMax, 1e-9)
}

func TestUsedFlag(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testutil.Observation)
		want   Flag
	}{
		{name: "all inside", mutate: setOffsets(offsetOkay, offsetOkay), want: Okay},
		{name: "zero offsets", mutate: nil, want: Below},
		{name: "second baseband above", mutate: setOffsets(offsetOkay, offsetAbove), want: Above},
		{name: "first bad wins", mutate: setOffsets("0.0", offsetAbove), want: Below},
		{
			name: "window empty",
			mutate: func(o *testutil.Observation) {
				setOffsets(offsetOkay, offsetOkay)(o)
				o.VCIs[0].Basebands[1].Subbands[0].MinIntegUS = 100
			},
			want: Fail,
		},
		{
			name: "invalid subband out of range",
			mutate: func(o *testutil.Observation) {
				setOffsets(offsetOkay, offsetAbove)(o)
				o.VCIs[0].Basebands[1].Subbands[0].NPol = 0
			},
			want: Above,
		},
		{
			name: "untimed placeholder fails",
			mutate: func(o *testutil.Observation) {
				setOffsets(offsetOkay, offsetOkay)(o)
				o.VCIs[0].Basebands[1].Subbands[0].Placeholder = true
			},
			want: Fail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := openWith(t, "20A-123", tt.mutate)
			got, err := UsedFlag(ex)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsedFlag_SetupOrder(t *testing.T) {
	ex := openWith(t, "20A-123", func(o *testutil.Observation) {
		setOffsets(offsetOkay, offsetOkay)(o)
		above := testutil.DefaultLoIf("1")
		above.Offsets = [4]string{offsetAbove, offsetAbove, "0.0", "0.0"}
		below := testutil.DefaultLoIf("2")
		o.Script.LoIfs = append(o.Script.LoIfs, above, below)
		o.Script.Scans = append(o.Script.Scans,
			testutil.ScanBlock{Index: 3, Field: "f", DBID: 3, LoIf: "1"},
			testutil.ScanBlock{Index: 4, Field: "f", DBID: 3, LoIf: "2"},
		)
	})

	got, err := UsedFlag(ex)
	require.NoError(t, err)
	assert.Equal(t, Above, got)

	checks, err := Checks(ex)
	require.NoError(t, err)
	require.Len(t, checks, 9)
	assert.Equal(t, "loif0", checks[0].Setup)
	assert.Equal(t, Okay, checks[0].Used)
	assert.Equal(t, "loif1", checks[3].Setup)
	assert.Equal(t, Above, checks[3].Used)
	assert.Equal(t, Below, checks[8].Used)
	for _, c := range checks {
		assert.Equal(t, Okay, c.Opt)
	}
}

func TestChecks_InvalidSubband(t *testing.T) {
	ex := openWith(t, "20A-123", func(o *testutil.Observation) {
		setOffsets(offsetOkay, offsetAbove)(o)
		o.VCIs[0].Basebands[1].Subbands[0].NPol = 0
	})

	checks, err := Checks(ex)
	require.NoError(t, err)
	require.Len(t, checks, 3)
	assert.True(t, checks[0].Valid)
	assert.Equal(t, Okay, checks[0].Used)
	assert.False(t, checks[2].Valid)
	assert.Equal(t, "B0/D0", checks[2].Baseband)
	assert.Equal(t, Above, checks[2].Used)
}

func TestValidateUsed(t *testing.T) {
	good := openWith(t, "20A-001", setOffsets(offsetOkay, offsetOkay))
	below := openWith(t, "20A-002", nil)
	above := openWith(t, "20A-003", setOffsets(offsetAbove, offsetOkay))
	loSum := openWith(t, "20A-004", func(o *testutil.Observation) {
		o.Script.LoIfs[0].Mode = "False"
	})

	logger, records := testutil.CaptureLogger()
	got := ValidateUsed(context.Background(),
		[]*execution.Execution{good, below, loSum, above},
		Options{Workers: 3, Logger: logger},
	)

	require.Len(t, got, 2)
	assert.Same(t, below, got[0].Execution)
	assert.Equal(t, Below, got[0].Flag)
	assert.Same(t, above, got[1].Execution)
	assert.Equal(t, Above, got[1].Flag)

	assert.Equal(t, []string{"skipping mixer validation"}, records.Messages(slog.LevelWarn))
	assert.Equal(t, []string{loSum.Label}, records.Attr("label"))
}
