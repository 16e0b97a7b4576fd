package vci

import (
	"math"
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstSubband(t *testing.T, sb testutil.VCISubband) Subband {
	t.Helper()
	v := testutil.DefaultVCI("20A-123", 1)
	v.Basebands[0].Subbands = []testutil.VCISubband{sb}
	doc := parseFixture(t, v)
	require.Len(t, doc.Basebands[0].Subbands, 1)
	return doc.Basebands[0].Subbands[0]
}

func TestSubband_Derived(t *testing.T) {
	fixture := testutil.DefaultSubband(0)
	fixture.Recirc = 2
	fixture.MinIntegUS = 500000
	sb := firstSubband(t, fixture)

	assert.True(t, sb.Valid)
	assert.Equal(t, 2, sb.Recirculation)
	assert.InDelta(t, 0.5, sb.MinIntegTime, 1e-12)
	assert.Equal(t, IntegFactors{CC: 1, LTA: 1, CBE: 1}, sb.Factors)
	assert.InDelta(t, 1.0, sb.IntegTime, 1e-12)
	assert.InDelta(t, 256e6, sb.SampleFreq, 1e-3)
	assert.InDelta(t, 1.25/math.Pi*math.Sqrt(256e6/1.0), sb.OptimumMixerFreq, 1e-6)
	assert.Equal(t, 4, sb.NPol)
	assert.Equal(t, 64, sb.NChan)
	assert.Equal(t, "A0/C0", sb.Baseband.Name)
	assert.Equal(t, 0, sb.Baseband.Index)
}

func TestSubband_IntegFactors(t *testing.T) {
	fixture := testutil.DefaultSubband(0)
	fixture.MinIntegUS = 10000
	fixture.CC, fixture.LTA, fixture.CBE = 2, 5, 10
	sb := firstSubband(t, fixture)

	assert.Equal(t, IntegFactors{CC: 2, LTA: 5, CBE: 10}, sb.Factors)
	assert.Equal(t, 100, sb.Factors.Product())
	assert.InDelta(t, 1.0, sb.IntegTime, 1e-12)
}

func TestSubband_BaselinePairs(t *testing.T) {
	fixture := testutil.DefaultSubband(0)
	fixture.Pairs = [][3]int{{2, 1, 4}, {1, 3, 0}}
	fixture.CBEProc = true
	sb := firstSubband(t, fixture)

	assert.Equal(t, []string{"q1p4", "q1p5", "q3p0"}, sb.BaselinePairs)
	assert.Equal(t, 3, sb.NumBaselinePairs())
	assert.Equal(t, map[string]string{"mode": "average"}, sb.CBEProcessing)
}

func TestSubband_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testutil.VCISubband)
		nchan  int
	}{
		{name: "placeholder", mutate: func(s *testutil.VCISubband) { s.Placeholder = true }, nchan: NotApplicable},
		{name: "no polarization products", mutate: func(s *testutil.VCISubband) { s.NPol = 0 }, nchan: NotApplicable},
		{name: "no integration", mutate: func(s *testutil.VCISubband) { s.Recirc = 0 }, nchan: 64},
		{name: "zero integration time", mutate: func(s *testutil.VCISubband) { s.MinIntegUS = 0 }, nchan: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := testutil.DefaultSubband(0)
			tt.mutate(&fixture)
			sb := firstSubband(t, fixture)

			assert.False(t, sb.Valid)
			assert.Zero(t, sb.OptimumMixerFreq)
			assert.Equal(t, tt.nchan, sb.NChan)
		})
	}
}

func TestBaseband_ValidSubbands(t *testing.T) {
	v := testutil.DefaultVCI("20A-123", 1)
	bad := testutil.DefaultSubband(1)
	bad.Placeholder = true
	v.Basebands[0].Subbands = []testutil.VCISubband{bad, testutil.DefaultSubband(2)}
	doc := parseFixture(t, v)

	valid := doc.Basebands[0].ValidSubbands()
	require.Len(t, valid, 1)
	assert.Equal(t, 2, valid[0].SBID)
	assert.Equal(t, 1, valid[0].Index)
}
