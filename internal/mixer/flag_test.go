package mixer

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		f, fmin, fmax float64
		want          Flag
	}{
		{name: "inside", f: 15, fmin: 10, fmax: 20, want: Okay},
		{name: "at lower bound", f: 10, fmin: 10, fmax: 20, want: Okay},
		{name: "at upper bound", f: 20, fmin: 10, fmax: 20, want: Okay},
		{name: "below", f: 5, fmin: 10, fmax: 20, want: Below},
		{name: "zero offset", f: 0, fmin: 10, fmax: 20, want: Below},
		{name: "above", f: 25, fmin: 10, fmax: 20, want: Above},
		{name: "empty window", f: 15, fmin: 20, fmax: 10, want: Fail},
		{name: "empty window below", f: 1, fmin: 20, fmax: 10, want: Fail},
		{name: "point window on point", f: 10, fmin: 10, fmax: 10, want: Okay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.f, tt.fmin, tt.fmax)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Invariant(t *testing.T) {
	tests := []struct {
		name          string
		f, fmin, fmax float64
	}{
		{name: "point window below", f: 5, fmin: 10, fmax: 10},
		{name: "point window above", f: 15, fmin: 10, fmax: 10},
		{name: "nan", f: math.NaN(), fmin: 10, fmax: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.f, tt.fmin, tt.fmax)
			var ierr *InvariantError
			assert.ErrorAs(t, err, &ierr)
		})
	}
}

func TestClassify_Total(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	for range 10000 {
		a, b := r.Float64()*1e5, r.Float64()*1e5
		f := r.Float64() * 2e5

		lo, hi := math.Min(a, b), math.Max(a, b)
		if lo == hi {
			continue
		}
		got, err := Classify(f, lo, hi)
		require.NoError(t, err, "f=%g fmin=%g fmax=%g", f, lo, hi)
		assert.Contains(t, []Flag{Okay, Below, Above}, got)

		got, err = Classify(f, hi, lo)
		require.NoError(t, err)
		assert.Equal(t, Fail, got)
	}
}

func TestFlag(t *testing.T) {
	assert.Equal(t, "OKAY", Okay.String())
	assert.Equal(t, "BELOW", Below.String())
	assert.Equal(t, "ABOVE", Above.String())
	assert.Equal(t, "FAIL", Fail.String())
	assert.Equal(t, "Flag(0)", Flag(0).String())

	assert.False(t, Okay.Bad())
	assert.True(t, Below.Bad())
	assert.True(t, Above.Bad())
	assert.True(t, Fail.Bad())
}
