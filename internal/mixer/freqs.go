package mixer

import (
	"math"

	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/leapstack-labs/widarcfg/internal/vci"
)

// Freqs holds the mixer window quantities of one subband. Frequencies are
// in Hz, times in seconds.
type Freqs struct {
	Baseband string
	Subband  int

	Tau   float64
	BW    float64
	FOpt  float64
	FSky  float64
	FUsed float64

	FMaxFringe float64
	FMin       float64
	FMax       float64
}

// NewFreqs computes the window for subband sb of cfg on an array whose
// longest baseline is bmax meters.
func NewFreqs(cfg execution.WidarConfig, sb vci.Subband, bmax float64) (Freqs, error) {
	sky, err := cfg.Setup.SkyFreq(sb)
	if err != nil {
		return Freqs{}, err
	}
	used, err := cfg.Offset.BasebandFreq(sb.Baseband.Name)
	if err != nil {
		return Freqs{}, err
	}

	f := Freqs{
		Baseband: sb.Baseband.Name,
		Subband:  sb.SwIndex,
		Tau:      sb.IntegTime,
		BW:       sb.BW,
		FOpt:     sb.OptimumMixerFreq,
		FSky:     sky,
		FUsed:    used,
	}
	f.FMaxFringe = 460 * (bmax / 1e3 / 20) * (sky / 1e9 / 50)
	f.FMin = math.Max(f.FMaxFringe, 30/f.Tau)
	if sb.Recirculation > 1 {
		f.FMax = f.BW / 4e4
	} else {
		f.FMax = f.BW / 3e3
	}
	return f, nil
}

// Classify places freq in this subband's window.
func (f Freqs) Classify(freq float64) (Flag, error) {
	return Classify(freq, f.FMin, f.FMax)
}

// OptFlag classifies the optimum mixer frequency.
func (f Freqs) OptFlag() (Flag, error) {
	return f.Classify(f.FOpt)
}

// UsedFlag classifies the offset the script actually set.
func (f Freqs) UsedFlag() (Flag, error) {
	return f.Classify(f.FUsed)
}
