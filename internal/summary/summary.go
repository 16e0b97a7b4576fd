// Package summary aggregates a record set into receiver band and sampler
// counts.
package summary

import (
	"cmp"
	"slices"

	"github.com/leapstack-labs/widarcfg/internal/execution"
)

// Receiver groups.
var (
	HighFrequency = []string{"22GHz", "33GHz", "45GHz"}
	LowFrequency  = []string{"75MHz", "300MHz", "1.5GHz", "3GHz", "6GHz", "10GHz", "15GHz"}
)

// setupKey identifies one LOIF setup of one observation.
type setupKey struct {
	label string
	lo    int
}

// BandCount is the number of setups tuned with one receiver.
type BandCount struct {
	Receiver string `json:"receiver" yaml:"receiver"`
	Setups   int    `json:"setups" yaml:"setups"`
}

// Bands counts setups per receiver.
type Bands struct {
	Counts []BandCount `json:"counts" yaml:"counts"`
	High   int         `json:"high_frequency" yaml:"high_frequency"`
	Low    int         `json:"low_frequency" yaml:"low_frequency"`
}

// SummarizeBands counts distinct (label, LOIF) setups per receiver. A
// setup's receiver is taken from its first row. Counts are ordered by
// descending count, then receiver name.
func SummarizeBands(rows []execution.Row) Bands {
	seen := make(map[setupKey]bool)
	counts := make(map[string]int)
	for _, r := range rows {
		k := setupKey{r.Label, r.LoIndex}
		if seen[k] {
			continue
		}
		seen[k] = true
		counts[r.Receiver]++
	}

	var b Bands
	for rcvr, n := range counts {
		b.Counts = append(b.Counts, BandCount{Receiver: rcvr, Setups: n})
	}
	slices.SortFunc(b.Counts, func(x, y BandCount) int {
		if c := cmp.Compare(y.Setups, x.Setups); c != 0 {
			return c
		}
		return cmp.Compare(x.Receiver, y.Receiver)
	})
	for _, rcvr := range HighFrequency {
		b.High += counts[rcvr]
	}
	for _, rcvr := range LowFrequency {
		b.Low += counts[rcvr]
	}
	return b
}

// Samplers counts setups by the quantization of their basebands.
type Samplers struct {
	Total     int `json:"total" yaml:"total"`
	PureEight int `json:"pure_8bit" yaml:"pure_8bit"`
	PureThree int `json:"pure_3bit" yaml:"pure_3bit"`
	Hybrid    int `json:"hybrid" yaml:"hybrid"`
}

// SummarizeSamplers classifies each (label, LOIF) setup by the share of
// its rows that come from 8-bit basebands: all, none, or some.
func SummarizeSamplers(rows []execution.Row) Samplers {
	type tally struct{ eight, all int }
	tallies := make(map[setupKey]*tally)
	for _, r := range rows {
		k := setupKey{r.Label, r.LoIndex}
		t, ok := tallies[k]
		if !ok {
			t = &tally{}
			tallies[k] = t
		}
		t.all++
		if r.IsEightBit {
			t.eight++
		}
	}

	var s Samplers
	for _, t := range tallies {
		s.Total++
		switch t.eight {
		case t.all:
			s.PureEight++
		case 0:
			s.PureThree++
		default:
			s.Hybrid++
		}
	}
	return s
}
