package summary

import (
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/stretchr/testify/assert"
)

func row(label string, lo int, rcvr string, eight bool) execution.Row {
	return execution.Row{Label: label, LoIndex: lo, Receiver: rcvr, IsEightBit: eight}
}

func TestSummarizeBands(t *testing.T) {
	rows := []execution.Row{
		row("a", 0, "6GHz", true),
		row("a", 0, "6GHz", true),
		row("a", 1, "33GHz", false),
		row("b", 0, "6GHz", true),
		row("b", 1, "45GHz", false),
		row("c", 0, "33GHz", false),
		row("c", 2, "90GHz", false),
	}

	got := SummarizeBands(rows)
	assert.Equal(t, []BandCount{
		{Receiver: "33GHz", Setups: 2},
		{Receiver: "6GHz", Setups: 2},
		{Receiver: "45GHz", Setups: 1},
		{Receiver: "90GHz", Setups: 1},
	}, got.Counts)
	assert.Equal(t, 3, got.High)
	assert.Equal(t, 2, got.Low)
}

func TestSummarizeSamplers(t *testing.T) {
	rows := []execution.Row{
		row("a", 0, "6GHz", true),
		row("a", 0, "6GHz", true),
		row("a", 1, "33GHz", false),
		row("a", 1, "33GHz", false),
		row("b", 0, "22GHz", true),
		row("b", 0, "22GHz", false),
	}

	got := SummarizeSamplers(rows)
	assert.Equal(t, Samplers{Total: 3, PureEight: 1, PureThree: 1, Hybrid: 1}, got)
	assert.Equal(t, got.Total, got.PureEight+got.PureThree+got.Hybrid)
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, Bands{}, SummarizeBands(nil))
	assert.Equal(t, Samplers{}, SummarizeSamplers(nil))
}
