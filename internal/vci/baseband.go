package vci

import (
	"fmt"

	"github.com/beevik/etree"
)

// Quantization widths accepted on a baseband input.
const (
	ThreeBit = 3
	EightBit = 8
)

// unnamed stands in for absent name attributes.
const unnamed = "None"

// Baseband is one baseBand element of a VCI document.
type Baseband struct {
	Index    int
	Name     string
	SwbbName string
	// BW is the baseband bandwidth in Hz.
	BW       float64
	InQuant  int
	BBA, BBB int
	Subbands []Subband
}

// BasebandRef is the by-value copy of baseband fields a Subband carries.
type BasebandRef struct {
	Index   int
	Name    string
	BW      float64
	InQuant int
}

// IsEightBit reports whether the baseband samples with 8 bits.
func (b BasebandRef) IsEightBit() bool { return b.InQuant == EightBit }

// IsThreeBit reports whether the baseband samples with 3 bits.
func (b BasebandRef) IsThreeBit() bool { return b.InQuant == ThreeBit }

// IsEightBit reports whether the baseband samples with 8 bits.
func (b Baseband) IsEightBit() bool { return b.InQuant == EightBit }

// IsThreeBit reports whether the baseband samples with 3 bits.
func (b Baseband) IsThreeBit() bool { return b.InQuant == ThreeBit }

// Ref returns the value copy stored on each of the baseband's subbands.
func (b Baseband) Ref() BasebandRef {
	return BasebandRef{Index: b.Index, Name: b.Name, BW: b.BW, InQuant: b.InQuant}
}

// ValidSubbands returns the subbands with Valid set, in document order.
func (b Baseband) ValidSubbands() []Subband {
	var out []Subband
	for _, sb := range b.Subbands {
		if sb.Valid {
			out = append(out, sb)
		}
	}
	return out
}

func (b Baseband) String() string {
	return fmt.Sprintf("BB name=%s bb=(%d, %d)", b.Name, b.BBA, b.BBB)
}

func newBaseband(index int, el *etree.Element) (Baseband, error) {
	bb := Baseband{
		Index:    index,
		Name:     el.SelectAttrValue("name", unnamed),
		SwbbName: el.SelectAttrValue("swbbName", unnamed),
	}

	var err error
	if bb.BW, err = requireFloat(el, "bw"); err != nil {
		return Baseband{}, err
	}
	if bb.InQuant, err = requireInt(el, "inQuant"); err != nil {
		return Baseband{}, err
	}
	if bb.InQuant != ThreeBit && bb.InQuant != EightBit {
		return Baseband{}, fmt.Errorf("unsupported input quantization %d", bb.InQuant)
	}
	if bb.BBA, err = requireInt(el, "bbA"); err != nil {
		return Baseband{}, err
	}
	if bb.BBB, err = requireInt(el, "bbB"); err != nil {
		return Baseband{}, err
	}

	ref := bb.Ref()
	for i, sel := range el.SelectElements("subBand") {
		sb, err := newSubband(ref, i, sel)
		if err != nil {
			return Baseband{}, fmt.Errorf("subband %d: %w", i, err)
		}
		bb.Subbands = append(bb.Subbands, sb)
	}
	return bb, nil
}
