package testutil

import (
	"fmt"
	"strings"
)

// VCISubband describes one subBand element. A zero Recirc omits the
// blbProdIntegration element; Placeholder omits polProducts entirely.
type VCISubband struct {
	SwIndex    int
	SBID       int
	BW         float64
	CenterFreq float64
	NPol       int
	NChan      int
	Recirc     int
	MinIntegUS float64
	// CC, LTA and CBE are omitted from the document when zero.
	CC, LTA, CBE int
	// Pairs are numBlbPairs, quadrant, firstBlbPair triples.
	Pairs       [][3]int
	CBEProc     bool
	Placeholder bool
}

// VCIBaseband describes one baseBand element.
type VCIBaseband struct {
	Name     string
	BW       float64
	InQuant  int
	Subbands []VCISubband
}

// VCI renders a correlator configuration document.
type VCI struct {
	ScanID    int
	ConfigID  string
	Basebands []VCIBaseband
}

// DefaultSubband is a valid 128 MHz subband with 64 channels, 1 s dumps.
func DefaultSubband(sbid int) VCISubband {
	return VCISubband{
		SwIndex:    sbid + 1,
		SBID:       sbid,
		BW:         128e6,
		CenterFreq: 64e6 + float64(sbid)*128e6,
		NPol:       4,
		NChan:      64,
		Recirc:     1,
		MinIntegUS: 1e6,
		Pairs:      [][3]int{{2, 1, 0}},
	}
}

// DefaultVCI is a document effective from scanNum with two 8-bit basebands.
func DefaultVCI(project string, scanNum int) VCI {
	return VCI{
		ScanID:   1000 + scanNum,
		ConfigID: fmt.Sprintf("%s.sb1.eb1.%d_scan%d", project, scanNum, scanNum),
		Basebands: []VCIBaseband{
			{Name: "A0/C0", BW: 1024e6, InQuant: 8, Subbands: []VCISubband{DefaultSubband(0), DefaultSubband(1)}},
			{Name: "B0/D0", BW: 1024e6, InQuant: 8, Subbands: []VCISubband{DefaultSubband(0)}},
		},
	}
}

// Render produces the XML text.
func (v VCI) Render() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<widar:vciRequest xmlns:widar="http://www.nrc.ca/namespaces/widar">` + "\n")
	fmt.Fprintf(&b, `  <widar:subArray scanId="%d" configId="%s">`+"\n", v.ScanID, v.ConfigID)
	b.WriteString("    <widar:stationInputOutput>\n")
	for i, bb := range v.Basebands {
		fmt.Fprintf(&b, `      <widar:baseBand name="%s" swbbName="%s" bw="%g" inQuant="%d" bbA="%d" bbB="%d">`+"\n",
			bb.Name, bb.Name, bb.BW, bb.InQuant, 2*i, 2*i+1)
		for _, sb := range bb.Subbands {
			renderSubband(&b, sb)
		}
		b.WriteString("      </widar:baseBand>\n")
	}
	b.WriteString("    </widar:stationInputOutput>\n")
	b.WriteString("  </widar:subArray>\n")
	b.WriteString("</widar:vciRequest>\n")
	return b.String()
}

func renderSubband(b *strings.Builder, sb VCISubband) {
	fmt.Fprintf(b, `        <widar:subBand swIndex="%d" sbid="%d" bw="%g" centralFreq="%g">`+"\n",
		sb.SwIndex, sb.SBID, sb.BW, sb.CenterFreq)
	if !sb.Placeholder {
		b.WriteString("          <widar:polProducts>\n")
		for range sb.NPol {
			fmt.Fprintf(b, `            <widar:pp spectralChannels="%d"/>`+"\n", sb.NChan)
		}
		if sb.Recirc != 0 {
			fmt.Fprintf(b, `            <widar:blbProdIntegration recirculation="%d" minIntegTime="%g"%s/>`+"\n",
				sb.Recirc, sb.MinIntegUS, factorAttrs(sb))
		}
		for _, p := range sb.Pairs {
			fmt.Fprintf(b, `            <widar:blbPair numBlbPairs="%d" quadrant="%d" firstBlbPair="%d"/>`+"\n",
				p[0], p[1], p[2])
		}
		if sb.CBEProc {
			b.WriteString(`            <widar:cbeProcessing mode="average"/>` + "\n")
		}
		b.WriteString("          </widar:polProducts>\n")
	}
	b.WriteString("        </widar:subBand>\n")
}

func factorAttrs(sb VCISubband) string {
	var s string
	if sb.CC != 0 {
		s += fmt.Sprintf(` ccIntegFactor="%d"`, sb.CC)
	}
	if sb.LTA != 0 {
		s += fmt.Sprintf(` ltaIntegFactor="%d"`, sb.LTA)
	}
	if sb.CBE != 0 {
		s += fmt.Sprintf(` cbeIntegFactor="%d"`, sb.CBE)
	}
	return s
}
