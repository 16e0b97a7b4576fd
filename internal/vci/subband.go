package vci

import (
	"fmt"
	"math"

	"github.com/beevik/etree"
)

// NotApplicable marks a channel count that the document does not carry.
const NotApplicable = -1

// IntegFactors are the cc, lta and cbe integration multipliers.
type IntegFactors struct {
	CC, LTA, CBE int
}

// Product is CC*LTA*CBE.
func (f IntegFactors) Product() int {
	return f.CC * f.LTA * f.CBE
}

// Subband is one subBand element with its derived timing quantities.
// Frequencies are in Hz and times in seconds.
type Subband struct {
	Baseband BasebandRef

	Index      int
	SwIndex    int
	SBID       int
	BW         float64
	CenterFreq float64

	NPol          int
	NChan         int
	Recirculation int
	MinIntegTime  float64
	Factors       IntegFactors

	IntegTime        float64
	SampleFreq       float64
	OptimumMixerFreq float64

	BaselinePairs []string
	// CBEProcessing holds the cbeProcessing attributes, nil when absent.
	CBEProcessing map[string]string

	// Valid is false for placeholder subbands that cannot be timed.
	Valid bool
}

// NumBaselinePairs is the length of BaselinePairs.
func (s Subband) NumBaselinePairs() int {
	return len(s.BaselinePairs)
}

func (s Subband) String() string {
	cbe := ""
	if s.CBEProcessing != nil {
		cbe = "cbeP"
	}
	return fmt.Sprintf(
		"SB sw=%02d sb=%02d bw=%.1f cf=%07.3f nc=%d np=%d r=%d t=%.4f cc=%d lta=%d cbe=%d ts=%.2f blbs=%v %s",
		s.SwIndex, s.SBID, s.BW/1e6, s.CenterFreq/1e6, s.NChan, s.NPol,
		s.Recirculation, s.MinIntegTime, s.Factors.CC, s.Factors.LTA,
		s.Factors.CBE, s.IntegTime, s.BaselinePairs, cbe,
	)
}

func newSubband(bb BasebandRef, index int, el *etree.Element) (Subband, error) {
	sb := Subband{
		Baseband: bb,
		Index:    index,
		NChan:    NotApplicable,
		Factors:  IntegFactors{CC: 1, LTA: 1, CBE: 1},
	}

	var err error
	if sb.SwIndex, err = requireInt(el, "swIndex"); err != nil {
		return Subband{}, err
	}
	if sb.SBID, err = requireInt(el, "sbid"); err != nil {
		return Subband{}, err
	}
	if sb.BW, err = requireFloat(el, "bw"); err != nil {
		return Subband{}, err
	}
	if sb.CenterFreq, err = requireFloat(el, "centralFreq"); err != nil {
		return Subband{}, err
	}
	sb.SampleFreq = 2 * sb.BW

	pol := el.SelectElement("polProducts")
	if pol == nil {
		return sb, nil
	}
	if err := sb.readPolProducts(pol); err != nil {
		return Subband{}, err
	}

	sb.Valid = sb.NPol > 0 && sb.Recirculation >= 1 && sb.IntegTime > 0 && sb.BW > 0
	if sb.Valid {
		sb.OptimumMixerFreq = 1.25 / math.Pi * math.Sqrt(sb.SampleFreq/sb.IntegTime)
	}
	return sb, nil
}

func (sb *Subband) readPolProducts(pol *etree.Element) error {
	pps := pol.SelectElements("pp")
	sb.NPol = len(pps)
	if len(pps) > 0 {
		n, ok, err := intAttr(pps[0], "spectralChannels")
		if err != nil {
			return err
		}
		if ok {
			sb.NChan = n
		}
	}

	if integ := pol.SelectElement("blbProdIntegration"); integ != nil {
		var err error
		if sb.Recirculation, err = requireInt(integ, "recirculation"); err != nil {
			return err
		}
		us, err := requireFloat(integ, "minIntegTime")
		if err != nil {
			return err
		}
		sb.MinIntegTime = us * 1e-6

		for _, f := range []struct {
			key string
			dst *int
		}{
			{"ccIntegFactor", &sb.Factors.CC},
			{"ltaIntegFactor", &sb.Factors.LTA},
			{"cbeIntegFactor", &sb.Factors.CBE},
		} {
			v, ok, err := intAttr(integ, f.key)
			if err != nil {
				return err
			}
			if ok {
				*f.dst = v
			}
		}
		sb.IntegTime = sb.MinIntegTime * float64(sb.Recirculation) * float64(sb.Factors.Product())
	}

	for _, pair := range pol.SelectElements("blbPair") {
		n, err := requireInt(pair, "numBlbPairs")
		if err != nil {
			return err
		}
		q, err := requireInt(pair, "quadrant")
		if err != nil {
			return err
		}
		p0, err := requireInt(pair, "firstBlbPair")
		if err != nil {
			return err
		}
		for i := range n {
			sb.BaselinePairs = append(sb.BaselinePairs, fmt.Sprintf("q%dp%d", q, p0+i))
		}
	}

	if cbe := pol.SelectElement("cbeProcessing"); cbe != nil {
		sb.CBEProcessing = make(map[string]string, len(cbe.Attr))
		for _, a := range cbe.Attr {
			sb.CBEProcessing[a.Key] = a.Value
		}
	}
	return nil
}
