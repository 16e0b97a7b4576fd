package execution

import (
	"strconv"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// Row is one valid subband of a representative configuration. Frequencies
// are in Hz, times in seconds and baselines in meters.
type Row struct {
	Label string  `json:"label" yaml:"label"`
	Year  string  `json:"year" yaml:"year"`
	Month string  `json:"month" yaml:"month"`
	Code  string  `json:"code" yaml:"code"`
	DBID  string  `json:"dbid" yaml:"dbid"`
	MJD   float64 `json:"mjd" yaml:"mjd"`

	LoIndex  int    `json:"lo_ix" yaml:"lo_ix"`
	Baseband string `json:"bb_ix" yaml:"bb_ix"`
	Subband  int    `json:"sb_ix" yaml:"sb_ix"`

	MaxConfig   string  `json:"max_config" yaml:"max_config"`
	MaxBaseline float64 `json:"max_baseline" yaml:"max_baseline"`

	LoMode   bool   `json:"lo_mode" yaml:"lo_mode"`
	LoFlag   int    `json:"lo_flag" yaml:"lo_flag"`
	Receiver string `json:"rcvr" yaml:"rcvr"`

	BasebandBW float64 `json:"bb_bw" yaml:"bb_bw"`
	InQuant    int     `json:"in_quant" yaml:"in_quant"`
	IsEightBit bool    `json:"is_8bit" yaml:"is_8bit"`

	NPol         int     `json:"npol" yaml:"npol"`
	NChan        int     `json:"nchan" yaml:"nchan"`
	Recirc       int     `json:"recirc" yaml:"recirc"`
	MinIntegTime float64 `json:"min_integ_time" yaml:"min_integ_time"`
	IntegTime    float64 `json:"int_time" yaml:"int_time"`

	SubbandBW float64 `json:"sb_bw" yaml:"sb_bw"`
	SubbandCF float64 `json:"sb_cf" yaml:"sb_cf"`
	NBlb      int     `json:"nblb" yaml:"nblb"`

	SampleFreq float64 `json:"f_samp" yaml:"f_samp"`
	OptFreq    float64 `json:"f_opt" yaml:"f_opt"`
	SkyFreq    float64 `json:"f_sky" yaml:"f_sky"`
	ShiftFreq  float64 `json:"f_shift" yaml:"f_shift"`
	BasebandCF float64 `json:"bb_cf" yaml:"bb_cf"`
}

// RowKey uniquely identifies a Row across a record set.
type RowKey struct {
	Label    string
	LoIndex  int
	Baseband string
	Subband  int
}

// Key returns the row's unique key.
func (r Row) Key() RowKey {
	return RowKey{Label: r.Label, LoIndex: r.LoIndex, Baseband: r.Baseband, Subband: r.Subband}
}

// Columns are the column names of a Row, in Values order.
var Columns = []string{
	"label", "year", "month", "code", "dbid", "mjd",
	"lo_ix", "bb_ix", "sb_ix",
	"max_config", "max_baseline",
	"lo_mode", "lo_flag", "rcvr",
	"bb_bw", "in_quant", "is_8bit",
	"npol", "nchan", "recirc", "min_integ_time", "int_time",
	"sb_bw", "sb_cf", "nblb",
	"f_samp", "f_opt", "f_sky", "f_shift", "bb_cf",
}

// Values formats the row as text cells matching Columns.
func (r Row) Values() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	b := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return []string{
		r.Label, r.Year, r.Month, r.Code, r.DBID, f(r.MJD),
		strconv.Itoa(r.LoIndex), r.Baseband, strconv.Itoa(r.Subband),
		r.MaxConfig, f(r.MaxBaseline),
		b(r.LoMode), strconv.Itoa(r.LoFlag), r.Receiver,
		f(r.BasebandBW), strconv.Itoa(r.InQuant), b(r.IsEightBit),
		strconv.Itoa(r.NPol), strconv.Itoa(r.NChan), strconv.Itoa(r.Recirc), f(r.MinIntegTime), f(r.IntegTime),
		f(r.SubbandBW), f(r.SubbandCF), strconv.Itoa(r.NBlb),
		f(r.SampleFreq), f(r.OptFreq), f(r.SkyFreq), f(r.ShiftFreq), f(r.BasebandCF),
	}
}

// Rows flattens the execution into one Row per valid subband of each
// representative configuration.
func (ex *Execution) Rows() ([]Row, error) {
	var (
		rows []Row
		seen = make(map[RowKey]bool)
	)
	for item := range ex.ValidSubbands() {
		row, err := ex.row(item)
		if err != nil {
			return nil, err
		}
		if seen[row.Key()] {
			return nil, core.NewParseError(ex.Label, "rows", "duplicate row %+v", row.Key())
		}
		seen[row.Key()] = true
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, core.NewParseError(ex.Label, "rows", "no valid subbands")
	}
	return rows, nil
}

func (ex *Execution) row(item ConfigSubband) (Row, error) {
	cfg, bb, sb := item.Config, item.Baseband, item.Subband
	src := ex.Source

	sky, err := cfg.Setup.SkyFreq(sb)
	if err != nil {
		return Row{}, err
	}
	shift, err := cfg.Offset.BasebandFreq(bb.Name)
	if err != nil {
		return Row{}, err
	}
	center, err := cfg.Setup.BasebandFreq(bb.Name)
	if err != nil {
		return Row{}, err
	}

	return Row{
		Label: ex.Label,
		Year:  ex.Year,
		Month: ex.Month,
		Code:  src.ProjectCode,
		DBID:  src.DBID,
		MJD:   src.StartMJD,

		LoIndex:  cfg.Setup.Index,
		Baseband: bb.Name,
		Subband:  sb.SwIndex,

		MaxConfig:   src.MaxArrayConfig.String(),
		MaxBaseline: src.MaxBaseline,

		LoMode:   cfg.Setup.Mode,
		LoFlag:   cfg.Setup.Flag,
		Receiver: cfg.Setup.Receiver,

		BasebandBW: bb.BW,
		InQuant:    bb.InQuant,
		IsEightBit: bb.IsEightBit(),

		NPol:         sb.NPol,
		NChan:        sb.NChan,
		Recirc:       sb.Recirculation,
		MinIntegTime: sb.MinIntegTime,
		IntegTime:    sb.IntegTime,

		SubbandBW: sb.BW,
		SubbandCF: sb.CenterFreq,
		NBlb:      sb.NumBaselinePairs(),

		SampleFreq: sb.SampleFreq,
		OptFreq:    sb.OptimumMixerFreq,
		SkyFreq:    sky,
		ShiftFreq:  shift,
		BasebandCF: center,
	}, nil
}
