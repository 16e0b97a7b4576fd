package execution

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/widarcfg/internal/evla"
	"github.com/leapstack-labs/widarcfg/internal/vci"
	"github.com/leapstack-labs/widarcfg/pkg/core"
)

// ResolveError reports a scan that starts before every configuration
// document in the observation.
type ResolveError struct {
	Scan     int
	Earliest int
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("scan %d precedes the first configuration (scan %d)", e.Scan, e.Earliest)
}

// Is lets errors.Is(err, core.ErrInconsistent) match.
func (e *ResolveError) Is(target error) bool {
	return target == core.ErrInconsistent
}

// ResolveConfigs maps every scan index to the document in effect for it:
// the one with the greatest ScanNum not after the scan. Documents are only
// written when the correlator configuration changes.
func ResolveConfigs(scans []evla.Scan, docs []*vci.Document) (map[int]*vci.Document, error) {
	if len(docs) == 0 {
		return nil, core.NewParseError("", "vci", "no configuration documents")
	}

	sorted := make([]*vci.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScanNum < sorted[j].ScanNum
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ScanNum == sorted[i-1].ScanNum {
			return nil, core.NewParseError(sorted[i].Path, "vci",
				"scan %d is configured by both %s and %s", sorted[i].ScanNum, sorted[i-1].Path, sorted[i].Path)
		}
	}

	out := make(map[int]*vci.Document, len(scans))
	for _, s := range scans {
		// First document strictly after the scan; the one before it governs.
		n := sort.Search(len(sorted), func(i int) bool {
			return sorted[i].ScanNum > s.Index
		})
		if n == 0 {
			return nil, &ResolveError{Scan: s.Index, Earliest: sorted[0].ScanNum}
		}
		out[s.Index] = sorted[n-1]
	}
	return out, nil
}
