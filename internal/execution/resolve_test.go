package execution

import (
	"math/rand/v2"
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/evla"
	"github.com/leapstack-labs/widarcfg/internal/vci"
	"github.com/leapstack-labs/widarcfg/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scansUpTo(n int) []evla.Scan {
	out := make([]evla.Scan, n)
	for i := range out {
		out[i] = evla.Scan{Index: i + 1, LoIfID: "loif0"}
	}
	return out
}

func docsAt(nums ...int) []*vci.Document {
	out := make([]*vci.Document, len(nums))
	for i, n := range nums {
		out[i] = &vci.Document{ScanNum: n}
	}
	return out
}

func TestResolveConfigs(t *testing.T) {
	tests := []struct {
		name  string
		scans int
		docs  []int
		want  map[int]int
	}{
		{
			name:  "single document",
			scans: 3,
			docs:  []int{1},
			want:  map[int]int{1: 1, 2: 1, 3: 1},
		},
		{
			name:  "reuse until next change",
			scans: 6,
			docs:  []int{1, 3, 6},
			want:  map[int]int{1: 1, 2: 1, 3: 3, 4: 3, 5: 3, 6: 6},
		},
		{
			name:  "unsorted documents",
			scans: 4,
			docs:  []int{4, 1, 2},
			want:  map[int]int{1: 1, 2: 2, 3: 2, 4: 4},
		},
		{
			name:  "document past the last scan",
			scans: 2,
			docs:  []int{1, 10},
			want:  map[int]int{1: 1, 2: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveConfigs(scansUpTo(tt.scans), docsAt(tt.docs...))
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for scan, num := range tt.want {
				assert.Equal(t, num, got[scan].ScanNum, "scan %d", scan)
			}
		})
	}
}

func TestResolveConfigs_GreatestNotAfter(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		nums := []int{1}
		for n := 1; n < 40; n++ {
			if r.IntN(4) == 0 {
				nums = append(nums, n+1)
			}
		}
		got, err := ResolveConfigs(scansUpTo(40), docsAt(nums...))
		require.NoError(t, err)

		for scan, doc := range got {
			best := 0
			for _, n := range nums {
				if n <= scan && n > best {
					best = n
				}
			}
			assert.Equal(t, best, doc.ScanNum, "scan %d", scan)
		}
	}
}

func TestResolveConfigs_Errors(t *testing.T) {
	_, err := ResolveConfigs(scansUpTo(2), docsAt(2))
	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Scan)
	assert.Equal(t, 2, rerr.Earliest)
	assert.ErrorIs(t, err, core.ErrInconsistent)

	_, err = ResolveConfigs(scansUpTo(2), docsAt(1, 1))
	assert.ErrorIs(t, err, core.ErrParse)

	_, err = ResolveConfigs(scansUpTo(2), nil)
	assert.ErrorIs(t, err, core.ErrParse)
}
