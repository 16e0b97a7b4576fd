package execution

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/widarcfg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArchive lays out two good observations, one broken one, one known
// invalid one and one test program under a fresh root.
func writeArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	testutil.DefaultObservation("20A-123").Write(t, root)

	second := testutil.DefaultObservation("20B-456")
	second.Month = "07"
	second.Write(t, root)

	broken := testutil.DefaultObservation("20A-999")
	broken.VCIs = nil
	broken.Write(t, root)

	known := testutil.DefaultObservation("53714A-242A")
	known.Year, known.Month = "2014", "06"
	known.Write(t, root)

	testutil.DefaultObservation("TTEST").Write(t, root)
	return root
}

func TestProgramPaths(t *testing.T) {
	root := writeArchive(t)
	testutil.WriteFile(t, filepath.Join(root, "2021", "01", "stray-file"), "x")
	testutil.WriteFile(t, filepath.Join(root, "notes", "01", "20A-000", "a.evla"), "x")

	paths, err := ProgramPaths(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "2014", "06", "53714A-242A"),
		filepath.Join(root, "2021", "01", "20A-123"),
		filepath.Join(root, "2021", "01", "20A-999"),
		filepath.Join(root, "2021", "07", "20B-456"),
	}, paths)

	all, err := ProgramPaths(root, true)
	require.NoError(t, err)
	assert.Contains(t, all, filepath.Join(root, "2021", "01", "TTEST"))

	scripts, err := ScriptPaths(root)
	require.NoError(t, err)
	assert.Len(t, scripts, 4)
}

func TestReadAll(t *testing.T) {
	root := writeArchive(t)
	logger, records := testutil.CaptureLogger()

	execs, skips, err := ReadAll(context.Background(), root, BatchOptions{Workers: 2, Logger: logger})
	require.NoError(t, err)

	var labels []string
	for _, ex := range execs {
		labels = append(labels, ex.Label)
	}
	assert.Equal(t, []string{"2021/01/20A-123", "2021/07/20B-456"}, labels)

	require.Len(t, skips, 2)
	assert.ErrorIs(t, skips[0].Err, ErrKnownInvalid)
	assert.Equal(t, "20A-999", filepath.Base(skips[1].Path))

	assert.Equal(t, []string{
		"skipping known invalid observation",
		"skipping observation",
	}, records.Messages(slog.LevelWarn))
}

func TestReadPaths_CustomKnownInvalid(t *testing.T) {
	root := writeArchive(t)
	paths := []string{
		filepath.Join(root, "2021", "01", "20A-123"),
		filepath.Join(root, "2014", "06", "53714A-242A"),
	}

	execs, skips, err := ReadPaths(context.Background(), paths, BatchOptions{
		KnownInvalid: []string{"20A-123"},
		Logger:       testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "2014/06/53714A-242A", execs[0].Label)
	require.Len(t, skips, 1)
	assert.ErrorIs(t, skips[0].Err, ErrKnownInvalid)
}

func TestReadPaths_MissingPathAborts(t *testing.T) {
	_, _, err := ReadPaths(context.Background(), []string{filepath.Join(t.TempDir(), "gone")}, BatchOptions{})
	assert.Error(t, err)
}

func TestCollectRows(t *testing.T) {
	root := t.TempDir()
	good := testutil.DefaultObservation("20A-123")
	good.Write(t, root)

	invalid := testutil.DefaultObservation("20A-777")
	for i := range invalid.VCIs[0].Basebands {
		for j := range invalid.VCIs[0].Basebands[i].Subbands {
			invalid.VCIs[0].Basebands[i].Subbands[j].Placeholder = true
		}
	}
	invalid.Write(t, root)

	execs, _, err := ReadAll(context.Background(), root, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, execs, 2)

	rows, skips, err := CollectRows(context.Background(), execs, BatchOptions{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	require.Len(t, skips, 1)
	assert.Equal(t, "20A-777", filepath.Base(skips[0].Path))
}
