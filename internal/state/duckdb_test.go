package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDBBackend(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, BackendDuckDB, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	run, err := s.CreateRun(ctx, "/archive")
	require.NoError(t, err)
	require.NoError(t, s.SaveRows(ctx, run.ID, sampleRows("2021/01/a", 2)))
	require.NoError(t, s.CompleteRun(ctx, run.ID, RunStatusCompleted, RunCounts{Executions: 1, Rows: 2}, ""))

	rows, err := s.ListRows(ctx, "2021/01/a")
	require.NoError(t, err)
	assert.Equal(t, sampleRows("2021/01/a", 2), rows)

	runs, err := s.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusCompleted, runs[0].Status)

	_, err = s.MigrationVersion(ctx)
	assert.Error(t, err)
}
