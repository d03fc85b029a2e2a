package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	require.NoError(t, log.Migrate(context.Background()))
	return log
}

func TestStartAndComplete(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	id, err := log.Start(ctx, "build")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	meta := map[string]any{"sheet": "Codes", "occ_column": "2018 Census Code"}
	require.NoError(t, log.Complete(ctx, id, 567, meta))

	entries, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "build", e.Kind)
	assert.Equal(t, StatusComplete, e.Status)
	assert.Equal(t, int64(567), e.Rows)
	require.NotNil(t, e.CompletedAt)
	assert.Empty(t, e.Error)
	assert.Equal(t, "Codes", e.Metadata["sheet"])
}

func TestFail(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	id, err := log.Start(ctx, "extract")
	require.NoError(t, err)
	require.NoError(t, log.Fail(ctx, id, "no workbook sheet contains occupation and SOC columns"))

	entries, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Error, "occupation and SOC columns")
	require.NotNil(t, entries[0].CompletedAt)
}

func TestList_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	log := openTestLog(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := log.Start(ctx, "build")
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ids[2], entries[0].ID, "most recent first")
	assert.Equal(t, ids[0], entries[2].ID)

	entries, err = log.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMigrate_Idempotent(t *testing.T) {
	log := openTestLog(t)
	require.NoError(t, log.Migrate(context.Background()))
}
