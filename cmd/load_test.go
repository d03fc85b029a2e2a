//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-labor/occwalk/internal/crosswalk"
)

func writeCSVFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xwalk.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCrosswalkCSV(t *testing.T) {
	path := writeCSVFile(t, "occ,soc\n0010,11-1021\n0020,11-1011\n")

	rows, err := readCrosswalkCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []crosswalk.Row{
		{Occ: "0010", Soc: "11-1021"},
		{Occ: "0020", Soc: "11-1011"},
	}, rows)
}

func TestReadCrosswalkCSV_BadHeader(t *testing.T) {
	path := writeCSVFile(t, "code,title\n0010,Chief executives\n")

	_, err := readCrosswalkCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected header occ,soc")
}

func TestReadCrosswalkCSV_HeaderOnly(t *testing.T) {
	path := writeCSVFile(t, "occ,soc\n")

	rows, err := readCrosswalkCSV(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCrosswalkCSV_MissingFile(t *testing.T) {
	_, err := readCrosswalkCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoadCmd_RequiresDatabaseURL(t *testing.T) {
	testConfig(t)

	loadCmd.SetContext(context.Background())
	defer loadCmd.SetContext(context.TODO())

	err := loadCmd.RunE(loadCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database_url configured")
}
