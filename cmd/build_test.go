//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/ai-labor/occwalk/internal/config"
	"github.com/ai-labor/occwalk/internal/crosswalk"
)

// testConfig installs a baseline config with the runlog in a temp dir.
func testConfig(t *testing.T) {
	t.Helper()
	cfg = &config.Config{
		Crosswalk: config.CrosswalkConfig{
			SampleCap:     400,
			MinScore:      0.5,
			SocPolicy:     "strict",
			ResolvePolicy: "strict",
		},
		Runlog: config.RunlogConfig{
			Path: filepath.Join(t.TempDir(), "runs.db"),
		},
	}
}

// writeCodesXLSX saves a small workbook with a prose sheet and a codes
// sheet, returning its path.
func writeCodesXLSX(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	overview, err := f.AddSheet("Overview")
	require.NoError(t, err)
	overview.AddRow().AddCell().SetString("2018 occupation code list")

	codes, err := f.AddSheet("Codes")
	require.NoError(t, err)
	for _, row := range rows {
		r := codes.AddRow()
		for _, val := range row {
			r.AddCell().SetString(val)
		}
	}

	path := filepath.Join(t.TempDir(), "codes.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestBuildOptions_Defaults(t *testing.T) {
	testConfig(t)

	opts, err := buildOptions(buildCmd)
	require.NoError(t, err)
	assert.Equal(t, crosswalk.SocStrict, opts.SocPolicy)
	assert.Equal(t, crosswalk.ResolveStrict, opts.ResolvePolicy)
	assert.Equal(t, 400, opts.SampleCap)
	assert.InDelta(t, 0.5, opts.MinScore, 0.001)
}

func TestBuildOptions_FlagsOverrideConfig(t *testing.T) {
	testConfig(t)

	require.NoError(t, buildCmd.Flags().Set("soc-policy", "expand"))
	require.NoError(t, buildCmd.Flags().Set("resolve", "prefer-specific"))
	defer func() {
		_ = buildCmd.Flags().Set("soc-policy", "")
		_ = buildCmd.Flags().Set("resolve", "")
	}()

	opts, err := buildOptions(buildCmd)
	require.NoError(t, err)
	assert.Equal(t, crosswalk.SocExpand, opts.SocPolicy)
	assert.Equal(t, crosswalk.ResolvePreferSpecific, opts.ResolvePolicy)
}

func TestBuildOptions_InvalidSocPolicy(t *testing.T) {
	testConfig(t)
	cfg.Crosswalk.SocPolicy = "lenient"

	_, err := buildOptions(buildCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown soc policy "lenient"`)
}

func TestBuildOptions_InvalidResolvePolicy(t *testing.T) {
	testConfig(t)
	cfg.Crosswalk.ResolvePolicy = "loose"

	_, err := buildOptions(buildCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown resolve policy "loose"`)
}

func TestRunBuild_EndToEnd(t *testing.T) {
	testConfig(t)

	path := writeCodesXLSX(t, [][]string{
		{"2018 Census Code", "2018 SOC Code"},
		{"0020", "11-1011"},
		{"0010", "11-1021"},
		{"", ""},
	})

	result, err := runBuild(path, -1, crosswalk.Options{
		SocPolicy:     crosswalk.SocStrict,
		ResolvePolicy: crosswalk.ResolveStrict,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []crosswalk.Row{
		{Occ: "0010", Soc: "11-1021"},
		{Occ: "0020", Soc: "11-1011"},
	}, result.Rows)
	assert.Equal(t, "Codes", result.Diagnostics.Sheet)
}

func TestRunBuild_SkipRowsFromConfig(t *testing.T) {
	testConfig(t)
	cfg.Crosswalk.SkipRows = 1

	path := writeCodesXLSX(t, [][]string{
		{"Occupation code list, 2018 revision"},
		{"occ", "soc"},
		{"0010", "11-1011"},
	})

	result, err := runBuild(path, -1, crosswalk.Options{
		SocPolicy:     crosswalk.SocStrict,
		ResolvePolicy: crosswalk.ResolveStrict,
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "occ", result.Diagnostics.OccColumn)
}

func TestRunBuild_MissingFile(t *testing.T) {
	testConfig(t)

	_, err := runBuild(filepath.Join(t.TempDir(), "missing.xlsx"), 0, crosswalk.Options{
		SocPolicy:     crosswalk.SocStrict,
		ResolvePolicy: crosswalk.ResolveStrict,
	})
	assert.Error(t, err)
}

func TestOpenRunlog(t *testing.T) {
	testConfig(t)
	ctx := context.Background()

	log, err := openRunlog(ctx)
	require.NoError(t, err)
	defer log.Close() //nolint:errcheck

	id, err := log.Start(ctx, "build")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
