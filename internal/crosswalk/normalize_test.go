package crosswalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detFor(occ, soc int) Detection {
	return Detection{OccIndex: occ, SocIndex: soc, HasOcc: true, HasSoc: true}
}

func TestNormalizeRows_Strict(t *testing.T) {
	sheet := sheetOf("codes", []string{"occ", "soc"},
		[]string{"10", "11-1021"},
		[]string{"0020", "111011"},
		[]string{"bad", "11-2011"},          // occ fails, dropped before soc
		[]string{"0030", "15-1132, 15-1133"}, // multi-token, dropped in strict
		[]string{"0040", "not a code"},
	)

	rows, stats := NormalizeRows(sheet, detFor(0, 1), SocStrict)
	assert.Equal(t, []Row{
		{Occ: "0010", Soc: "11-1021"},
		{Occ: "0020", Soc: "11-1011"},
	}, rows)
	assert.Equal(t, 5, stats.RowsRead)
	assert.Equal(t, 4, stats.AfterOcc)
	assert.Equal(t, 2, stats.AfterSoc)
}

func TestNormalizeRows_Expand(t *testing.T) {
	sheet := sheetOf("codes", []string{"occ", "soc"},
		[]string{"0030", "15-1132, 15-1133"},
	)

	rows, _ := NormalizeRows(sheet, detFor(0, 1), SocExpand)
	assert.Equal(t, []Row{
		{Occ: "0030", Soc: "15-1132"},
		{Occ: "0030", Soc: "15-1133"},
	}, rows)
}

func TestNormalizeRows_ExpandDiscardsInvalidSiblings(t *testing.T) {
	sheet := sheetOf("codes", []string{"occ", "soc"},
		[]string{"0030", "15-1132, see note"},
	)

	rows, _ := NormalizeRows(sheet, detFor(0, 1), SocExpand)
	assert.Equal(t, []Row{{Occ: "0030", Soc: "15-1132"}}, rows)
}

func TestNormalizeRows_OccFailureSkipsSocWork(t *testing.T) {
	sheet := sheetOf("codes", []string{"occ", "soc"},
		[]string{"", "11-1021"},
		[]string{"none", "11-1021"},
	)

	rows, stats := NormalizeRows(sheet, detFor(0, 1), SocStrict)
	assert.Empty(t, rows)
	assert.Equal(t, 0, stats.AfterOcc)
}

func TestNormalizeRows_PreservesInputOrder(t *testing.T) {
	sheet := sheetOf("codes", []string{"occ", "soc"},
		[]string{"0050", "11-2011"},
		[]string{"0010", "11-1021"},
	)

	rows, _ := NormalizeRows(sheet, detFor(0, 1), SocStrict)
	require.Len(t, rows, 2)
	assert.Equal(t, "0050", rows[0].Occ)
	assert.Equal(t, "0010", rows[1].Occ)
}
