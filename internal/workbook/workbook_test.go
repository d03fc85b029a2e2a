package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "11-1021", "11-1021"},
		{"surrounding whitespace", "  0010\t", "0010"},
		{"nbsp", "11-1021 ", "11-1021"},
		{"interior nbsp", "11 - 1021", "11 - 1021"},
		{"fullwidth digits", "００１０", "0010"},
		{"blank", "   ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCell(tt.in))
		})
	}
}

func TestSheetCell_ShortRows(t *testing.T) {
	s := Sheet{
		Columns: []string{"a", "b", "c"},
		Rows: [][]string{
			{"1", "2", "3"},
			{"4"},
		},
	}

	assert.Equal(t, "3", s.Cell(0, 2))
	assert.Equal(t, "", s.Cell(1, 1), "short row reads as blank")
	assert.Equal(t, "", s.Cell(5, 0), "out-of-range row reads as blank")
	assert.Equal(t, "", s.Cell(0, -1))
}

func TestSheetColumnCount_WidestRowWins(t *testing.T) {
	s := Sheet{
		Columns: []string{"a", "b"},
		Rows: [][]string{
			{"1", "2", "3", "4"},
			{"5"},
		},
	}
	assert.Equal(t, 4, s.ColumnCount())
}

func TestSheetColumnName(t *testing.T) {
	s := Sheet{Columns: []string{"occ", "soc"}}
	assert.Equal(t, "soc", s.ColumnName(1))
	assert.Equal(t, "", s.ColumnName(2), "ragged header reads as unnamed")
}

func TestWorkbookSheetLookup(t *testing.T) {
	wb := Workbook{Sheets: []Sheet{{Name: "Overview"}, {Name: "Codes"}}}

	got := wb.Sheet("Codes")
	assert.NotNil(t, got)
	assert.Equal(t, "Codes", got.Name)
	assert.Nil(t, wb.Sheet("Missing"))
}
