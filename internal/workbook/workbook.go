// Package workbook holds the in-memory model of a spreadsheet: an ordered
// list of sheets, each a header row plus a 2-D table of string cells.
package workbook

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sheet is one worksheet. Columns holds the header names (may contain empty
// strings for unnamed columns); Rows holds the data rows beneath the header.
// Short rows are legal — use Cell for bounds-safe access.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Workbook is an ordered collection of sheets. Order matters: sheet
// selection ties resolve to the first sheet in workbook order.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the sheet with the given name, or nil if absent.
func (w *Workbook) Sheet(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}

// ColumnCount returns the width of the sheet: the header width or the
// widest data row, whichever is larger.
func (s *Sheet) ColumnCount() int {
	n := len(s.Columns)
	for _, row := range s.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Cell returns the value at (row, col), or "" when the row is short.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnName returns the header name for a column index, or "" when the
// header row is shorter than the table.
func (s *Sheet) ColumnName(col int) string {
	if col < 0 || col >= len(s.Columns) {
		return ""
	}
	return s.Columns[col]
}

// cellCleaner folds compatibility forms (full-width digits, NBSP and other
// unicode spaces) to their ASCII equivalents. Census workbooks carry both.
var cellCleaner = transform.Chain(
	norm.NFKC,
	runes.Map(func(r rune) rune {
		if unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}),
)

// CleanCell normalizes a raw cell value: NFKC fold, unicode spaces to
// ASCII space, then trim. Returns "" for blank cells.
func CleanCell(s string) string {
	out, _, err := transform.String(cellCleaner, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(out)
}
