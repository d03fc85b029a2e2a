package crosswalk

import (
	"strings"

	"github.com/ai-labor/occwalk/internal/workbook"
)

// DefaultSampleCap bounds how many non-blank cells per column are
// inspected, so scoring cost is independent of row count.
const DefaultSampleCap = 400

// headerBonus is the additive nudge for columns whose header carries a
// domain hint. It is small enough to break ties only, never to let a
// weak content match outrank a strong one.
const headerBonus = 0.02

var occHints = []string{"occ", "census", "2018"}

// ColumnScore holds the pattern-match fractions for one column.
type ColumnScore struct {
	Index int
	Name  string
	Occ   float64
	Soc   float64
}

// ScoreColumns computes OCC-likeness and SOC-likeness for every column of
// a sheet. Fractions are over the first sampleCap non-blank cells; a
// column with no non-blank cells scores zero on both axes.
func ScoreColumns(sheet *workbook.Sheet, sampleCap int) []ColumnScore {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}

	width := sheet.ColumnCount()
	scores := make([]ColumnScore, 0, width)
	for col := 0; col < width; col++ {
		name := sheet.ColumnName(col)
		sc := ColumnScore{
			Index: col,
			Name:  name,
			Occ:   columnFraction(sheet, col, sampleCap, IsOccLike),
			Soc:   columnFraction(sheet, col, sampleCap, anySocToken),
		}

		lower := strings.ToLower(name)
		for _, hint := range occHints {
			if strings.Contains(lower, hint) {
				sc.Occ += headerBonus
				break
			}
		}
		if strings.Contains(lower, "soc") {
			sc.Soc += headerBonus
		}

		scores = append(scores, sc)
	}
	return scores
}

// columnFraction returns the share of sampled non-blank cells in a column
// that satisfy the predicate.
func columnFraction(sheet *workbook.Sheet, col, sampleCap int, match func(string) bool) float64 {
	sampled, good := 0, 0
	for row := 0; row < len(sheet.Rows) && sampled < sampleCap; row++ {
		v := sheet.Cell(row, col)
		if v == "" {
			continue
		}
		sampled++
		if match(v) {
			good++
		}
	}
	if sampled == 0 {
		return 0
	}
	return float64(good) / float64(sampled)
}

// anySocToken reports whether any token in the cell is SOC-shaped.
func anySocToken(value string) bool {
	for _, tok := range SplitTokens(value) {
		if IsSocToken(tok) {
			return true
		}
	}
	return false
}
