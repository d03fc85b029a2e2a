package crosswalk

import (
	"golang.org/x/sync/errgroup"

	"github.com/ai-labor/occwalk/internal/workbook"
)

// Detection is the column-role assignment for one sheet: the OCC column,
// the SOC column, and their content scores. The two roles never share a
// column; HasSoc is false when no distinct SOC column exists.
type Detection struct {
	OccIndex int
	OccName  string
	OccScore float64

	SocIndex int
	SocName  string
	SocScore float64

	HasOcc bool
	HasSoc bool
}

// DetectColumns scores every column of a sheet and assigns the OCC and
// SOC roles to two distinct columns. The OCC role takes the highest
// OCC-scoring column; the SOC role takes the highest SOC-scoring column,
// re-picked over the remaining columns when both maxima land on the same
// one. Ties keep the leftmost column.
func DetectColumns(sheet *workbook.Sheet, sampleCap int) Detection {
	det := Detection{OccIndex: -1, SocIndex: -1}

	scores := ScoreColumns(sheet, sampleCap)
	if len(scores) == 0 {
		return det
	}

	for _, sc := range scores {
		if !det.HasOcc || sc.Occ > det.OccScore {
			det.OccIndex, det.OccName, det.OccScore = sc.Index, sc.Name, sc.Occ
			det.HasOcc = true
		}
		if !det.HasSoc || sc.Soc > det.SocScore {
			det.SocIndex, det.SocName, det.SocScore = sc.Index, sc.Name, sc.Soc
			det.HasSoc = true
		}
	}

	// The roles must be distinct: re-pick SOC over the remaining columns.
	if det.SocIndex == det.OccIndex {
		det.SocIndex, det.SocName, det.SocScore = -1, "", 0
		det.HasSoc = false
		for _, sc := range scores {
			if sc.Index == det.OccIndex {
				continue
			}
			if !det.HasSoc || sc.Soc > det.SocScore {
				det.SocIndex, det.SocName, det.SocScore = sc.Index, sc.Name, sc.Soc
				det.HasSoc = true
			}
		}
	}

	return det
}

// SheetCandidate is the outcome of scoring one sheet during selection.
type SheetCandidate struct {
	Sheet     *workbook.Sheet
	Index     int
	Detection Detection
	Combined  float64
}

// SelectSheet scores every sheet in the workbook and returns the one with
// the highest occScore×socScore, with ties keeping workbook order. Sheets
// that cannot be scored are returned as typed skips, never as failures.
// Scoring runs concurrently; each sheet is a pure function of its own
// table, and results are collected by index so selection stays
// deterministic.
func SelectSheet(wb *workbook.Workbook, sampleCap int) (*SheetCandidate, []SheetSkip) {
	candidates := make([]*SheetCandidate, len(wb.Sheets))
	skips := make([]*SheetSkip, len(wb.Sheets))

	var g errgroup.Group
	for i := range wb.Sheets {
		i := i
		g.Go(func() error {
			sheet := &wb.Sheets[i]
			if len(sheet.Rows) == 0 {
				skips[i] = &SheetSkip{Sheet: sheet.Name, Reason: "no data rows"}
				return nil
			}
			if sheet.ColumnCount() == 0 {
				skips[i] = &SheetSkip{Sheet: sheet.Name, Reason: "no columns"}
				return nil
			}
			det := DetectColumns(sheet, sampleCap)
			candidates[i] = &SheetCandidate{
				Sheet:     sheet,
				Index:     i,
				Detection: det,
				Combined:  det.OccScore * det.SocScore,
			}
			return nil
		})
	}
	_ = g.Wait() // scoring never errors; skips carry the reasons

	var best *SheetCandidate
	var skipped []SheetSkip
	for i := range wb.Sheets {
		if skips[i] != nil {
			skipped = append(skipped, *skips[i])
			continue
		}
		c := candidates[i]
		if best == nil || c.Combined > best.Combined {
			best = c
		}
	}
	return best, skipped
}
