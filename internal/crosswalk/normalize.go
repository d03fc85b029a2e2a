package crosswalk

import "github.com/ai-labor/occwalk/internal/workbook"

// SocPolicy controls how multi-value SOC cells are handled.
type SocPolicy string

const (
	// SocStrict accepts a cell only when it tokenizes to exactly one
	// SOC-shaped token; multi-value and malformed cells drop the row.
	SocStrict SocPolicy = "strict"

	// SocExpand explodes a multi-value cell into one row per valid token,
	// discarding invalid siblings.
	SocExpand SocPolicy = "expand"
)

// Row is one crosswalk pair: a 4-digit OCC code and a NN-NNNN SOC code.
type Row struct {
	Occ string `csv:"occ"`
	Soc string `csv:"soc"`
}

// NormalizeStats counts rows surviving each normalization stage.
type NormalizeStats struct {
	RowsRead int
	AfterOcc int
	AfterSoc int
}

// NormalizeRows canonicalizes the chosen OCC and SOC columns row by row.
// Rows whose OCC value fails normalization are dropped before any SOC
// work. Output order follows input order; expand policy emits exploded
// rows adjacently in token order.
func NormalizeRows(sheet *workbook.Sheet, det Detection, policy SocPolicy) ([]Row, NormalizeStats) {
	stats := NormalizeStats{RowsRead: len(sheet.Rows)}

	var out []Row
	for i := range sheet.Rows {
		occ, ok := NormalizeOcc(sheet.Cell(i, det.OccIndex))
		if !ok {
			continue
		}
		stats.AfterOcc++

		rawSoc := sheet.Cell(i, det.SocIndex)
		switch policy {
		case SocExpand:
			for _, tok := range SplitTokens(rawSoc) {
				if soc, ok := NormalizeSocToken(tok); ok {
					out = append(out, Row{Occ: occ, Soc: soc})
				}
			}
		default: // strict
			tokens := SplitTokens(rawSoc)
			if len(tokens) != 1 {
				continue
			}
			soc, ok := NormalizeSocToken(tokens[0])
			if !ok {
				continue
			}
			out = append(out, Row{Occ: occ, Soc: soc})
		}
	}

	stats.AfterSoc = len(out)
	return out, stats
}
