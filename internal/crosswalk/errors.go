package crosswalk

import "fmt"

// DetectionError is the fatal failure raised when no column pair clears
// the score threshold or the OCC and SOC roles cannot be made distinct.
// It carries the best scores observed for diagnosis.
type DetectionError struct {
	Sheet    string
	OccScore float64
	SocScore float64
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf(
		"could not detect OCC/SOC columns confidently in sheet %q (scores: occ=%.2f, soc=%.2f); try --sheet with the exact sheet name",
		e.Sheet, e.OccScore, e.SocScore,
	)
}

// EmptyResultError is the fatal failure raised when normalization and
// conflict resolution leave zero rows.
type EmptyResultError struct {
	Sheet string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("crosswalk cleaned to 0 rows on sheet %q; double-check the sheet choice", e.Sheet)
}

// ColumnNotFoundError is raised when an explicit column-name override does
// not match any header in the chosen sheet.
type ColumnNotFoundError struct {
	Sheet  string
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in sheet %q", e.Column, e.Sheet)
}

// SheetSkip records a sheet excluded from auto-selection and why. Skips
// are diagnostics, never fatal: the scan continues over the remaining
// sheets.
type SheetSkip struct {
	Sheet  string
	Reason string
}
