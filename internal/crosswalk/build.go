package crosswalk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ai-labor/occwalk/internal/workbook"
)

// DefaultMinScore is the detection quality floor: both chosen columns
// must match at least this fraction of sampled cells. Lenient, but keeps
// overview/readme sheets from winning selection.
const DefaultMinScore = 0.5

// LowRowThreshold is the final row count below which the build attaches a
// warning: a real occupation crosswalk has several hundred rows.
const LowRowThreshold = 100

// Options configures a crosswalk build.
type Options struct {
	Sheet     string // explicit sheet name; bypasses sheet search
	OccColumn string // explicit OCC header name; bypasses OCC detection
	SocColumn string // explicit SOC header name; bypasses SOC detection

	SocPolicy     SocPolicy
	ResolvePolicy ResolvePolicy

	SampleCap int
	MinScore  float64
}

// Diagnostics records what the build decided and how many rows survived
// each stage.
type Diagnostics struct {
	Sheet string `json:"sheet"`

	OccColumn string  `json:"occ_column"`
	OccIndex  int     `json:"occ_index"`
	OccScore  float64 `json:"occ_score"`
	SocColumn string  `json:"soc_column"`
	SocIndex  int     `json:"soc_index"`
	SocScore  float64 `json:"soc_score"`

	RowsRead       int `json:"rows_read"`
	RowsAfterOcc   int `json:"rows_after_occ"`
	RowsAfterSoc   int `json:"rows_after_soc"`
	RowsAfterDedup int `json:"rows_after_dedup"`
	RowsFinal      int `json:"rows_final"`

	AmbiguousDropped int         `json:"ambiguous_dropped"`
	SkippedSheets    []SheetSkip `json:"skipped_sheets,omitempty"`
	Warnings         []string    `json:"warnings,omitempty"`
}

// Result is a completed build: the final ordered table plus diagnostics.
// A failed build returns an error instead — never a partial table.
type Result struct {
	Rows        []Row
	Diagnostics Diagnostics
}

// Build runs the full pipeline: sheet selection, column detection with
// validation, normalization, conflict resolution, dedup, and canonical
// ordering (ascending occ, ties by soc).
func Build(wb *workbook.Workbook, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("component", "crosswalk"))

	if opts.SampleCap <= 0 {
		opts.SampleCap = DefaultSampleCap
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.SocPolicy == "" {
		opts.SocPolicy = SocStrict
	}
	if opts.ResolvePolicy == "" {
		opts.ResolvePolicy = ResolveStrict
	}

	sheet, skips, err := chooseSheet(wb, opts)
	if err != nil {
		return nil, err
	}

	det := DetectColumns(sheet, opts.SampleCap)
	if err := applyColumnOverrides(sheet, &det, opts); err != nil {
		return nil, err
	}

	if !det.HasOcc || !det.HasSoc || det.OccIndex == det.SocIndex ||
		det.OccScore < opts.MinScore || det.SocScore < opts.MinScore {
		return nil, &DetectionError{Sheet: sheet.Name, OccScore: det.OccScore, SocScore: det.SocScore}
	}

	log.Info("columns detected",
		zap.String("sheet", sheet.Name),
		zap.String("occ_column", det.OccName),
		zap.Float64("occ_score", det.OccScore),
		zap.String("soc_column", det.SocName),
		zap.Float64("soc_score", det.SocScore),
	)

	rows, stats := NormalizeRows(sheet, det, opts.SocPolicy)
	deduped := Dedup(rows)
	resolved, dropped := Resolve(deduped, opts.ResolvePolicy)

	diag := Diagnostics{
		Sheet:            sheet.Name,
		OccColumn:        det.OccName,
		OccIndex:         det.OccIndex,
		OccScore:         det.OccScore,
		SocColumn:        det.SocName,
		SocIndex:         det.SocIndex,
		SocScore:         det.SocScore,
		RowsRead:         stats.RowsRead,
		RowsAfterOcc:     stats.AfterOcc,
		RowsAfterSoc:     stats.AfterSoc,
		RowsAfterDedup:   len(deduped),
		RowsFinal:        len(resolved),
		AmbiguousDropped: dropped,
		SkippedSheets:    skips,
	}

	if dropped > 0 {
		log.Info("dropped ambiguous OCC codes", zap.Int("count", dropped))
	}

	if len(resolved) == 0 {
		return nil, &EmptyResultError{Sheet: sheet.Name}
	}
	if len(resolved) < LowRowThreshold {
		diag.Warnings = append(diag.Warnings,
			fmt.Sprintf("crosswalk is small (rows=%d); check the chosen sheet/columns", len(resolved)))
	}

	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].Occ != resolved[j].Occ {
			return resolved[i].Occ < resolved[j].Occ
		}
		return resolved[i].Soc < resolved[j].Soc
	})

	log.Info("crosswalk built",
		zap.Int("rows_read", diag.RowsRead),
		zap.Int("rows_final", diag.RowsFinal),
		zap.Int("ambiguous_dropped", diag.AmbiguousDropped),
	)

	return &Result{Rows: resolved, Diagnostics: diag}, nil
}

// chooseSheet honors an explicit sheet override, otherwise scans every
// sheet and keeps the strongest candidate.
func chooseSheet(wb *workbook.Workbook, opts Options) (*workbook.Sheet, []SheetSkip, error) {
	if opts.Sheet != "" {
		sheet := wb.Sheet(opts.Sheet)
		if sheet == nil {
			return nil, nil, eris.Errorf("sheet %q not found in workbook", opts.Sheet)
		}
		return sheet, nil, nil
	}

	best, skips := SelectSheet(wb, opts.SampleCap)
	if best == nil {
		return nil, nil, eris.New("workbook has no scoreable sheets; try --sheet with the exact sheet name")
	}
	return best.Sheet, skips, nil
}

// applyColumnOverrides replaces detected roles with caller-named columns.
// An overridden role is trusted: its score is pinned to 1 so validation
// checks only the detected role.
func applyColumnOverrides(sheet *workbook.Sheet, det *Detection, opts Options) error {
	if opts.OccColumn != "" {
		idx := findColumn(sheet, opts.OccColumn)
		if idx < 0 {
			return &ColumnNotFoundError{Sheet: sheet.Name, Column: opts.OccColumn}
		}
		det.OccIndex, det.OccName, det.OccScore, det.HasOcc = idx, sheet.ColumnName(idx), 1, true
	}
	if opts.SocColumn != "" {
		idx := findColumn(sheet, opts.SocColumn)
		if idx < 0 {
			return &ColumnNotFoundError{Sheet: sheet.Name, Column: opts.SocColumn}
		}
		det.SocIndex, det.SocName, det.SocScore, det.HasSoc = idx, sheet.ColumnName(idx), 1, true
	}
	return nil
}

// findColumn matches a header name case-insensitively.
func findColumn(sheet *workbook.Sheet, name string) int {
	for i, col := range sheet.Columns {
		if strings.EqualFold(strings.TrimSpace(col), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}
