package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ai-labor/occwalk/internal/workbook"
)

// XLSXOptions configures workbook loading.
type XLSXOptions struct {
	SkipRows int // header rows to discard before the real header
}

// LoadWorkbook reads every sheet of an XLSX file, in workbook order, into
// the in-memory model. For each sheet the first row after SkipRows is
// taken as the header; the rest are data rows. Cell values are cleaned
// (NFKC fold, trim) on the way in.
func LoadWorkbook(path string, opts XLSXOptions) (*workbook.Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}

	wb := &workbook.Workbook{Sheets: make([]workbook.Sheet, 0, len(f.Sheets))}
	for _, sheet := range f.Sheets {
		wb.Sheets = append(wb.Sheets, readSheet(sheet, opts.SkipRows))
	}
	return wb, nil
}

func readSheet(sheet *xlsx.Sheet, skipRows int) workbook.Sheet {
	out := workbook.Sheet{Name: sheet.Name}

	for i, row := range sheet.Rows {
		if i < skipRows {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = workbook.CleanCell(cell.String())
		}
		if out.Columns == nil {
			out.Columns = cells
			continue
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
