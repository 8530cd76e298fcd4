package xlsx

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/aerissecure/drilldown/grid"
)

// Open reads the workbook stored at path on fs.
func Open(fs afero.Fs, path string) (*grid.Workbook, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ReadWorkbook(f, info.Size())
}

// ReadWorkbook reads an XLSX from r/size into the grid representation:
// cell text, internal link targets, styles, merges, column hints and the
// frozen pane.
func ReadWorkbook(r io.ReaderAt, size int64) (*grid.Workbook, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	model := &grid.Workbook{}
	for _, sheet := range wb.Sheets() {
		sm := &grid.SheetModel{Name: sheet.Name()}

		links := make(map[string]string)
		if hl := sheet.X().Hyperlinks; hl != nil {
			for _, h := range hl.Hyperlink {
				if h.LocationAttr != nil {
					links[h.RefAttr] = sheetOf(*h.LocationAttr)
				}
			}
		}

		// --- cells ---
		for _, row := range sheet.Rows() {
			rowIdx := int(row.RowNumber()) - 1
			for _, cell := range row.Cells() {
				colName, err := cell.Column()
				if err != nil {
					continue
				}
				colIdx := int(reference.ColumnToIndex(colName))
				c := sm.At(rowIdx, colIdx)
				c.Text = cell.GetFormattedValue()
				c.Link = links[CellRef(rowIdx, colIdx)]
				if cell.X().SAttr != nil {
					c.Style = readStyle(wb, *cell.X().SAttr)
				}
			}
		}

		// --- merges ---
		if sheet.X().MergeCells != nil {
			for _, mc := range sheet.X().MergeCells.MergeCell {
				from, to, err := reference.ParseRangeReference(mc.RefAttr)
				if err != nil {
					continue
				}
				rg := grid.Range{
					FirstRow: int(from.RowIdx - 1),
					FirstCol: int(from.ColumnIdx),
					LastRow:  int(to.RowIdx - 1),
					LastCol:  int(to.ColumnIdx),
				}
				master := sm.At(rg.FirstRow, rg.FirstCol)
				sm.Merge(rg, master.Style)
			}
		}

		// --- column metadata ---
		for c := 0; c < sm.ColCount(); c++ {
			colObj := sheet.Column(uint32(c + 1))
			if colObj.X().CustomWidthAttr != nil && *colObj.X().CustomWidthAttr && colObj.X().WidthAttr != nil {
				sm.Column(c).Width = *colObj.X().WidthAttr
			}
			if colObj.X().HiddenAttr != nil && *colObj.X().HiddenAttr {
				sm.Column(c).Hidden = true
			}
		}

		// --- frozen pane ---
		if views := sheet.X().SheetViews; views != nil && len(views.SheetView) > 0 {
			if pane := views.SheetView[0].Pane; pane != nil && pane.StateAttr == sml.ST_PaneStateFrozen {
				if pane.YSplitAttr != nil {
					sm.FrozenRows = int(*pane.YSplitAttr)
				}
				if pane.XSplitAttr != nil {
					sm.FrozenCols = int(*pane.XSplitAttr)
				}
			}
		}

		model.Sheets = append(model.Sheets, sm)
	}
	return model, nil
}
