package docx

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/style"
)

// Open reads the document stored at path on fs.
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
	return Read(f, info.Size())
}

// Read rebuilds the grid from a document written by Write: every heading
// paragraph starts a sheet and the table following it holds the cells.
// Only cell text, links, merges, fill color and bold are recovered. Hidden
// columns were never written and do not come back.
func Read(r io.ReaderAt, size int64) (*grid.Workbook, error) {
	doc, err := document.Read(r, size)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	pMap := make(map[*wml.CT_P]document.Paragraph)
	for _, p := range doc.Paragraphs() {
		pMap[p.X()] = p
	}
	tMap := make(map[*wml.CT_Tbl]document.Table)
	for _, tbl := range doc.Tables() {
		tMap[tbl.X()] = tbl
	}

	wb := &grid.Workbook{}
	body := doc.X().Body
	if body == nil {
		return wb, nil
	}

	var current *grid.SheetModel
	for _, bl := range body.EG_BlockLevelElts {
		for _, c := range bl.EG_ContentBlockContent {
			for _, cp := range c.P {
				if par, ok := pMap[cp]; ok && par.Style() == HeadingStyle {
					current = &grid.SheetModel{Name: paragraphText(par)}
					wb.Sheets = append(wb.Sheets, current)
				}
			}
			for _, ct := range c.Tbl {
				tbl, ok := tMap[ct]
				if !ok || current == nil {
					continue
				}
				readTable(current, tbl)
			}
		}
	}

	// Links hold bookmark names until every heading is known.
	for _, s := range wb.Sheets {
		for _, row := range s.Rows {
			for _, cell := range row.Cells {
				if cell == nil || cell.Link == "" {
					continue
				}
				var n int
				if _, err := fmt.Sscanf(cell.Link, "sheet%d", &n); err == nil && n >= 1 && n <= len(wb.Sheets) {
					cell.Link = wb.Sheets[n-1].Name
				}
			}
		}
	}
	return wb, nil
}

func paragraphText(p document.Paragraph) string {
	var b strings.Builder
	for _, run := range p.Runs() {
		b.WriteString(run.Text())
	}
	return b.String()
}

func runText(r *wml.CT_R) string {
	var b strings.Builder
	for _, ic := range r.EG_RunInnerContent {
		if ic.T != nil {
			b.WriteString(ic.T.Content)
		}
	}
	return b.String()
}

func runBold(r *wml.CT_R) bool {
	return r.RPr != nil && r.RPr.B != nil
}

// readCell collects the text, link target and bold flag of a cell.
func readCell(cell document.Cell) (text, link string, bold bool) {
	var b strings.Builder
	for _, p := range cell.Paragraphs() {
		for _, pc := range p.X().EG_PContent {
			if hl := pc.Hyperlink; hl != nil {
				if hl.AnchorAttr != nil {
					link = *hl.AnchorAttr
				}
				for _, rc := range hl.EG_ContentRunContent {
					if rc.R != nil {
						b.WriteString(runText(rc.R))
						bold = bold || runBold(rc.R)
					}
				}
			}
			for _, rc := range pc.EG_ContentRunContent {
				if rc.R != nil {
					b.WriteString(runText(rc.R))
					bold = bold || runBold(rc.R)
				}
			}
		}
	}
	return b.String(), link, bold
}

func readTable(s *grid.SheetModel, tbl document.Table) {
	var merges []*grid.Range
	open := make(map[int]*grid.Range) // merge continued by the next row, by first column

	for r, row := range tbl.Rows() {
		col := 0
		for _, cell := range row.Cells() {
			span := 1
			var vmerge *wml.CT_VMerge
			st := style.Style{}
			if pr := cell.Properties().X(); pr != nil {
				if pr.GridSpan != nil && pr.GridSpan.ValAttr > 1 {
					span = int(pr.GridSpan.ValAttr)
				}
				vmerge = pr.VMerge
				if pr.Shd != nil && pr.Shd.FillAttr != nil && pr.Shd.FillAttr.ST_HexColorRGB != nil {
					if hex, err := style.HexColor(*pr.Shd.FillAttr.ST_HexColorRGB); err == nil {
						st[style.BgColor] = hex
					}
				}
			}

			// A bare vMerge continues the merge above.
			if vmerge != nil && vmerge.ValAttr != wml.ST_MergeRestart {
				if rg, ok := open[col]; ok {
					rg.LastRow = r
				}
				col += span
				continue
			}

			text, link, bold := readCell(cell)
			if bold {
				st[style.Bold] = true
			}
			gc := s.At(r, col)
			gc.Text, gc.Link = text, link
			if len(st) > 0 {
				gc.Style = st
			}

			delete(open, col)
			if vmerge != nil || span > 1 {
				rg := &grid.Range{FirstRow: r, FirstCol: col, LastRow: r, LastCol: col + span - 1}
				merges = append(merges, rg)
				open[col] = rg
			}
			col += span
		}
	}

	for _, rg := range merges {
		if rg.LastRow > rg.FirstRow || rg.LastCol > rg.FirstCol {
			s.Merge(*rg, s.At(rg.FirstRow, rg.FirstCol).Style)
		}
	}
}
