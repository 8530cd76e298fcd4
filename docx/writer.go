// Package docx writes rendered pages to a Word document, one heading and
// table per sheet, and reads such documents back into the grid
// representation.
package docx

import (
	"fmt"
	"io"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/style"
)

// HeadingStyle is the paragraph style of the sheet headings.
const HeadingStyle = "Heading1"

// DefaultColumnWidth is the width, in characters, of columns without a hint.
const DefaultColumnWidth = 8.43

// Sink buffers the grid and writes it as a Word document to dst when
// closed. Only the first Close writes.
type Sink struct {
	*grid.Buffer
	dst  io.Writer
	done bool
}

var _ grid.Sink = (*Sink)(nil)

// NewSink returns a Sink writing to dst.
func NewSink(dst io.Writer) *Sink {
	return &Sink{Buffer: grid.NewBuffer(), dst: dst}
}

func (s *Sink) Close() error {
	if err := s.Buffer.Close(); err != nil {
		return err
	}
	if s.done {
		return nil
	}
	s.done = true
	return Write(s.dst, s.Workbook())
}

// Bookmark returns the bookmark name of the i-th sheet. Word bookmark names
// cannot hold arbitrary sheet names, so sheets are numbered instead.
func Bookmark(i int) string {
	return fmt.Sprintf("sheet%d", i+1)
}

// Write converts wb into a document and saves it to w.
func Write(w io.Writer, wb *grid.Workbook) error {
	doc := document.New()

	bookmarks := make(map[string]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		bookmarks[s.Name] = Bookmark(i)
	}

	for i, s := range wb.Sheets {
		heading := doc.AddParagraph()
		heading.SetStyle(HeadingStyle)
		heading.AddBookmark(Bookmark(i))
		heading.AddRun().AddText(s.Name)

		if len(s.Rows) == 0 {
			continue
		}
		writeTable(doc, s, bookmarks)
		// Keeps consecutive tables from fusing into one.
		doc.AddParagraph()
	}

	if err := doc.Save(w); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func writeTable(doc *document.Document, s *grid.SheetModel, bookmarks map[string]string) {
	cols := s.ColCount()
	hidden := func(c int) bool {
		return c < len(s.Columns) && s.Columns[c].Hidden
	}

	table := doc.AddTable()
	for r, gr := range s.Rows {
		row := table.AddRow()
		for c := 0; c < cols; c++ {
			if hidden(c) {
				continue
			}
			var gc *grid.Cell
			if c < len(gr.Cells) {
				gc = gr.Cells[c]
			}
			cell := row.AddCell()
			cell.Properties().SetWidth(columnWidth(s, c))
			para := cell.AddParagraph()
			if gc == nil {
				continue
			}

			cellStyle(cell, para, gc.Style)
			if gc.Covered {
				// Word has no covered cells: the first cell of each row below
				// a merge continues it, the rest are absorbed by its span.
				if rg, ok := mergeAt(s, r, c); ok && c == rg.FirstCol {
					cell.Properties().SetVerticalMerge(wml.ST_MergeContinue)
					if span := rg.LastCol - rg.FirstCol + 1; span > 1 {
						cell.Properties().SetColumnSpan(span)
						c += span - 1
					}
				}
				continue
			}
			if gc.RowSpan > 1 {
				cell.Properties().SetVerticalMerge(wml.ST_MergeRestart)
			}
			if gc.ColSpan > 1 {
				cell.Properties().SetColumnSpan(gc.ColSpan)
				c += gc.ColSpan - 1
			}

			if anchor, ok := bookmarks[gc.Link]; ok {
				// Later sheets are not bookmarked yet, so the anchor is set by name.
				hl := para.AddHyperLink()
				hl.X().AnchorAttr = unioffice.String(anchor)
				run := hl.AddRun()
				runStyle(run, gc.Style)
				run.AddText(gc.Text)
				continue
			}
			run := para.AddRun()
			runStyle(run, gc.Style)
			run.AddText(gc.Text)
		}
	}
}

func mergeAt(s *grid.SheetModel, row, col int) (grid.Range, bool) {
	for _, rg := range s.Merges {
		if rg.Contains(row, col) {
			return rg, true
		}
	}
	return grid.Range{}, false
}

func columnWidth(s *grid.SheetModel, col int) measurement.Distance {
	w := DefaultColumnWidth
	if col < len(s.Columns) && s.Columns[col].Width > 0 {
		w = s.Columns[col].Width
	}
	// Characters to pixels as spreadsheets do, then pixels to points.
	return measurement.Distance((w*7+5)*0.75) * measurement.Point
}

func toColor(c colorful.Color) color.Color {
	r, g, b := c.RGB255()
	return color.RGB(r, g, b)
}

var borders = map[int]struct {
	kind  wml.ST_Border
	width measurement.Distance
}{
	style.BorderThin:   {wml.ST_BorderSingle, 0.5 * measurement.Point},
	style.BorderMedium: {wml.ST_BorderSingle, 1.5 * measurement.Point},
	style.BorderDashed: {wml.ST_BorderDashed, 0.5 * measurement.Point},
	style.BorderDotted: {wml.ST_BorderDotted, 0.5 * measurement.Point},
	style.BorderThick:  {wml.ST_BorderThick, 2.25 * measurement.Point},
	style.BorderDouble: {wml.ST_BorderDouble, 0.5 * measurement.Point},
	style.BorderHair:   {wml.ST_BorderDotted, 0.25 * measurement.Point},
}

var justification = map[string]wml.ST_Jc{
	"left":    wml.ST_JcLeft,
	"center":  wml.ST_JcCenter,
	"right":   wml.ST_JcRight,
	"justify": wml.ST_JcBoth,
}

var verticalJc = map[string]wml.ST_VerticalJc{
	"top":     wml.ST_VerticalJcTop,
	"vcenter": wml.ST_VerticalJcCenter,
	"bottom":  wml.ST_VerticalJcBottom,
}

// cellStyle applies the cell and paragraph level properties of st.
// Invalid colors are skipped; the renderer validates them upstream.
func cellStyle(cell document.Cell, para document.Paragraph, st style.Style) {
	props := cell.Properties()
	if bg, ok, err := st.Color(style.BgColor); ok && err == nil {
		props.SetShading(wml.ST_ShdClear, color.Auto, toColor(bg))
	}
	if jc, ok := verticalJc[st.Str(style.VAlign)]; ok {
		props.SetVerticalAlignment(jc)
	}
	if jc, ok := justification[st.Str(style.Align)]; ok {
		para.Properties().SetAlignment(jc)
	}

	bc := color.RGB(0, 0, 0)
	if c, ok, err := st.Color(style.BorderColor); ok && err == nil {
		bc = toColor(c)
	}
	cb := props.Borders()
	if b, ok := borders[st.Int(style.Top)]; ok {
		cb.SetTop(b.kind, bc, b.width)
	}
	if b, ok := borders[st.Int(style.Bottom)]; ok {
		cb.SetBottom(b.kind, bc, b.width)
	}
	if b, ok := borders[st.Int(style.Left)]; ok {
		cb.SetLeft(b.kind, bc, b.width)
	}
	if b, ok := borders[st.Int(style.Right)]; ok {
		cb.SetRight(b.kind, bc, b.width)
	}
}

func runStyle(run document.Run, st style.Style) {
	rp := run.Properties()
	if name := st.Str(style.FontName); name != "" {
		rp.SetFontFamily(name)
	}
	if size := st.Float(style.FontSize); size > 0 {
		rp.SetSize(measurement.Distance(size) * measurement.Point)
	}
	if st.Bool(style.Bold) {
		rp.SetBold(true)
	}
	if st.Bool(style.Italic) {
		rp.SetItalic(true)
	}
	if st.Bool(style.Underline) {
		rp.SetUnderline(wml.ST_UnderlineSingle, color.Auto)
	}
	if fc, ok, err := st.Color(style.FontColor); ok && err == nil {
		rp.SetColor(toColor(fc))
	}
}
