// Package xlsx writes rendered pages to spreadsheet files and reads them
// back into the grid representation.
package xlsx

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/style"
)

// MaxSheetName is the longest sheet name spreadsheet applications accept.
const MaxSheetName = 31

const invalidSheetChars = `[]:*?/\`

// ValidateSheetName reports whether name can be used as a sheet name.
func ValidateSheetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", grid.ErrSheetName)
	case utf8.RuneCountInString(name) > MaxSheetName:
		return fmt.Errorf("%w: %q is longer than %d characters", grid.ErrSheetName, name, MaxSheetName)
	case strings.ContainsAny(name, invalidSheetChars):
		return fmt.Errorf("%w: %q contains one of %s", grid.ErrSheetName, name, invalidSheetChars)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("%w: %q starts or ends with an apostrophe", grid.ErrSheetName, name)
	}
	return nil
}

// Writer is a grid.Sink producing one workbook. The workbook is written to
// the destination by the first Close; later calls do nothing.
type Writer struct {
	wb     *spreadsheet.Workbook
	dst    io.Writer
	styles []spreadsheet.CellStyle
	keys   map[string]grid.StyleRef
	names  map[string]bool // lower-cased sheet names
	sheets int
	closed bool
}

// NewWriter returns a Writer saving to dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{
		wb:    spreadsheet.New(),
		dst:   dst,
		keys:  make(map[string]grid.StyleRef),
		names: make(map[string]bool),
	}
}

func (w *Writer) AddSheet(name string) (grid.Sheet, error) {
	if w.closed {
		return nil, &grid.OpError{Op: "add_sheet", Err: grid.ErrClosed}
	}
	if err := ValidateSheetName(name); err != nil {
		return nil, &grid.OpError{Op: "add_sheet", Err: err}
	}
	// Sheet names are case-insensitive.
	key := strings.ToLower(name)
	if w.names[key] {
		return nil, &grid.OpError{Op: "add_sheet", Err: fmt.Errorf("%w: %q", grid.ErrSheetExists, name)}
	}
	w.names[key] = true
	w.sheets++
	s := w.wb.AddSheet()
	s.SetName(name)
	return &sheet{w: w, s: s, name: name}, nil
}

// RegisterStyle translates st into a workbook cell style. Equal styles
// share one cell style.
func (w *Writer) RegisterStyle(st style.Style) (grid.StyleRef, error) {
	key := st.Key()
	if ref, ok := w.keys[key]; ok {
		return ref, nil
	}
	cs, err := w.cellStyle(st)
	if err != nil {
		return 0, &grid.OpError{Op: "register_style", Err: err}
	}
	ref := grid.StyleRef(len(w.styles))
	w.styles = append(w.styles, cs)
	w.keys[key] = ref
	return ref, nil
}

// Close saves the workbook. A workbook without sheets gets one empty sheet
// so the file stays valid.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.sheets == 0 {
		w.wb.AddSheet().SetName("Sheet1")
	}
	if err := w.wb.Save(w.dst); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Writer) style(ref grid.StyleRef) (spreadsheet.CellStyle, error) {
	if ref < 0 || int(ref) >= len(w.styles) {
		return spreadsheet.CellStyle{}, fmt.Errorf("%w: %d", grid.ErrUnknownStyle, ref)
	}
	return w.styles[ref], nil
}

var borderStyles = map[int]sml.ST_BorderStyle{
	style.BorderThin:   sml.ST_BorderStyleThin,
	style.BorderMedium: sml.ST_BorderStyleMedium,
	style.BorderDashed: sml.ST_BorderStyleDashed,
	style.BorderDotted: sml.ST_BorderStyleDotted,
	style.BorderThick:  sml.ST_BorderStyleThick,
	style.BorderDouble: sml.ST_BorderStyleDouble,
	style.BorderHair:   sml.ST_BorderStyleHair,
}

var horizontal = map[string]sml.ST_HorizontalAlignment{
	"left":    sml.ST_HorizontalAlignmentLeft,
	"center":  sml.ST_HorizontalAlignmentCenter,
	"right":   sml.ST_HorizontalAlignmentRight,
	"justify": sml.ST_HorizontalAlignmentJustify,
}

var vertical = map[string]sml.ST_VerticalAlignment{
	"top":     sml.ST_VerticalAlignmentTop,
	"vcenter": sml.ST_VerticalAlignmentCenter,
	"bottom":  sml.ST_VerticalAlignmentBottom,
}

func toColor(c colorful.Color) color.Color {
	r, g, b := c.RGB255()
	return color.RGB(r, g, b)
}

// cellStyle builds the workbook style for st. Properties without a
// spreadsheet equivalent are ignored.
func (w *Writer) cellStyle(st style.Style) (spreadsheet.CellStyle, error) {
	ss := w.wb.StyleSheet
	cs := ss.AddCellStyle()

	font := ss.AddFont()
	if name := st.Str(style.FontName); name != "" {
		font.SetName(name)
	}
	if size := st.Float(style.FontSize); size > 0 {
		font.SetSize(size)
	}
	if st.Bool(style.Bold) {
		font.SetBold(true)
	}
	if st.Bool(style.Italic) {
		font.SetItalic(true)
	}
	if st.Bool(style.Underline) {
		font.X().U = append(font.X().U, sml.NewCT_UnderlineProperty())
	}
	fc, ok, err := st.Color(style.FontColor)
	if err != nil {
		return cs, err
	}
	if ok {
		font.SetColor(toColor(fc))
	}
	cs.SetFont(font)

	bg, ok, err := st.Color(style.BgColor)
	if err != nil {
		return cs, err
	}
	if ok {
		fill := ss.Fills().AddFill()
		pf := fill.SetPatternFill()
		pf.SetPattern(sml.ST_PatternTypeSolid)
		pf.SetFgColor(toColor(bg))
		cs.SetFill(fill)
	}

	if st.Has(style.Top) || st.Has(style.Bottom) || st.Has(style.Left) || st.Has(style.Right) {
		bc := color.RGB(0, 0, 0)
		c, ok, err := st.Color(style.BorderColor)
		if err != nil {
			return cs, err
		}
		if ok {
			bc = toColor(c)
		}
		border := ss.AddBorder()
		if bs, ok := borderStyles[st.Int(style.Top)]; ok {
			border.SetTop(bs, bc)
		}
		if bs, ok := borderStyles[st.Int(style.Bottom)]; ok {
			border.SetBottom(bs, bc)
		}
		if bs, ok := borderStyles[st.Int(style.Left)]; ok {
			border.SetLeft(bs, bc)
		}
		if bs, ok := borderStyles[st.Int(style.Right)]; ok {
			border.SetRight(bs, bc)
		}
		cs.SetBorder(border)
	}

	if a, ok := horizontal[st.Str(style.Align)]; ok {
		cs.SetHorizontalAlignment(a)
	}
	if a, ok := vertical[st.Str(style.VAlign)]; ok {
		cs.SetVerticalAlignment(a)
	}
	if st.Bool(style.TextWrap) {
		cs.SetWrapped(true)
	}
	return cs, nil
}

// CellRef returns the A1 reference of a zero-based (row, col).
func CellRef(row, col int) string {
	return fmt.Sprintf("%s%d", reference.IndexToColumn(uint32(col)), row+1)
}

// Location returns the hyperlink location of cell A1 on the named sheet.
func Location(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'!A1"
}

type sheet struct {
	w    *Writer
	s    spreadsheet.Sheet
	name string
}

func (s *sheet) Name() string { return s.name }

func (s *sheet) fail(op string, row, col int, err error) error {
	return &grid.OpError{Op: op, Sheet: s.name, Row: row, Col: col, Err: err}
}

func (s *sheet) check(op string, row, col int) error {
	if s.w.closed {
		return s.fail(op, row, col, grid.ErrClosed)
	}
	if row < 0 || col < 0 {
		return s.fail(op, row, col, grid.ErrOutOfRange)
	}
	return nil
}

func (s *sheet) cell(op string, row, col int, ref grid.StyleRef) (spreadsheet.Cell, error) {
	if err := s.check(op, row, col); err != nil {
		return spreadsheet.Cell{}, err
	}
	cs, err := s.w.style(ref)
	if err != nil {
		return spreadsheet.Cell{}, s.fail(op, row, col, err)
	}
	c := s.s.Cell(CellRef(row, col))
	c.SetStyle(cs)
	return c, nil
}

func (s *sheet) WriteText(row, col int, text string, ref grid.StyleRef) error {
	c, err := s.cell("write_text", row, col, ref)
	if err != nil {
		return err
	}
	c.SetString(text)
	return nil
}

func (s *sheet) WriteBlank(row, col int, ref grid.StyleRef) error {
	_, err := s.cell("write_blank", row, col, ref)
	return err
}

// WriteLink writes text with an internal hyperlink to cell A1 of target.
func (s *sheet) WriteLink(row, col int, target, text string, ref grid.StyleRef) error {
	c, err := s.cell("write_link", row, col, ref)
	if err != nil {
		return err
	}
	c.SetString(text)
	x := s.s.X()
	if x.Hyperlinks == nil {
		x.Hyperlinks = sml.NewCT_Hyperlinks()
	}
	x.Hyperlinks.Hyperlink = append(x.Hyperlinks.Hyperlink, &sml.CT_Hyperlink{
		RefAttr:      CellRef(row, col),
		LocationAttr: unioffice.String(Location(target)),
		DisplayAttr:  unioffice.String(text),
	})
	return nil
}

// MergeRange merges the range and styles every cell in it, so borders are
// drawn along the whole edge.
func (s *sheet) MergeRange(firstRow, firstCol, lastRow, lastCol int, ref grid.StyleRef) error {
	if err := s.check("merge_range", firstRow, firstCol); err != nil {
		return err
	}
	if lastRow < firstRow || lastCol < firstCol {
		return s.fail("merge_range", firstRow, firstCol, grid.ErrOutOfRange)
	}
	cs, err := s.w.style(ref)
	if err != nil {
		return s.fail("merge_range", firstRow, firstCol, err)
	}
	s.s.AddMergedCells(CellRef(firstRow, firstCol), CellRef(lastRow, lastCol))
	for r := firstRow; r <= lastRow; r++ {
		for c := firstCol; c <= lastCol; c++ {
			s.s.Cell(CellRef(r, c)).SetStyle(cs)
		}
	}
	return nil
}

func (s *sheet) SetColumnWidth(col int, width float64) error {
	if err := s.check("set_column_width", 0, col); err != nil {
		return err
	}
	x := s.s.Column(uint32(col + 1)).X()
	x.WidthAttr = unioffice.Float64(width)
	x.CustomWidthAttr = unioffice.Bool(true)
	return nil
}

func (s *sheet) SetColumnHidden(col int) error {
	if err := s.check("set_column_hidden", 0, col); err != nil {
		return err
	}
	s.s.Column(uint32(col + 1)).X().HiddenAttr = unioffice.Bool(true)
	return nil
}

// Freeze splits the first sheet view into a frozen pane.
func (s *sheet) Freeze(rows, cols int) error {
	if err := s.check("freeze", rows, cols); err != nil {
		return err
	}
	if rows == 0 && cols == 0 {
		return nil
	}
	x := s.s.X()
	if x.SheetViews == nil {
		x.SheetViews = sml.NewCT_SheetViews()
	}
	if len(x.SheetViews.SheetView) == 0 {
		x.SheetViews.SheetView = append(x.SheetViews.SheetView, sml.NewCT_SheetView())
	}
	pane := sml.NewCT_Pane()
	pane.StateAttr = sml.ST_PaneStateFrozen
	pane.TopLeftCellAttr = unioffice.String(CellRef(rows, cols))
	switch {
	case rows > 0 && cols > 0:
		pane.ActivePaneAttr = sml.ST_PaneBottomRight
	case rows > 0:
		pane.ActivePaneAttr = sml.ST_PaneBottomLeft
	default:
		pane.ActivePaneAttr = sml.ST_PaneTopRight
	}
	if cols > 0 {
		pane.XSplitAttr = unioffice.Float64(float64(cols))
	}
	if rows > 0 {
		pane.YSplitAttr = unioffice.Float64(float64(rows))
	}
	x.SheetViews.SheetView[0].Pane = pane
	return nil
}
