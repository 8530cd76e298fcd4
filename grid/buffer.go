package grid

import (
	"errors"
	"fmt"

	"github.com/aerissecure/drilldown/style"
)

var (
	ErrSheetExists  = errors.New("sheet already exists")
	ErrSheetName    = errors.New("invalid sheet name")
	ErrUnknownStyle = errors.New("unknown style reference")
	ErrOutOfRange   = errors.New("cell coordinates out of range")
	ErrClosed       = errors.New("sink is closed")
)

// Buffer is a Sink that materializes every operation into a Workbook.
// Styles are deduplicated by style.Style.Key.
type Buffer struct {
	wb     Workbook
	styles []style.Style
	keys   map[string]StyleRef
	closes int
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{keys: make(map[string]StyleRef)}
}

// Workbook returns the materialized grid.
func (b *Buffer) Workbook() *Workbook {
	return &b.wb
}

// Styles returns the distinct registered styles in registration order.
func (b *Buffer) Styles() []style.Style {
	return b.styles
}

// Closes returns how many times Close was called.
func (b *Buffer) Closes() int {
	return b.closes
}

func (b *Buffer) AddSheet(name string) (Sheet, error) {
	if b.closes > 0 {
		return nil, &OpError{Op: "add_sheet", Err: ErrClosed}
	}
	if name == "" {
		return nil, &OpError{Op: "add_sheet", Err: ErrSheetName}
	}
	if _, ok := b.wb.Sheet(name); ok {
		return nil, &OpError{Op: "add_sheet", Err: fmt.Errorf("%w: %q", ErrSheetExists, name)}
	}
	sm := &SheetModel{Name: name}
	b.wb.Sheets = append(b.wb.Sheets, sm)
	return &bufferSheet{buf: b, model: sm}, nil
}

func (b *Buffer) RegisterStyle(s style.Style) (StyleRef, error) {
	key := s.Key()
	if ref, ok := b.keys[key]; ok {
		return ref, nil
	}
	ref := StyleRef(len(b.styles))
	b.styles = append(b.styles, s.Clone())
	b.keys[key] = ref
	return ref, nil
}

// Style resolves a registered reference.
func (b *Buffer) Style(ref StyleRef) (style.Style, error) {
	if ref < 0 || int(ref) >= len(b.styles) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStyle, ref)
	}
	return b.styles[ref], nil
}

// Close marks the buffer finalized. Calling it again is harmless.
func (b *Buffer) Close() error {
	b.closes++
	return nil
}

type bufferSheet struct {
	buf   *Buffer
	model *SheetModel
}

func (s *bufferSheet) Name() string { return s.model.Name }

func (s *bufferSheet) cell(op string, row, col int, ref StyleRef) (*Cell, style.Style, error) {
	if s.buf.closes > 0 {
		return nil, nil, s.fail(op, row, col, ErrClosed)
	}
	if row < 0 || col < 0 {
		return nil, nil, s.fail(op, row, col, ErrOutOfRange)
	}
	st, err := s.buf.Style(ref)
	if err != nil {
		return nil, nil, s.fail(op, row, col, err)
	}
	return s.model.At(row, col), st, nil
}

func (s *bufferSheet) fail(op string, row, col int, err error) error {
	return &OpError{Op: op, Sheet: s.model.Name, Row: row, Col: col, Err: err}
}

func (s *bufferSheet) WriteText(row, col int, text string, ref StyleRef) error {
	c, st, err := s.cell("write_text", row, col, ref)
	if err != nil {
		return err
	}
	c.Text, c.Link, c.Style = text, "", st
	return nil
}

func (s *bufferSheet) WriteBlank(row, col int, ref StyleRef) error {
	c, st, err := s.cell("write_blank", row, col, ref)
	if err != nil {
		return err
	}
	c.Text, c.Link, c.Style = "", "", st
	return nil
}

func (s *bufferSheet) WriteLink(row, col int, target, text string, ref StyleRef) error {
	c, st, err := s.cell("write_link", row, col, ref)
	if err != nil {
		return err
	}
	c.Text, c.Link, c.Style = text, target, st
	return nil
}

func (s *bufferSheet) MergeRange(firstRow, firstCol, lastRow, lastCol int, ref StyleRef) error {
	if lastRow < firstRow || lastCol < firstCol {
		return s.fail("merge_range", firstRow, firstCol, ErrOutOfRange)
	}
	_, st, err := s.cell("merge_range", firstRow, firstCol, ref)
	if err != nil {
		return err
	}
	s.model.Merge(Range{FirstRow: firstRow, FirstCol: firstCol, LastRow: lastRow, LastCol: lastCol}, st)
	return nil
}

func (s *bufferSheet) SetColumnWidth(col int, width float64) error {
	if col < 0 {
		return s.fail("set_column_width", 0, col, ErrOutOfRange)
	}
	s.model.Column(col).Width = width
	return nil
}

func (s *bufferSheet) SetColumnHidden(col int) error {
	if col < 0 {
		return s.fail("set_column_hidden", 0, col, ErrOutOfRange)
	}
	s.model.Column(col).Hidden = true
	return nil
}

func (s *bufferSheet) Freeze(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return s.fail("freeze", rows, cols, ErrOutOfRange)
	}
	s.model.FrozenRows, s.model.FrozenCols = rows, cols
	return nil
}
