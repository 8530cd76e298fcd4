package grid

import (
	"fmt"

	"github.com/aerissecure/drilldown/style"
)

// Intermediate representation of a rendered grid. Buffer produces it from
// sink operations; xlsx.ReadWorkbook produces it from a saved workbook.

// Cell is a written cell, or the master cell of a merged range.
type Cell struct {
	Text    string
	Link    string      // target sheet name, "" if none
	ColSpan int         // 1 if not merged
	RowSpan int         // 1 if not merged
	Covered bool        // inside a merged range but not its master
	Style   style.Style // resolved style
}

func (c Cell) String() string {
	return fmt.Sprintf("Text: %q, Link: %q, ColSpan: %d, RowSpan: %d, Covered: %t, Style: %s", c.Text, c.Link, c.ColSpan, c.RowSpan, c.Covered, c.Style)
}

// Row is one row of a sheet.
type Row struct {
	Cells []*Cell // may contain nil for cells never written
}

func (r Row) String() string {
	return fmt.Sprintf("Cells: %d", len(r.Cells))
}

// Column holds per-column presentation hints.
type Column struct {
	Width  float64 // 0 means default
	Hidden bool
}

// Range is an inclusive rectangle of cells.
type Range struct {
	FirstRow, FirstCol, LastRow, LastCol int
}

func (r Range) String() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", r.FirstRow, r.FirstCol, r.LastRow, r.LastCol)
}

// Contains reports whether (row, col) lies inside r.
func (r Range) Contains(row, col int) bool {
	return row >= r.FirstRow && row <= r.LastRow && col >= r.FirstCol && col <= r.LastCol
}

// SheetModel is the materialized content of one sheet.
type SheetModel struct {
	Name       string
	Columns    []Column
	Rows       []Row
	Merges     []Range
	FrozenRows int
	FrozenCols int
}

func (s SheetModel) String() string {
	return fmt.Sprintf("Name: %s, Columns: %d, Rows: %d, Merges: %d, Frozen: %dx%d", s.Name, len(s.Columns), len(s.Rows), len(s.Merges), s.FrozenRows, s.FrozenCols)
}

// ColCount returns the width of the widest row or column hint.
func (s *SheetModel) ColCount() int {
	n := len(s.Columns)
	for _, r := range s.Rows {
		if len(r.Cells) > n {
			n = len(r.Cells)
		}
	}
	return n
}

// Cell returns the cell at (row, col), or nil if it was never written.
func (s *SheetModel) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	cells := s.Rows[row].Cells
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// Text returns the text at (row, col), "" for unwritten cells.
func (s *SheetModel) Text(row, col int) string {
	if c := s.Cell(row, col); c != nil {
		return c.Text
	}
	return ""
}

// Column returns the hints of col, growing the column list as needed.
func (s *SheetModel) Column(col int) *Column {
	for len(s.Columns) <= col {
		s.Columns = append(s.Columns, Column{})
	}
	return &s.Columns[col]
}

// At returns the cell at (row, col), creating it and any missing rows.
func (s *SheetModel) At(row, col int) *Cell {
	for len(s.Rows) <= row {
		s.Rows = append(s.Rows, Row{})
	}
	r := &s.Rows[row]
	for len(r.Cells) <= col {
		r.Cells = append(r.Cells, nil)
	}
	if r.Cells[col] == nil {
		r.Cells[col] = &Cell{ColSpan: 1, RowSpan: 1}
	}
	return r.Cells[col]
}

// Merge records rg: the top-left cell becomes the master, the rest are
// flagged as covered. Every cell in the range takes st.
func (s *SheetModel) Merge(rg Range, st style.Style) {
	s.Merges = append(s.Merges, rg)
	for r := rg.FirstRow; r <= rg.LastRow; r++ {
		for c := rg.FirstCol; c <= rg.LastCol; c++ {
			cell := s.At(r, c)
			cell.Style = st
			if r == rg.FirstRow && c == rg.FirstCol {
				cell.RowSpan = rg.LastRow - rg.FirstRow + 1
				cell.ColSpan = rg.LastCol - rg.FirstCol + 1
				continue
			}
			cell.Covered = true
		}
	}
}

// Workbook is the top-level IR containing all sheets in creation order.
type Workbook struct {
	Sheets []*SheetModel
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*SheetModel, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func (w Workbook) String() string {
	return fmt.Sprintf("Sheets: %d", len(w.Sheets))
}
