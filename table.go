package drilldown

import "fmt"

// NoGroups disables group boundary styling for a Table.
const NoGroups = -1

// Table is the body of a page: a 2-D grid of cells addressed by a row
// multi-index and an ordered list of column labels.
//
// Index holds one tuple per row, outermost level first; every tuple has
// len(IndexNames) components. Values holds one row of len(Columns) cells per
// index tuple. Nil cells are nulls.
type Table struct {
	IndexNames []string
	Columns    []string
	Index      [][]Cell
	Values     [][]Cell

	// GroupLevel is the deepest index level whose change starts a new
	// visual group. Any negative value (see NoGroups) disables grouping.
	// The zero value groups at level 0; NewTable starts at NoGroups, so a
	// Table built as a literal must set NoGroups itself to disable grouping.
	GroupLevel int

	// ColumnWidths and HiddenColumns address rendered grid columns: the
	// index levels first, then the body columns. Nil widths are skipped.
	ColumnWidths  []float64
	HiddenColumns []int
}

// NewTable returns a Table with grouping disabled.
func NewTable(indexNames, columns []string) *Table {
	return &Table{
		IndexNames: indexNames,
		Columns:    columns,
		GroupLevel: NoGroups,
	}
}

// AddRow appends one row. It does not validate; call Validate before rendering.
func (t *Table) AddRow(index []Cell, values ...Cell) *Table {
	t.Index = append(t.Index, index)
	t.Values = append(t.Values, values)
	return t
}

// Levels returns the number of index levels.
func (t *Table) Levels() int { return len(t.IndexNames) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// Grouped reports whether group boundaries are drawn.
func (t *Table) Grouped() bool { return t.GroupLevel >= 0 }

// Validate checks the table invariants. page is only used to label errors.
func (t *Table) Validate(page string) error {
	levels := t.Levels()
	if levels == 0 {
		return structural(page, "table.index_names", ErrIndexArity, "at least one index level is required")
	}
	if len(t.Values) != len(t.Index) {
		return structural(page, "table.values", ErrShape, "%d value rows for %d index rows", len(t.Values), len(t.Index))
	}
	for r, tuple := range t.Index {
		if len(tuple) != levels {
			return structural(page, fmt.Sprintf("table.index[%d]", r), ErrIndexArity, "got %d levels, want %d", len(tuple), levels)
		}
	}
	for r, row := range t.Values {
		if len(row) != len(t.Columns) {
			return structural(page, fmt.Sprintf("table.values[%d]", r), ErrShape, "got %d cells, want %d", len(row), len(t.Columns))
		}
	}
	if t.GroupLevel > levels {
		return structural(page, "table.group_level", ErrGroupLevel, "%d exceeds %d index levels", t.GroupLevel, levels)
	}
	width := levels + len(t.Columns)
	if len(t.ColumnWidths) > width {
		return structural(page, "table.column_widths", ErrShape, "%d widths for %d columns", len(t.ColumnWidths), width)
	}
	for _, c := range t.HiddenColumns {
		if c < 0 || c >= width {
			return structural(page, "table.hidden_columns", ErrShape, "column %d outside [0, %d)", c, width)
		}
	}
	return nil
}
