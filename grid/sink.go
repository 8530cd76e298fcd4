// Package grid defines the capability a rendering backend must provide and
// two in-memory backends: Buffer, which materializes a Workbook, and
// Recorder, which logs operations for replay.
//
// Rows and columns are zero-based everywhere in this package.
package grid

import (
	"fmt"

	"github.com/aerissecure/drilldown/style"
)

// StyleRef identifies a style registered with a Sink.
type StyleRef int

// Sink is a grid-capable output backend. Close finalizes the output and must
// be called exactly once per session, whether rendering succeeded or not.
//
// A Sink is not required to be safe for concurrent use.
type Sink interface {
	AddSheet(name string) (Sheet, error)
	RegisterStyle(s style.Style) (StyleRef, error)
	Close() error
}

// Sheet receives the write operations of one page.
type Sheet interface {
	Name() string
	WriteText(row, col int, text string, st StyleRef) error
	// WriteBlank styles an empty cell. Null values are written this way.
	WriteBlank(row, col int, st StyleRef) error
	// WriteLink writes text that navigates to the named sheet.
	WriteLink(row, col int, target, text string, st StyleRef) error
	MergeRange(firstRow, firstCol, lastRow, lastCol int, st StyleRef) error
	SetColumnWidth(col int, width float64) error
	SetColumnHidden(col int) error
	// Freeze keeps the first rows and cols in view while scrolling.
	Freeze(rows, cols int) error
}

// OpError records a failed sink operation.
type OpError struct {
	Op    string
	Sheet string
	Row   int
	Col   int
	Err   error
}

func (e *OpError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s!R%dC%d: %v", e.Op, e.Sheet, e.Row, e.Col, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
