// Package span finds the runs of repeated index values that collapse into
// merged blocks, and the rows at which a new visual group starts.
//
// Tracking is a fold over the rows of a multi-index: State.Step consumes one
// row and returns the next state plus the spans completed at that row.
// Step never mutates its receiver.
package span

import (
	"fmt"

	"github.com/aerissecure/drilldown"
)

// Span is a run of rows [First, Last] at one index level that share the
// display string of Cell.
type Span struct {
	Level int
	First int
	Last  int
	Cell  drilldown.Cell
}

// Rows returns the number of rows covered.
func (s Span) Rows() int { return s.Last - s.First + 1 }

func (s Span) String() string {
	return fmt.Sprintf("L%d[%d,%d]=%q", s.Level, s.First, s.Last, drilldown.Display(s.Cell))
}

// Unchanged marks a row where no index level changed.
const Unchanged = -1

// Decision is the outcome of one Step.
type Decision struct {
	Row int
	// Changed is the most significant level whose value differs from the
	// open span, or Unchanged.
	Changed int
	// Boundary is set when Changed <= group level: a new group starts here.
	Boundary bool
	// Flushed holds the spans completed by this row, one per level from
	// Changed to the deepest level, in level order.
	Flushed []Span
}

// State is the fold accumulator: one open span per index level.
type State struct {
	open       []Span
	next       int
	groupLevel int
}

// Start opens one span per level from the first row. groupLevel < 0
// disables boundaries.
func Start(first []drilldown.Cell, groupLevel int) State {
	open := make([]Span, len(first))
	for i, c := range first {
		open[i] = Span{Level: i, First: 0, Last: 0, Cell: c}
	}
	return State{open: open, next: 1, groupLevel: groupLevel}
}

// Row returns the index of the row the next Step consumes.
func (s State) Row() int { return s.next }

// Open returns a copy of the currently open spans.
func (s State) Open() []Span {
	return append([]Span(nil), s.open...)
}

// Step consumes the next row. Once a level diverges, it and every deeper
// level are flushed and reopened, even if a deeper value happens to repeat:
// blocks in different branches of the hierarchy are never joined.
// A row whose arity differs from the first row's is rejected with
// drilldown.ErrIndexArity and the state is returned unchanged.
func (s State) Step(row []drilldown.Cell) (State, Decision, error) {
	r := s.next
	if len(row) != len(s.open) {
		return s, Decision{}, fmt.Errorf("row %d: %w: got %d levels, want %d", r, drilldown.ErrIndexArity, len(row), len(s.open))
	}
	d := Decision{Row: r, Changed: Unchanged}
	open := make([]Span, len(s.open))
	for i, cur := range s.open {
		if d.Changed == Unchanged && drilldown.Equal(cur.Cell, row[i]) {
			cur.Last = r
			open[i] = cur
			continue
		}
		if d.Changed == Unchanged {
			d.Changed = i
		}
		d.Flushed = append(d.Flushed, cur)
		open[i] = Span{Level: i, First: r, Last: r, Cell: row[i]}
	}
	d.Boundary = d.Changed != Unchanged && d.Changed <= s.groupLevel
	return State{open: open, next: r + 1, groupLevel: s.groupLevel}, d, nil
}

// Finish returns the spans still open after the last row.
func (s State) Finish() []Span {
	return s.Open()
}

// Result is the full outcome of tracking a multi-index.
type Result struct {
	// Decisions has one entry per row; row 0 never changes.
	Decisions []Decision
	// Levels holds, per index level, the spans in row order.
	Levels [][]Span
}

// Boundaries returns the per-row group boundary flags.
func (r Result) Boundaries() []bool {
	out := make([]bool, len(r.Decisions))
	for i, d := range r.Decisions {
		out[i] = d.Boundary
	}
	return out
}

// Track folds Step over every row of index.
func Track(index [][]drilldown.Cell, groupLevel int) (Result, error) {
	if len(index) == 0 {
		return Result{}, nil
	}
	res := Result{
		Decisions: make([]Decision, 0, len(index)),
		Levels:    make([][]Span, len(index[0])),
	}
	st := Start(index[0], groupLevel)
	res.Decisions = append(res.Decisions, Decision{Row: 0, Changed: Unchanged})
	for r := 1; r < len(index); r++ {
		next, d, err := st.Step(index[r])
		if err != nil {
			return Result{}, err
		}
		st = next
		for _, sp := range d.Flushed {
			res.Levels[sp.Level] = append(res.Levels[sp.Level], sp)
		}
		res.Decisions = append(res.Decisions, d)
	}
	for _, sp := range st.Finish() {
		res.Levels[sp.Level] = append(res.Levels[sp.Level], sp)
	}
	return res, nil
}
