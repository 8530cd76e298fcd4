package grid

import (
	"fmt"

	"github.com/aerissecure/drilldown/style"
)

// OpKind names a sink operation.
type OpKind string

const (
	OpAddSheet     OpKind = "add_sheet"
	OpWriteText    OpKind = "write_text"
	OpWriteBlank   OpKind = "write_blank"
	OpWriteLink    OpKind = "write_link"
	OpMergeRange   OpKind = "merge_range"
	OpColumnWidth  OpKind = "set_column_width"
	OpColumnHidden OpKind = "set_column_hidden"
	OpFreeze       OpKind = "freeze"
)

// Op is one recorded operation. Style holds the resolved style, so an op
// stream can be replayed into a sink with its own style references.
type Op struct {
	Kind    OpKind
	Sheet   string
	Row     int
	Col     int
	LastRow int
	LastCol int
	Text    string
	Target  string
	Width   float64
	Style   style.Style
}

func (o Op) String() string {
	switch o.Kind {
	case OpAddSheet:
		return fmt.Sprintf("%s %q", o.Kind, o.Sheet)
	case OpMergeRange:
		return fmt.Sprintf("%s %s!R%dC%d:R%dC%d %s", o.Kind, o.Sheet, o.Row, o.Col, o.LastRow, o.LastCol, o.Style)
	case OpColumnWidth:
		return fmt.Sprintf("%s %s!C%d %g", o.Kind, o.Sheet, o.Col, o.Width)
	case OpColumnHidden:
		return fmt.Sprintf("%s %s!C%d", o.Kind, o.Sheet, o.Col)
	case OpFreeze:
		return fmt.Sprintf("%s %s %dx%d", o.Kind, o.Sheet, o.Row, o.Col)
	case OpWriteLink:
		return fmt.Sprintf("%s %s!R%dC%d %q->%q %s", o.Kind, o.Sheet, o.Row, o.Col, o.Text, o.Target, o.Style)
	default:
		return fmt.Sprintf("%s %s!R%dC%d %q %s", o.Kind, o.Sheet, o.Row, o.Col, o.Text, o.Style)
	}
}

// Recorder is a Sink that logs operations in call order. It never fails.
type Recorder struct {
	ops        []Op
	styles     []style.Style
	registered int
	closes     int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Ops returns the recorded operations.
func (r *Recorder) Ops() []Op { return r.ops }

// Registrations returns how many times RegisterStyle was called.
func (r *Recorder) Registrations() int { return r.registered }

// Closes returns how many times Close was called.
func (r *Recorder) Closes() int { return r.closes }

// Filter returns the operations of the given kinds.
func (r *Recorder) Filter(kinds ...OpKind) []Op {
	var out []Op
	for _, op := range r.ops {
		for _, k := range kinds {
			if op.Kind == k {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

func (r *Recorder) AddSheet(name string) (Sheet, error) {
	r.ops = append(r.ops, Op{Kind: OpAddSheet, Sheet: name})
	return &recorderSheet{rec: r, name: name}, nil
}

// RegisterStyle never deduplicates: every call gets a fresh reference.
func (r *Recorder) RegisterStyle(s style.Style) (StyleRef, error) {
	r.registered++
	r.styles = append(r.styles, s.Clone())
	return StyleRef(len(r.styles) - 1), nil
}

func (r *Recorder) Close() error {
	r.closes++
	return nil
}

func (r *Recorder) style(ref StyleRef) style.Style {
	if ref < 0 || int(ref) >= len(r.styles) {
		return nil
	}
	return r.styles[ref]
}

// Replay issues the recorded operations against sink, registering each
// style as it is first used. It does not close sink.
func (r *Recorder) Replay(sink Sink) error {
	sheets := make(map[string]Sheet)
	refs := make(map[string]StyleRef)
	ref := func(st style.Style) (StyleRef, error) {
		key := st.Key()
		if id, ok := refs[key]; ok {
			return id, nil
		}
		id, err := sink.RegisterStyle(st)
		if err != nil {
			return 0, err
		}
		refs[key] = id
		return id, nil
	}
	for _, op := range r.ops {
		if op.Kind == OpAddSheet {
			sh, err := sink.AddSheet(op.Sheet)
			if err != nil {
				return err
			}
			sheets[op.Sheet] = sh
			continue
		}
		sh, ok := sheets[op.Sheet]
		if !ok {
			return &OpError{Op: string(op.Kind), Sheet: op.Sheet, Row: op.Row, Col: op.Col, Err: fmt.Errorf("sheet was not added")}
		}
		if err := replayOp(sh, op, ref); err != nil {
			return err
		}
	}
	return nil
}

func replayOp(sh Sheet, op Op, ref func(style.Style) (StyleRef, error)) error {
	switch op.Kind {
	case OpColumnWidth:
		return sh.SetColumnWidth(op.Col, op.Width)
	case OpColumnHidden:
		return sh.SetColumnHidden(op.Col)
	case OpFreeze:
		return sh.Freeze(op.Row, op.Col)
	}
	id, err := ref(op.Style)
	if err != nil {
		return err
	}
	switch op.Kind {
	case OpWriteText:
		return sh.WriteText(op.Row, op.Col, op.Text, id)
	case OpWriteBlank:
		return sh.WriteBlank(op.Row, op.Col, id)
	case OpWriteLink:
		return sh.WriteLink(op.Row, op.Col, op.Target, op.Text, id)
	case OpMergeRange:
		return sh.MergeRange(op.Row, op.Col, op.LastRow, op.LastCol, id)
	}
	return fmt.Errorf("unknown op %q", op.Kind)
}

type recorderSheet struct {
	rec  *Recorder
	name string
}

func (s *recorderSheet) Name() string { return s.name }

func (s *recorderSheet) add(op Op) error {
	op.Sheet = s.name
	s.rec.ops = append(s.rec.ops, op)
	return nil
}

func (s *recorderSheet) WriteText(row, col int, text string, st StyleRef) error {
	return s.add(Op{Kind: OpWriteText, Row: row, Col: col, Text: text, Style: s.rec.style(st)})
}

func (s *recorderSheet) WriteBlank(row, col int, st StyleRef) error {
	return s.add(Op{Kind: OpWriteBlank, Row: row, Col: col, Style: s.rec.style(st)})
}

func (s *recorderSheet) WriteLink(row, col int, target, text string, st StyleRef) error {
	return s.add(Op{Kind: OpWriteLink, Row: row, Col: col, Target: target, Text: text, Style: s.rec.style(st)})
}

func (s *recorderSheet) MergeRange(firstRow, firstCol, lastRow, lastCol int, st StyleRef) error {
	return s.add(Op{Kind: OpMergeRange, Row: firstRow, Col: firstCol, LastRow: lastRow, LastCol: lastCol, Style: s.rec.style(st)})
}

func (s *recorderSheet) SetColumnWidth(col int, width float64) error {
	return s.add(Op{Kind: OpColumnWidth, Col: col, Width: width})
}

func (s *recorderSheet) SetColumnHidden(col int) error {
	return s.add(Op{Kind: OpColumnHidden, Col: col})
}

func (s *recorderSheet) Freeze(rows, cols int) error {
	return s.add(Op{Kind: OpFreeze, Row: rows, Col: cols})
}
