package grid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aerissecure/drilldown/style"
)

func TestBufferStyleDedup(t *testing.T) {
	b := NewBuffer()
	r1, _ := b.RegisterStyle(style.Style{style.Bold: true, style.FontSize: 11})
	r2, _ := b.RegisterStyle(style.Style{style.FontSize: 11, style.Bold: true})
	r3, _ := b.RegisterStyle(style.Style{style.FontSize: 9})
	if r1 != r2 {
		t.Errorf("equal styles got refs %d and %d", r1, r2)
	}
	if r3 == r1 {
		t.Errorf("distinct styles share ref %d", r3)
	}
	if len(b.Styles()) != 2 {
		t.Errorf("got %d styles, want 2", len(b.Styles()))
	}
}

func TestBufferWrites(t *testing.T) {
	b := NewBuffer()
	sh, err := b.AddSheet("s")
	if err != nil {
		t.Fatal(err)
	}
	plain, _ := b.RegisterStyle(style.Style{style.FontSize: 9})
	idx, _ := b.RegisterStyle(style.Style{style.Bold: true})

	steps := []error{
		sh.MergeRange(1, 0, 3, 0, idx),
		sh.WriteText(1, 0, "A", idx),
		sh.WriteLink(1, 1, "other", "go", plain),
		sh.WriteBlank(2, 1, plain),
		sh.SetColumnWidth(2, 12.5),
		sh.SetColumnHidden(1),
		sh.Freeze(1, 1),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	m, ok := b.Workbook().Sheet("s")
	if !ok {
		t.Fatal("sheet missing")
	}
	want := &Cell{Text: "A", RowSpan: 3, ColSpan: 1, Style: style.Style{style.Bold: true}}
	if diff := cmp.Diff(want, m.Cell(1, 0)); diff != "" {
		t.Errorf("master (-want +got):\n%s", diff)
	}
	for r := 2; r <= 3; r++ {
		if c := m.Cell(r, 0); c == nil || !c.Covered {
			t.Errorf("R%dC0 = %v, want covered", r, c)
		}
	}
	if c := m.Cell(1, 1); c.Link != "other" || c.Text != "go" {
		t.Errorf("link cell = %v", c)
	}
	if c := m.Cell(2, 1); c == nil || c.Text != "" || c.Style.Float(style.FontSize) != 9 {
		t.Errorf("blank cell = %v", c)
	}
	if m.Cell(0, 0) != nil {
		t.Error("unwritten cell is not nil")
	}
	wantCols := []Column{{}, {Hidden: true}, {Width: 12.5}}
	if diff := cmp.Diff(wantCols, m.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if m.FrozenRows != 1 || m.FrozenCols != 1 {
		t.Errorf("frozen = %dx%d", m.FrozenRows, m.FrozenCols)
	}
	if diff := cmp.Diff([]Range{{FirstRow: 1, LastRow: 3}}, m.Merges); diff != "" {
		t.Errorf("merges (-want +got):\n%s", diff)
	}
	if m.ColCount() != 3 {
		t.Errorf("ColCount = %d, want 3", m.ColCount())
	}
}

func TestBufferErrors(t *testing.T) {
	b := NewBuffer()
	sh, _ := b.AddSheet("s")
	ref, _ := b.RegisterStyle(style.Style{})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate sheet", func() error { _, err := b.AddSheet("s"); return err }(), ErrSheetExists},
		{"empty sheet name", func() error { _, err := b.AddSheet(""); return err }(), ErrSheetName},
		{"unknown style", sh.WriteText(0, 0, "x", ref+5), ErrUnknownStyle},
		{"negative row", sh.WriteBlank(-1, 0, ref), ErrOutOfRange},
		{"inverted merge", sh.MergeRange(3, 0, 1, 0, ref), ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
			var oe *OpError
			if !errors.As(tt.err, &oe) {
				t.Errorf("err = %T, want *OpError", tt.err)
			}
		})
	}

	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := sh.WriteText(0, 0, "late", ref); !errors.Is(err, ErrClosed) {
		t.Errorf("write after Close: err = %v, want ErrClosed", err)
	}
	if b.Closes() != 2 {
		t.Errorf("Closes = %d, want 2", b.Closes())
	}
}

func TestRecorderReplay(t *testing.T) {
	rec := NewRecorder()
	sh, _ := rec.AddSheet("s")
	bold, _ := rec.RegisterStyle(style.Style{style.Bold: true})
	bold2, _ := rec.RegisterStyle(style.Style{style.Bold: true})
	_ = sh.MergeRange(0, 0, 1, 0, bold)
	_ = sh.WriteText(0, 0, "A", bold2)
	_ = sh.WriteLink(0, 1, "t", "link", bold)
	_ = sh.SetColumnWidth(1, 30)
	_ = sh.Freeze(1, 0)

	if rec.Registrations() != 2 {
		t.Errorf("Registrations = %d, want 2", rec.Registrations())
	}

	buf := NewBuffer()
	if err := rec.Replay(buf); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(buf.Styles()) != 1 {
		t.Errorf("buffer got %d styles, want 1", len(buf.Styles()))
	}
	m, _ := buf.Workbook().Sheet("s")
	if m.Text(0, 0) != "A" || m.Cell(0, 0).RowSpan != 2 {
		t.Errorf("master = %v", m.Cell(0, 0))
	}
	if m.Cell(0, 1).Link != "t" {
		t.Errorf("link = %v", m.Cell(0, 1))
	}
	if m.Columns[1].Width != 30 {
		t.Errorf("width = %v", m.Columns[1].Width)
	}
	if buf.Closes() != 0 {
		t.Error("Replay closed the target")
	}

	// Replaying into a second recorder reproduces the op stream.
	again := NewRecorder()
	if err := rec.Replay(again); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if diff := cmp.Diff(rec.Ops(), again.Ops()); diff != "" {
		t.Errorf("replayed ops (-want +got):\n%s", diff)
	}
}

func TestReplayPropagatesSinkErrors(t *testing.T) {
	rec := NewRecorder()
	_, _ = rec.AddSheet("s")
	_, _ = rec.AddSheet("s")

	err := rec.Replay(NewBuffer())
	if !errors.Is(err, ErrSheetExists) {
		t.Errorf("err = %v, want ErrSheetExists", err)
	}
}

func TestRangeContains(t *testing.T) {
	rg := Range{FirstRow: 1, FirstCol: 1, LastRow: 2, LastCol: 3}
	tests := []struct {
		row, col int
		want     bool
	}{
		{1, 1, true},
		{2, 3, true},
		{0, 1, false},
		{2, 4, false},
	}
	for _, tt := range tests {
		if got := rg.Contains(tt.row, tt.col); got != tt.want {
			t.Errorf("Contains(%d, %d) = %t, want %t", tt.row, tt.col, got, tt.want)
		}
	}
	if rg.String() != "R1C1:R2C3" {
		t.Errorf("String = %q", rg.String())
	}
}
