package xlsx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/aerissecure/drilldown"
	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/render"
	"github.com/aerissecure/drilldown/style"
)

func sampleBook() *drilldown.Book {
	top := drilldown.NewTable([]string{"region", "site"}, []string{"hosts"})
	top.GroupLevel = 0
	top.ColumnWidths = []float64{14, 20, 10}
	top.HiddenColumns = []int{1}
	top.AddRow([]drilldown.Cell{drilldown.PageLink{Text: "east", Page: "east"}, drilldown.Text("a")}, drilldown.Text("3"))
	top.AddRow([]drilldown.Cell{drilldown.PageLink{Text: "east", Page: "east"}, drilldown.Text("b")}, drilldown.Text("4"))
	top.AddRow([]drilldown.Cell{drilldown.Text("west"), drilldown.Text("c")}, nil)

	east := drilldown.NewTable([]string{"site"}, []string{"hosts"})
	east.AddRow([]drilldown.Cell{drilldown.Text("a")}, drilldown.Text("3"))
	eastPage := drilldown.NewPage("east", drilldown.Header{Title: "East", Description: "sites in the east"}, east)
	eastPage.Parent = "It's all"

	b := &drilldown.Book{}
	b.Add(drilldown.NewPage("It's all", drilldown.Header{Title: "All regions"}, top), eastPage)
	return b
}

func TestRoundTrip(t *testing.T) {
	book := sampleBook()

	want := grid.NewBuffer()
	if _, err := render.RenderBook(context.Background(), book, want); err != nil {
		t.Fatalf("render to buffer: %v", err)
	}

	var out bytes.Buffer
	w := NewWriter(&out)
	if _, err := render.RenderBook(context.Background(), book, w); err != nil {
		t.Fatalf("render to xlsx: %v", err)
	}

	got, err := ReadWorkbook(bytes.NewReader(out.Bytes()), int64(out.Len()))
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}

	var names []string
	for _, s := range got.Sheets {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"It's all", "east"}, names); diff != "" {
		t.Fatalf("sheets (-want +got):\n%s", diff)
	}

	for _, ws := range want.Workbook().Sheets {
		gs, _ := got.Sheet(ws.Name)
		for r := range ws.Rows {
			for c := 0; c < ws.ColCount(); c++ {
				wc, gc := ws.Cell(r, c), gs.Cell(r, c)
				if wc == nil {
					continue
				}
				if gc == nil {
					t.Errorf("%s R%dC%d missing", ws.Name, r, c)
					continue
				}
				if wc.Text != gc.Text || wc.Link != gc.Link || wc.RowSpan != gc.RowSpan || wc.Covered != gc.Covered {
					t.Errorf("%s R%dC%d: want %s, got %s", ws.Name, r, c, wc, gc)
				}
			}
		}
		if gs.FrozenRows != ws.FrozenRows || gs.FrozenCols != ws.FrozenCols {
			t.Errorf("%s frozen = %dx%d, want %dx%d", ws.Name, gs.FrozenRows, gs.FrozenCols, ws.FrozenRows, ws.FrozenCols)
		}
	}

	top, _ := got.Sheet("It's all")
	if diff := cmp.Diff([]grid.Column{{Width: 14}, {Width: 20, Hidden: true}, {Width: 10}}, top.Columns[:3]); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
}

func TestStyleRoundTrip(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	sh, err := w.AddSheet("s")
	if err != nil {
		t.Fatal(err)
	}
	st := style.Style{
		style.Bold:     true,
		style.BgColor:  "#ff0000",
		style.Top:      style.BorderMedium,
		style.Align:    "center",
		style.VAlign:   "vcenter",
		style.TextWrap: true,
	}
	ref, err := w.RegisterStyle(st)
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := w.RegisterStyle(st.Clone()); again != ref {
		t.Errorf("equal style registered twice: %d != %d", again, ref)
	}
	if err := sh.WriteText(0, 0, "x", ref); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	wb, err := ReadWorkbook(bytes.NewReader(out.Bytes()), int64(out.Len()))
	if err != nil {
		t.Fatal(err)
	}
	got := wb.Sheets[0].Cell(0, 0).Style
	for _, key := range []string{style.Bold, style.BgColor, style.Top, style.Align, style.VAlign, style.TextWrap} {
		if got.Str(key) != st.Str(key) {
			t.Errorf("%s = %q, want %q", key, got.Str(key), st.Str(key))
		}
	}
}

func TestValidateSheetName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"Summary", true},
		{"It's fine", true},
		{strings.Repeat("x", MaxSheetName), true},
		{strings.Repeat("x", MaxSheetName+1), false},
		{"", false},
		{"a/b", false},
		{"a[1]", false},
		{"what?", false},
		{"'quoted'", false},
	}
	for _, tt := range tests {
		err := ValidateSheetName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateSheetName(%q) = %v, want ok=%t", tt.name, err, tt.ok)
		}
		if err != nil && !errors.Is(err, grid.ErrSheetName) {
			t.Errorf("ValidateSheetName(%q) error %v does not wrap ErrSheetName", tt.name, err)
		}
	}
}

func TestWriterErrors(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if _, err := w.AddSheet("Data"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddSheet("DATA"); !errors.Is(err, grid.ErrSheetExists) {
		t.Errorf("case-insensitive duplicate: got %v", err)
	}
	sh, _ := w.AddSheet("other")
	if err := sh.WriteText(0, 0, "x", 7); !errors.Is(err, grid.ErrUnknownStyle) {
		t.Errorf("unknown style: got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sh.WriteBlank(0, 0, 0); !errors.Is(err, grid.ErrClosed) {
		t.Errorf("write after close: got %v", err)
	}
}

func TestCloseSavesOnce(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	size := out.Len()
	if size == 0 {
		t.Fatal("nothing written")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != size {
		t.Errorf("second Close wrote again")
	}

	wb, err := ReadWorkbook(bytes.NewReader(out.Bytes()), int64(out.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "Sheet1" {
		t.Errorf("empty workbook sheets = %v", wb.Sheets)
	}
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("/out/book.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := render.RenderBook(context.Background(), sampleBook(), NewWriter(f)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	wb, err := Open(fs, "/out/book.xlsx")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(wb.Sheets) != 2 {
		t.Errorf("got %d sheets, want 2", len(wb.Sheets))
	}
}

func TestLocation(t *testing.T) {
	for name, want := range map[string]string{
		"plain":    "'plain'!A1",
		"It's all": "'It''s all'!A1",
	} {
		loc := Location(name)
		if loc != want {
			t.Errorf("Location(%q) = %q, want %q", name, loc, want)
		}
		if back := sheetOf(loc); back != name {
			t.Errorf("sheetOf(%q) = %q, want %q", loc, back, name)
		}
	}
	if got := CellRef(3, 27); got != "AB4" {
		t.Errorf("CellRef(3, 27) = %q, want AB4", got)
	}
}
