package htmlgrid

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/aerissecure/drilldown"
	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/render"
	"github.com/aerissecure/drilldown/style"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func mustSheet(t *testing.T, b *grid.Buffer, name string) grid.Sheet {
	t.Helper()
	sh, err := b.AddSheet(name)
	if err != nil {
		t.Fatalf("AddSheet(%q): %v", name, err)
	}
	return sh
}

func mustStyle(t *testing.T, b *grid.Buffer, st style.Style) grid.StyleRef {
	t.Helper()
	ref, err := b.RegisterStyle(st)
	if err != nil {
		t.Fatalf("RegisterStyle: %v", err)
	}
	return ref
}

func toHTML(t *testing.T, wb *grid.Workbook) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, wb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestCommonPropertiesAreHoisted(t *testing.T) {
	b := grid.NewBuffer()
	sh := mustSheet(t, b, "s")
	bold := mustStyle(t, b, style.Style{style.Bold: true, style.FontName: "Arial"})
	plain := mustStyle(t, b, style.Style{style.FontName: "Arial"})
	for r := 0; r < 3; r++ {
		if err := sh.WriteText(r, 0, "x", bold); err != nil {
			t.Fatal(err)
		}
	}
	if err := sh.WriteText(3, 0, "y", plain); err != nil {
		t.Fatal(err)
	}

	out := toHTML(t, b.Workbook())
	base := out[strings.Index(out, ".table td {"):]
	base = base[:strings.Index(base, "}")]
	for _, want := range []string{"font-weight:bold;", "font-family:'Arial';", "white-space:nowrap;"} {
		if !strings.Contains(base, want) {
			t.Errorf("base rule %q lacks %q", base, want)
		}
	}
	if !strings.Contains(out, ".cellstyle2 { font-weight:normal; }") {
		t.Errorf("plain class does not reset the hoisted weight:\n%s", out)
	}
	if strings.Contains(out, ".cellstyle1 {") {
		t.Errorf("class matching the base rule should be omitted:\n%s", out)
	}
}

func TestSpansLinksAndHiddenColumns(t *testing.T) {
	b := grid.NewBuffer()
	sh := mustSheet(t, b, "Top Page")
	mustSheet(t, b, "Child Page")
	ref := mustStyle(t, b, style.Style{})

	steps := []error{
		sh.MergeRange(0, 0, 1, 0, ref),
		sh.WriteLink(0, 0, "Child Page", "drill", ref),
		sh.WriteText(0, 1, "a", ref),
		sh.WriteText(1, 1, "b", ref),
		sh.WriteText(0, 2, "secret", ref),
		sh.SetColumnHidden(2),
		sh.Freeze(1, 1),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	doc := parse(t, toHTML(t, b.Workbook()))
	divs := findAll(doc, "div")
	var ids []string
	for _, d := range divs {
		if attr(d, "class") == "sheet" {
			ids = append(ids, attr(d, "id"))
		}
	}
	if diff := cmp.Diff([]string{"sheet-Top%20Page", "sheet-Child%20Page"}, ids); diff != "" {
		t.Errorf("sheet ids (-want +got):\n%s", diff)
	}

	first := findAll(divs[0], "table")[0]
	rows := findAll(first, "tr")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if n := len(findAll(first, "thead")); n != 1 {
		t.Errorf("got %d thead sections, want 1", n)
	}
	top := findAll(rows[0], "td")
	if len(top) != 2 {
		t.Fatalf("first row has %d cells, want 2 (hidden column dropped)", len(top))
	}
	if got := attr(top[0], "rowspan"); got != "2" {
		t.Errorf("rowspan = %q, want 2", got)
	}
	links := findAll(top[0], "a")
	if len(links) != 1 || attr(links[0], "href") != "#sheet-Child%20Page" || textOf(links[0]) != "drill" {
		t.Errorf("unexpected link markup in %q", textOf(top[0]))
	}
	second := findAll(rows[1], "td")
	if len(second) != 1 || textOf(second[0]) != "b" {
		t.Errorf("covered cell was emitted: %d cells", len(second))
	}
	if cols := findAll(first, "col"); len(cols) != 2 {
		t.Errorf("got %d col elements, want 2", len(cols))
	}
	if strings.Contains(textOf(first), "secret") {
		t.Error("hidden column content rendered")
	}
}

func TestDeclarations(t *testing.T) {
	got := declarations(style.Style{
		style.BgColor:     "red",
		style.FontColor:   "#0000FF",
		style.Align:       "center",
		style.VAlign:      "vcenter",
		style.TextWrap:    true,
		style.Bottom:      style.BorderMedium,
		style.BorderColor: "#333",
		style.FontSize:    11,
	})
	want := map[string]string{
		"background-color": "#ff0000",
		"color":            "#0000ff",
		"text-align":       "center",
		"vertical-align":   "middle",
		"white-space":      "normal",
		"border-bottom":    "2px solid #333333",
		"font-size":        "11.0pt",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations (-want +got):\n%s", diff)
	}
}

func TestFontNameCannotLeaveStyle(t *testing.T) {
	got := declarations(style.Style{style.FontName: "Evil'</style><script>x;}"})
	if want := "'Evil/stylescriptx'"; got["font-family"] != want {
		t.Errorf("font-family = %q, want %q", got["font-family"], want)
	}

	b := grid.NewBuffer()
	sh := mustSheet(t, b, "s")
	ref := mustStyle(t, b, style.Style{style.FontName: "Evil</style><script>alert(1)</script>"})
	if err := sh.WriteText(0, 0, "x", ref); err != nil {
		t.Fatal(err)
	}
	out := toHTML(t, b.Workbook())
	if strings.Contains(out, "<script>") || strings.Count(out, "</style>") != 1 {
		t.Errorf("font name escaped the style element:\n%s", out)
	}
}

func TestSinkWritesOnce(t *testing.T) {
	var out bytes.Buffer
	s := NewSink(&out, "Report <1>")
	if _, err := s.AddSheet("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	size := out.Len()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != size {
		t.Errorf("second Close wrote %d more bytes", out.Len()-size)
	}
	doc := parse(t, out.String())
	titles := findAll(doc, "title")
	if len(titles) != 1 || textOf(titles[0]) != "Report <1>" {
		t.Errorf("title not escaped correctly")
	}
}

func TestRenderBookToHTML(t *testing.T) {
	child := drilldown.NewTable([]string{"k"}, []string{"v"})
	child.AddRow([]drilldown.Cell{drilldown.Text("x")}, drilldown.Text("1"))
	childPage := drilldown.NewPage("detail", drilldown.Header{Title: "Detail"}, child)
	childPage.Parent = "summary"

	top := drilldown.NewTable([]string{"k"}, []string{"v"})
	top.AddRow([]drilldown.Cell{drilldown.PageLink{Text: "x", Page: "detail"}}, drilldown.Text("1"))
	topPage := drilldown.NewPage("summary", drilldown.Header{Title: "Summary"}, top)

	book := &drilldown.Book{}
	book.Add(topPage, childPage)

	var out bytes.Buffer
	sink := NewSink(&out, "book")
	if _, err := render.RenderBook(context.Background(), book, sink); err != nil {
		t.Fatalf("RenderBook: %v", err)
	}

	doc := parse(t, out.String())
	var hrefs []string
	for _, a := range findAll(doc, "a") {
		hrefs = append(hrefs, attr(a, "href"))
	}
	if diff := cmp.Diff([]string{"#sheet-detail", "#sheet-summary"}, hrefs); diff != "" {
		t.Errorf("links (-want +got):\n%s", diff)
	}
}
