// Package render turns drilldown pages into grid operations.
//
// A page is laid out as a fixed header band followed by the table body:
//
//	row 0  title
//	row 1  description
//	row 2  "Go back" link to the parent page, then the navbar links
//	row 3  index level names, then column labels
//	row 4+ one grid row per table row, closed by a border rule
//
// Repeated leading index values are collapsed into merged ranges as decided
// by the span package.
package render

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aerissecure/drilldown"
	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/span"
	"github.com/aerissecure/drilldown/style"
)

// Layout of the header band.
const (
	TitleRow       = 0
	DescriptionRow = 1
	NavRow         = 2
	TableHeaderRow = 3
	HeaderRows     = 4 // body starts here; also the frozen row count
)

// GoBack is the text of the parent navigation cell.
const GoBack = "Go back"

// Renderer renders pages with one immutable style configuration. It is safe
// for concurrent use as long as each goroutine writes to its own sink.
type Renderer struct {
	cfg         style.Config
	log         *slog.Logger
	policy      Policy
	parallelism int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConfig sets the style configuration. The default is style.DefaultConfig.
func WithConfig(cfg style.Config) Option {
	return func(r *Renderer) { r.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPolicy selects how RenderBook treats a failing page.
func WithPolicy(p Policy) Option {
	return func(r *Renderer) { r.policy = p }
}

// WithParallelism renders up to n pages at once in RenderBook. Values below
// 2 render sequentially.
func WithParallelism(n int) Option {
	return func(r *Renderer) { r.parallelism = n }
}

// New returns a Renderer. Without options it uses the default styles, the
// FailFast policy and sequential rendering.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		cfg:         style.DefaultConfig(),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy:      FailFast,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderPage validates page and emits its operations against sink: one new
// sheet named after the page. References to other pages are not resolved
// here; the sink receives them as symbolic sheet names.
//
// Sink failures are returned as *grid.OpError, malformed pages as
// *drilldown.StructuralError.
func (r *Renderer) RenderPage(page *drilldown.Page, sink grid.Sink) error {
	if err := page.Validate(); err != nil {
		return err
	}
	start := time.Now()
	sheet, err := sink.AddSheet(page.Name)
	if err != nil {
		return wrapOp(err, "add_sheet", page.Name, 0, 0)
	}
	w := &pageWriter{
		cfg:   r.cfg,
		sink:  sink,
		sheet: sheet,
		refs:  make(map[string]grid.StyleRef),
	}
	if err := w.page(page); err != nil {
		return err
	}
	r.log.Debug("rendered page",
		"page", page.Name,
		"rows", page.Table.Len(),
		"styles", len(w.refs),
		"duration", time.Since(start))
	return nil
}

// pageWriter holds the per-page rendering state.
type pageWriter struct {
	cfg   style.Config
	sink  grid.Sink
	sheet grid.Sheet
	refs  map[string]grid.StyleRef
}

func (w *pageWriter) page(p *drilldown.Page) error {
	t := p.Table
	levels := t.Levels()

	if err := w.header(p); err != nil {
		return err
	}
	if err := w.sheet.Freeze(HeaderRows, levels); err != nil {
		return w.fail(err, "freeze", HeaderRows, levels)
	}
	for col, width := range t.ColumnWidths {
		if width <= 0 {
			continue
		}
		if err := w.sheet.SetColumnWidth(col, width); err != nil {
			return w.fail(err, "set_column_width", 0, col)
		}
	}
	for _, col := range t.HiddenColumns {
		if err := w.sheet.SetColumnHidden(col); err != nil {
			return w.fail(err, "set_column_hidden", 0, col)
		}
	}
	if err := w.tableHeader(t); err != nil {
		return err
	}
	if err := w.body(t); err != nil {
		return err
	}

	// Closing rule under the last row.
	rule, err := w.ref(style.Style{style.Top: w.cfg.GroupBorder()})
	if err != nil {
		return err
	}
	last := HeaderRows + t.Len()
	for col := 0; col < levels+len(t.Columns); col++ {
		if err := w.sheet.WriteBlank(last, col, rule); err != nil {
			return w.fail(err, "write_blank", last, col)
		}
	}
	return nil
}

func (w *pageWriter) header(p *drilldown.Page) error {
	if err := w.text(TitleRow, 0, p.Header.Title, w.cfg.Style(style.Title)); err != nil {
		return err
	}
	if err := w.text(DescriptionRow, 0, p.Header.Description, w.cfg.Style(style.Description)); err != nil {
		return err
	}
	col := 0
	if p.Parent != "" {
		if err := w.link(NavRow, col, p.Parent, GoBack, w.cfg.Style(style.Link)); err != nil {
			return err
		}
		col++
	}
	if p.Navbar != nil {
		for _, target := range p.Navbar.Links {
			if err := w.link(NavRow, col, target, target, w.cfg.Style(style.Link)); err != nil {
				return err
			}
			col++
		}
	}
	return nil
}

func (w *pageWriter) tableHeader(t *drilldown.Table) error {
	for col, name := range t.IndexNames {
		if err := w.text(TableHeaderRow, col, name, w.cfg.Style(style.IndexHeader)); err != nil {
			return err
		}
	}
	for i, name := range t.Columns {
		if err := w.text(TableHeaderRow, t.Levels()+i, name, w.cfg.Style(style.ColumnHeader)); err != nil {
			return err
		}
	}
	return nil
}

// body folds the span tracker over the rows, writing each span when it is
// flushed and each body row as it is consumed.
func (w *pageWriter) body(t *drilldown.Table) error {
	if t.Len() == 0 {
		return nil
	}
	st := span.Start(t.Index[0], t.GroupLevel)
	if err := w.values(0, t, nil); err != nil {
		return err
	}
	for r := 1; r < t.Len(); r++ {
		next, d, err := st.Step(t.Index[r])
		if err != nil {
			return err
		}
		st = next
		var bottom, top style.Style
		if d.Boundary {
			bottom = style.Style{style.Bottom: w.cfg.GroupBorder()}
			top = style.Style{style.Top: w.cfg.GroupBorder()}
		}
		for _, sp := range d.Flushed {
			if err := w.writeSpan(sp, bottom); err != nil {
				return err
			}
		}
		if err := w.values(r, t, top); err != nil {
			return err
		}
	}
	for _, sp := range st.Finish() {
		if err := w.writeSpan(sp, nil); err != nil {
			return err
		}
	}
	return nil
}

func (w *pageWriter) values(r int, t *drilldown.Table, border style.Style) error {
	row := HeaderRows + r
	for i, c := range t.Values[r] {
		if err := w.cell(row, t.Levels()+i, c, style.BodyCell, border); err != nil {
			return err
		}
	}
	return nil
}

// writeSpan writes one flushed index run. Runs of a single row are written as a
// plain cell; longer runs are merged first.
func (w *pageWriter) writeSpan(sp span.Span, border style.Style) error {
	first, last := HeaderRows+sp.First, HeaderRows+sp.Last
	if sp.Rows() > 1 {
		ref, err := w.ref(w.cfg.Compose(style.IndexCell, "", border, false))
		if err != nil {
			return err
		}
		if err := w.sheet.MergeRange(first, sp.Level, last, sp.Level, ref); err != nil {
			return w.fail(err, "merge_range", first, sp.Level)
		}
	}
	return w.cell(first, sp.Level, sp.Cell, style.IndexCell, border)
}

// cell writes one table cell with the role's style plus its color, border
// and link overrides. Null cells still get one styled blank write.
func (w *pageWriter) cell(row, col int, c drilldown.Cell, role style.Role, border style.Style) error {
	if c == nil {
		ref, err := w.ref(w.cfg.Compose(role, "", border, false))
		if err != nil {
			return err
		}
		if err := w.sheet.WriteBlank(row, col, ref); err != nil {
			return w.fail(err, "write_blank", row, col)
		}
		return nil
	}
	target := c.Link()
	st := w.cfg.Compose(role, c.Color(), border, target != "")
	if target != "" {
		return w.link(row, col, target, c.String(), st)
	}
	return w.text(row, col, c.String(), st)
}

func (w *pageWriter) text(row, col int, text string, st style.Style) error {
	ref, err := w.ref(st)
	if err != nil {
		return err
	}
	if err := w.sheet.WriteText(row, col, text, ref); err != nil {
		return w.fail(err, "write_text", row, col)
	}
	return nil
}

func (w *pageWriter) link(row, col int, target, text string, st style.Style) error {
	ref, err := w.ref(st)
	if err != nil {
		return err
	}
	if err := w.sheet.WriteLink(row, col, target, text, ref); err != nil {
		return w.fail(err, "write_link", row, col)
	}
	return nil
}

// ref registers st the first time a style with its properties is used on
// this page.
func (w *pageWriter) ref(st style.Style) (grid.StyleRef, error) {
	key := st.Key()
	if ref, ok := w.refs[key]; ok {
		return ref, nil
	}
	ref, err := w.sink.RegisterStyle(st)
	if err != nil {
		return 0, wrapOp(err, "register_style", w.sheet.Name(), 0, 0)
	}
	w.refs[key] = ref
	return ref, nil
}

func (w *pageWriter) fail(err error, op string, row, col int) error {
	return wrapOp(err, op, w.sheet.Name(), row, col)
}

func wrapOp(err error, op, sheet string, row, col int) error {
	var oe *grid.OpError
	if errors.As(err, &oe) {
		return err
	}
	return &grid.OpError{Op: op, Sheet: sheet, Row: row, Col: col, Err: err}
}
