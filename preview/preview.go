// Package preview prints rendered pages to a terminal.
package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/style"
)

// Ellipsis marks text cut to its column width.
const Ellipsis = "…"

// Sink buffers the grid and prints it to dst when closed. Only the first
// Close prints.
type Sink struct {
	*grid.Buffer
	dst  io.Writer
	done bool
}

var _ grid.Sink = (*Sink)(nil)

// NewSink returns a Sink printing to dst.
func NewSink(dst io.Writer) *Sink {
	return &Sink{Buffer: grid.NewBuffer(), dst: dst}
}

func (s *Sink) Close() error {
	if err := s.Buffer.Close(); err != nil {
		return err
	}
	if s.done {
		return nil
	}
	s.done = true
	return Print(s.dst, s.Workbook())
}

// Print writes every sheet of wb. Rows above the last frozen row are
// printed as lines, the last frozen row becomes the table header and the
// rest the table body. Colors are only emitted when w is a terminal.
func Print(w io.Writer, wb *grid.Workbook) error {
	p := printer{r: lipgloss.NewRenderer(w)}
	var b strings.Builder
	for i, s := range wb.Sheets {
		if i > 0 {
			b.WriteString("\n")
		}
		p.sheet(&b, s)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type printer struct {
	r *lipgloss.Renderer
}

func (p printer) sheet(b *strings.Builder, s *grid.SheetModel) {
	b.WriteString(p.r.NewStyle().Bold(true).Underline(true).Render(s.Name))
	b.WriteString("\n")

	cols := visibleColumns(s)
	header := s.FrozenRows - 1

	for r := 0; r < header && r < len(s.Rows); r++ {
		var parts []string
		for _, c := range cols {
			if text := display(s.Cell(r, c)); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			b.WriteString(strings.Join(parts, "  "))
			b.WriteString("\n")
		}
	}

	body := header + 1
	if header >= len(s.Rows) || (header < 0 && len(s.Rows) == 0) {
		return
	}

	var cells [][]*grid.Cell // body cells by table row, visible column
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.r.NewStyle().Faint(true)).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := p.r.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Bold(true)
			}
			if row < 0 || row >= len(cells) || col >= len(cells[row]) {
				return st
			}
			return p.cellStyle(st, cells[row][col])
		})

	if header >= 0 {
		headers := make([]string, len(cols))
		for i, c := range cols {
			headers[i] = truncate(s, c, display(s.Cell(header, c)))
		}
		t.Headers(headers...)
	}

	for r := body; r < len(s.Rows); r++ {
		row := make([]string, len(cols))
		line := make([]*grid.Cell, len(cols))
		for i, c := range cols {
			cell := s.Cell(r, c)
			line[i] = cell
			if cell != nil && cell.Covered {
				continue
			}
			row[i] = truncate(s, c, display(cell))
		}
		cells = append(cells, line)
		t.Row(row...)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
}

func (p printer) cellStyle(st lipgloss.Style, cell *grid.Cell) lipgloss.Style {
	if cell == nil {
		return st
	}
	if cell.Style.Bool(style.Bold) {
		st = st.Bold(true)
	}
	if cell.Style.Bool(style.Italic) {
		st = st.Italic(true)
	}
	if cell.Style.Bool(style.Underline) || cell.Link != "" {
		st = st.Underline(true)
	}
	if c, ok, err := cell.Style.Color(style.FontColor); ok && err == nil {
		st = st.Foreground(lipgloss.Color(c.Hex()))
	}
	if c, ok, err := cell.Style.Color(style.BgColor); ok && err == nil {
		st = st.Background(lipgloss.Color(c.Hex()))
	}
	switch cell.Style.Str(style.Align) {
	case "center":
		st = st.Align(lipgloss.Center)
	case "right":
		st = st.Align(lipgloss.Right)
	}
	return st
}

func visibleColumns(s *grid.SheetModel) []int {
	var cols []int
	for c := 0; c < s.ColCount(); c++ {
		if c < len(s.Columns) && s.Columns[c].Hidden {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// display returns the text of a cell, with the link target appended.
func display(cell *grid.Cell) string {
	if cell == nil {
		return ""
	}
	if cell.Link != "" {
		return fmt.Sprintf("%s → %s", cell.Text, cell.Link)
	}
	return cell.Text
}

// truncate cuts text to the column width hint, measured in terminal cells.
func truncate(s *grid.SheetModel, col int, text string) string {
	if col >= len(s.Columns) || s.Columns[col].Width <= 0 {
		return text
	}
	limit := int(s.Columns[col].Width)
	if runewidth.StringWidth(text) <= limit {
		return text
	}
	return runewidth.Truncate(text, limit, Ellipsis)
}
