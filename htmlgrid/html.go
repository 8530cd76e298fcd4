// Package htmlgrid renders grid workbooks as HTML tables, one <div> per
// sheet, with internal links turned into in-page anchors.
package htmlgrid

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/style"
)

// DefaultColumnWidth is the spreadsheet default width, in characters.
const DefaultColumnWidth = 8.43

// cssProps lists the CSS properties derived from a style, in output order.
var cssProps = []string{
	"font-family",
	"font-size",
	"font-weight",
	"font-style",
	"text-decoration",
	"color",
	"background-color",
	"text-align",
	"vertical-align",
	"white-space",
	"border-top",
	"border-bottom",
	"border-left",
	"border-right",
}

// neutral is what a class sets when it lacks a property hoisted into the
// base rule.
var neutral = map[string]string{
	"font-family":      "inherit",
	"font-size":        "inherit",
	"font-weight":      "normal",
	"font-style":       "normal",
	"text-decoration":  "none",
	"color":            "inherit",
	"background-color": "transparent",
	"text-align":       "left",
	"vertical-align":   "bottom",
	"border-top":       "1px solid #d4d4d4",
	"border-bottom":    "1px solid #d4d4d4",
	"border-left":      "1px solid #d4d4d4",
	"border-right":     "1px solid #d4d4d4",
}

var borderCSS = map[int]string{
	style.BorderThin:   "1px solid",
	style.BorderMedium: "2px solid",
	style.BorderDashed: "1px dashed",
	style.BorderDotted: "1px dotted",
	style.BorderThick:  "3px solid",
	style.BorderDouble: "3px double",
	style.BorderHair:   "1px dotted",
}

// Anchor returns the element id of the sheet called name. Links point at
// "#" + Anchor(target).
func Anchor(name string) string {
	return "sheet-" + url.PathEscape(name)
}

// fontFamily drops the characters that could end the quoted name, the
// declaration or the enclosing <style> element.
func fontFamily(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '\\', '<', '>', ';', '{', '}':
			return -1
		}
		return r
	}, name)
}

// declarations converts st into CSS property values. Properties the style
// leaves unset are absent, except white-space which always follows
// text_wrap.
func declarations(st style.Style) map[string]string {
	d := map[string]string{}
	if v := st.Str(style.FontName); v != "" {
		d["font-family"] = fmt.Sprintf("'%s'", fontFamily(v))
	}
	if v := st.Float(style.FontSize); v > 0 {
		d["font-size"] = fmt.Sprintf("%.1fpt", v)
	}
	if st.Bool(style.Bold) {
		d["font-weight"] = "bold"
	}
	if st.Bool(style.Italic) {
		d["font-style"] = "italic"
	}
	if st.Bool(style.Underline) {
		d["text-decoration"] = "underline"
	}
	if c, ok, err := st.Color(style.FontColor); ok && err == nil {
		d["color"] = c.Hex()
	}
	if c, ok, err := st.Color(style.BgColor); ok && err == nil {
		d["background-color"] = c.Hex()
	}
	switch st.Str(style.Align) {
	case "left", "center", "right", "justify":
		d["text-align"] = st.Str(style.Align)
	}
	switch st.Str(style.VAlign) {
	case "top":
		d["vertical-align"] = "top"
	case "vcenter":
		d["vertical-align"] = "middle"
	case "bottom":
		d["vertical-align"] = "bottom"
	}
	if st.Bool(style.TextWrap) {
		d["white-space"] = "normal"
	} else {
		d["white-space"] = "nowrap"
	}

	borderColor := "#000000"
	if c, ok, err := st.Color(style.BorderColor); ok && err == nil {
		borderColor = c.Hex()
	}
	for key, prop := range map[string]string{
		style.Top:    "border-top",
		style.Bottom: "border-bottom",
		style.Left:   "border-left",
		style.Right:  "border-right",
	} {
		if line, ok := borderCSS[st.Int(key)]; ok {
			d[prop] = line + " " + borderColor
		}
	}
	return d
}

// defaults picks, per property, the value carried by more than half of the
// styled cells.
func defaults(counts map[string]map[string]int, styledCells int) map[string]string {
	def := map[string]string{}
	for prop, values := range counts {
		best, bestCount := "", 0
		for v, n := range values {
			if n > bestCount || (n == bestCount && v < best) {
				best, bestCount = v, n
			}
		}
		if bestCount > styledCells/2 {
			def[prop] = best
		}
	}
	return def
}

// diff returns the CSS of d for the properties that differ from def.
func diff(d, def map[string]string) string {
	var b strings.Builder
	for _, prop := range cssProps {
		v, ok := d[prop]
		dv, hasDef := def[prop]
		switch {
		case ok && v != dv:
			fmt.Fprintf(&b, "%s:%s;", prop, v)
		case !ok && hasDef:
			if n, ok := neutral[prop]; ok {
				fmt.Fprintf(&b, "%s:%s;", prop, n)
			}
		}
	}
	return b.String()
}

func columnPx(c grid.Column) float64 {
	w := c.Width
	if w <= 0 {
		w = DefaultColumnWidth
	}
	return w*7 + 5
}

// Render writes the workbook as HTML: a <style> block followed by one
// <div class="sheet"> per sheet.
func Render(w io.Writer, wb *grid.Workbook) error {
	var builder strings.Builder

	// 1. Collect unique cell styles and count property values
	counts := map[string]map[string]int{}
	classes := map[string]string{} // style key -> class name
	var order []map[string]string  // declarations per class, in class order
	styledCells := 0

	for _, sheet := range wb.Sheets {
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				if cell == nil || cell.Covered {
					continue
				}
				styledCells++
				d := declarations(cell.Style)
				for prop, v := range d {
					if counts[prop] == nil {
						counts[prop] = map[string]int{}
					}
					counts[prop][v]++
				}
				key := cell.Style.Key()
				if _, exists := classes[key]; !exists {
					classes[key] = fmt.Sprintf("cellstyle%d", len(order)+1)
					order = append(order, d)
				}
			}
		}
	}

	// 2. Compute defaults
	def := defaults(counts, styledCells)

	// 3. Basic CSS
	builder.WriteString("<style>\n")
	builder.WriteString(".table { border-collapse: collapse; table-layout: fixed; margin-bottom: 2em; }\n")
	builder.WriteString(".table td { padding: 4px 8px; overflow:hidden;")
	for _, prop := range cssProps {
		v, ok := def[prop]
		if !ok {
			v, ok = neutral[prop]
		}
		if ok {
			fmt.Fprintf(&builder, " %s:%s;", prop, v)
		}
	}
	builder.WriteString(" }\n")
	builder.WriteString(".sheet { margin-bottom: 2em; }\n")

	// 4. Cell style classes, only properties that differ from the base rule
	for i, d := range order {
		if css := diff(d, def); css != "" {
			fmt.Fprintf(&builder, ".cellstyle%d { %s }\n", i+1, css)
		}
	}
	builder.WriteString("</style>\n")

	for _, sheet := range wb.Sheets {
		writeSheet(&builder, sheet, classes)
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func writeSheet(builder *strings.Builder, sheet *grid.SheetModel, classes map[string]string) {
	cols := sheet.ColCount()
	hidden := func(c int) bool {
		return c < len(sheet.Columns) && sheet.Columns[c].Hidden
	}

	totalPx := 0.0
	for c := 0; c < cols; c++ {
		if !hidden(c) {
			totalPx += columnPx(column(sheet, c))
		}
	}

	fmt.Fprintf(builder, "<div class=\"sheet\" id=\"%s\" data-name=\"%s\">\n",
		html.EscapeString(Anchor(sheet.Name)), html.EscapeString(sheet.Name))
	builder.WriteString("<div style=\"width:100%;overflow-x:auto;\">\n")
	fmt.Fprintf(builder, "<table class=\"table\" style=\"width:%.0fpx;\">\n", totalPx)
	builder.WriteString("  <colgroup>\n")
	for c := 0; c < cols; c++ {
		if hidden(c) {
			continue
		}
		fmt.Fprintf(builder, "    <col style=\"width:%.0fpx;\">\n", columnPx(column(sheet, c)))
	}
	builder.WriteString("  </colgroup>\n")

	section := ""
	for r, row := range sheet.Rows {
		want := "tbody"
		if r < sheet.FrozenRows {
			want = "thead"
		}
		if want != section {
			if section != "" {
				fmt.Fprintf(builder, "  </%s>\n", section)
			}
			fmt.Fprintf(builder, "  <%s>\n", want)
			section = want
		}

		builder.WriteString("  <tr>\n")
		for c := 0; c < cols; c++ {
			if hidden(c) {
				continue
			}
			var cell *grid.Cell
			if c < len(row.Cells) {
				cell = row.Cells[c]
			}
			if cell == nil {
				builder.WriteString("    <td></td>\n")
				continue
			}
			// Covered cells are drawn by their master's spans.
			if cell.Covered {
				continue
			}

			spanAttr := ""
			if cell.ColSpan > 1 {
				spanAttr += fmt.Sprintf(" colspan=\"%d\"", cell.ColSpan)
			}
			if cell.RowSpan > 1 {
				spanAttr += fmt.Sprintf(" rowspan=\"%d\"", cell.RowSpan)
			}

			escaped := html.EscapeString(cell.Text)
			escaped = strings.ReplaceAll(escaped, "\n", "<br>")
			if cell.Link != "" {
				escaped = fmt.Sprintf("<a href=\"#%s\">%s</a>", html.EscapeString(Anchor(cell.Link)), escaped)
			}
			fmt.Fprintf(builder, "    <td%s class=\"%s\">%s</td>\n",
				spanAttr, classes[cell.Style.Key()], escaped)
		}
		builder.WriteString("  </tr>\n")
	}
	if section != "" {
		fmt.Fprintf(builder, "  </%s>\n", section)
	}
	builder.WriteString("</table>\n</div>\n</div>\n")
}

func column(sheet *grid.SheetModel, c int) grid.Column {
	if c < len(sheet.Columns) {
		return sheet.Columns[c]
	}
	return grid.Column{}
}
