package drilldown

// Cell is one table entry: index values and body values are both Cells.
//
// String must be deterministic. Color and Link return "" when absent. Color
// is a backend-neutral "#rrggbb" hex string; Link is the name of another
// page in the same book.
//
// A nil Cell is a null value: it renders as an empty, default-styled cell.
type Cell interface {
	String() string
	Color() string
	Link() string
}

// Text is a plain cell without color or link.
type Text string

func (t Text) String() string { return string(t) }
func (Text) Color() string { return "" }
func (Text) Link() string { return "" }

// PageLink is a cell that navigates to another page of the book.
type PageLink struct {
	Text string
	Page string
}

func (l PageLink) String() string { return l.Text }
func (PageLink) Color() string { return "" }
func (l PageLink) Link() string { return l.Page }

// ColorText is a text cell painted with a fixed background color.
type ColorText struct {
	Text string
	Hex  string
}

func (c ColorText) String() string { return c.Text }
func (c ColorText) Color() string { return c.Hex }
func (ColorText) Link() string { return "" }

// Display returns the display string of c; nil cells display as "".
func Display(c Cell) string {
	if c == nil {
		return ""
	}
	return c.String()
}

// Equal reports whether a and b display the same string. Index values are
// compared this way when collapsing repeated values into merged spans.
func Equal(a, b Cell) bool {
	return Display(a) == Display(b)
}
