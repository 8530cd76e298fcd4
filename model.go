// Package drilldown describes a book of hierarchically indexed report pages.
//
// The types here hold structure only. Presentation is left to the render
// package, which turns a Page into grid operations against any grid.Sink
// (a spreadsheet, an HTML page or a terminal preview).
package drilldown

import "fmt"

// Header is the top of a page.
type Header struct {
	Title       string // short summary of what is on the page
	Description string // how values are computed, etc.
}

// Navbar holds the navigation structure of the book.
type Navbar struct {
	Links       []string // top-level (horizontal) page names
	Breadcrumbs []string // drill path from the root page down to this page
}

// Page is a named node of the book. Name is unique within a book and used
// as the cross-reference target of links.
type Page struct {
	Name   string
	Parent string // name of the parent page; "" for top-level pages
	Header Header
	Navbar *Navbar
	Table  *Table
}

// NewPage returns a page without parent or navbar.
func NewPage(name string, header Header, table *Table) *Page {
	return &Page{Name: name, Header: header, Table: table}
}

// SetNavbar attaches the navbar after construction.
func (p *Page) SetNavbar(n *Navbar) {
	p.Navbar = n
}

func (p *Page) String() string {
	return fmt.Sprintf("Page(name=%s)", p.Name)
}

// Validate checks the page in isolation; references to other pages are
// checked by Book.Check.
func (p *Page) Validate() error {
	if p.Name == "" {
		return structural(p.Name, "name", ErrEmptyName, "")
	}
	if p.Table == nil {
		return structural(p.Name, "table", ErrNoTable, "")
	}
	return p.Table.Validate(p.Name)
}

// Book is an ordered collection of pages rendered in one session.
type Book struct {
	Pages []*Page
}

// Add appends pages in rendering order.
func (b *Book) Add(pages ...*Page) {
	b.Pages = append(b.Pages, pages...)
}

// Page returns the first page with the given name.
func (b *Book) Page(name string) (*Page, bool) {
	for _, p := range b.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Check validates the i-th page against the rest of the book: the page must
// be valid, its name must not be used by an earlier page, and its parent and
// navbar links must name pages of this book.
func (b *Book) Check(i int) error {
	p := b.Pages[i]
	if err := p.Validate(); err != nil {
		return err
	}
	for _, prev := range b.Pages[:i] {
		if prev.Name == p.Name {
			return structural(p.Name, "name", ErrDuplicatePage, "")
		}
	}
	if p.Parent != "" {
		if _, ok := b.Page(p.Parent); !ok {
			return structural(p.Name, "parent", ErrUnknownParent, "%q", p.Parent)
		}
	}
	if p.Navbar != nil {
		for _, link := range p.Navbar.Links {
			if _, ok := b.Page(link); !ok {
				return structural(p.Name, "navbar.links", ErrUnknownPage, "%q", link)
			}
		}
	}
	return nil
}
