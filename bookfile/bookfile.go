// Package bookfile loads drilldown books from YAML.
//
//	pages:
//	  - name: summary
//	    title: All regions
//	    navbar: {links: [summary, hosts]}
//	    table:
//	      index: [region]
//	      columns: [hosts, risk]
//	      group_level: 0
//	      rows:
//	        - index: [{text: east, link: east}]
//	          values: [12, {value: 0.7, max: 1, cmap: RdYlGn}]
//
// A cell is null, a scalar (shown as text), or a mapping: {text, color,
// link} for plain, colored or linked text, {value, max, cmap, format} for
// a number painted by a colormap.
package bookfile

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/aerissecure/drilldown"
	"github.com/aerissecure/drilldown/cells"
	"github.com/aerissecure/drilldown/style"
)

// ErrCell reports a cell that cannot be decoded.
var ErrCell = errors.New("invalid cell")

type bookDoc struct {
	Pages []pageDoc `yaml:"pages"`
}

type pageDoc struct {
	Name        string     `yaml:"name"`
	Parent      string     `yaml:"parent"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Navbar      *navbarDoc `yaml:"navbar"`
	Table       *tableDoc  `yaml:"table"`
}

type navbarDoc struct {
	Links       []string `yaml:"links"`
	Breadcrumbs []string `yaml:"breadcrumbs"`
}

type tableDoc struct {
	Index         []string  `yaml:"index"`
	Columns       []string  `yaml:"columns"`
	GroupLevel    *int      `yaml:"group_level"`
	ColumnWidths  []float64 `yaml:"column_widths"`
	HiddenColumns []int     `yaml:"hidden_columns"`
	Rows          []rowDoc  `yaml:"rows"`
}

type rowDoc struct {
	Index  []any `yaml:"index"`
	Values []any `yaml:"values"`
}

// cellSpec is the mapping form of a cell.
type cellSpec struct {
	Text   string   `mapstructure:"text"`
	Color  string   `mapstructure:"color"`
	Link   string   `mapstructure:"link"`
	Value  *float64 `mapstructure:"value"`
	Max    float64  `mapstructure:"max"`
	Cmap   string   `mapstructure:"cmap"`
	Format string   `mapstructure:"format"`
}

// Load reads and parses the book file at path on fs.
func Load(fs afero.Fs, path string) (*drilldown.Book, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read book: %w", err)
	}
	book, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return book, nil
}

// Parse decodes a YAML book. It checks the encoding only; structural rules
// are enforced when the book is rendered.
func Parse(data []byte) (*drilldown.Book, error) {
	var doc bookDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse book: %w", err)
	}

	book := &drilldown.Book{}
	for i, pd := range doc.Pages {
		page, err := pd.page()
		if err != nil {
			name := pd.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
		book.Add(page)
	}
	return book, nil
}

func (pd pageDoc) page() (*drilldown.Page, error) {
	page := drilldown.NewPage(pd.Name, drilldown.Header{Title: pd.Title, Description: pd.Description}, nil)
	page.Parent = pd.Parent
	if pd.Navbar != nil {
		page.SetNavbar(&drilldown.Navbar{Links: pd.Navbar.Links, Breadcrumbs: pd.Navbar.Breadcrumbs})
	}
	if pd.Table == nil {
		return page, nil
	}

	td := pd.Table
	t := drilldown.NewTable(td.Index, td.Columns)
	if td.GroupLevel != nil {
		t.GroupLevel = *td.GroupLevel
	}
	t.ColumnWidths = td.ColumnWidths
	t.HiddenColumns = td.HiddenColumns

	for r, rd := range td.Rows {
		index, err := decodeCells(rd.Index)
		if err != nil {
			return nil, fmt.Errorf("row %d index: %w", r, err)
		}
		values, err := decodeCells(rd.Values)
		if err != nil {
			return nil, fmt.Errorf("row %d values: %w", r, err)
		}
		t.AddRow(index, values...)
	}
	page.Table = t
	return page, nil
}

func decodeCells(raw []any) ([]drilldown.Cell, error) {
	out := make([]drilldown.Cell, len(raw))
	for i, v := range raw {
		c, err := DecodeCell(v)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// DecodeCell converts one decoded YAML value into a cell. nil stays a null
// cell.
func DecodeCell(v any) (drilldown.Cell, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return decodeMapping(v)
	case []any:
		return nil, fmt.Errorf("%w: sequences are not cells", ErrCell)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCell, err)
		}
		return drilldown.Text(s), nil
	}
}

func decodeMapping(m map[string]any) (drilldown.Cell, error) {
	var spec cellSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCell, err)
	}

	_, numeric := m["value"]
	switch {
	case numeric && (spec.Text != "" || spec.Color != "" || spec.Link != ""):
		return nil, fmt.Errorf("%w: value cells take only value, max, cmap and format", ErrCell)
	case numeric:
		return spec.number()
	case spec.Link != "" && spec.Color != "":
		return nil, fmt.Errorf("%w: a cell cannot both link and set a color", ErrCell)
	case spec.Link != "":
		return drilldown.PageLink{Text: spec.Text, Page: spec.Link}, nil
	case spec.Color != "":
		hex, err := style.HexColor(spec.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCell, err)
		}
		return drilldown.ColorText{Text: spec.Text, Hex: hex}, nil
	default:
		return drilldown.Text(spec.Text), nil
	}
}

func (spec cellSpec) number() (drilldown.Cell, error) {
	v := cells.Null()
	if spec.Value != nil {
		v = cells.New(*spec.Value, spec.Max)
	}
	v.Max = spec.Max
	if spec.Cmap != "" {
		m, ok := cells.ByName(spec.Cmap)
		if !ok {
			return nil, fmt.Errorf("%w: unknown colormap %q (have %v)", ErrCell, spec.Cmap, cells.Names())
		}
		v = v.WithMap(m)
	}
	if spec.Format != "" {
		v = v.WithFormat(spec.Format)
	}
	return v, nil
}
