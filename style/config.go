package style

import (
	"fmt"
	"sort"
	"strings"
)

// Role names the base style of one kind of rendered cell.
type Role string

const (
	Title        Role = "title"
	Description  Role = "description"
	IndexHeader  Role = "index_header"
	ColumnHeader Role = "column_header"
	IndexCell    Role = "index_cell"
	BodyCell     Role = "body_cell"
	Link         Role = "link" // mixed into any cell that carries a link
)

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{Title, Description, IndexHeader, ColumnHeader, IndexCell, BodyCell, Link}
}

// DefaultGroupBorder is the border drawn between groups: a single thin line.
const DefaultGroupBorder = BorderThin

func defaults() map[Role]Style {
	return map[Role]Style{
		Title:        {FontSize: 24, Bold: true, Align: "left", TextWrap: false},
		Description:  {FontSize: 9, Align: "left", TextWrap: false},
		IndexHeader:  {FontSize: 11, Align: "left", TextWrap: false, Bold: true},
		ColumnHeader: {FontSize: 11, Align: "center", TextWrap: true, Bold: true},
		IndexCell:    {FontSize: 11, Align: "left", TextWrap: false, Bold: true},
		BodyCell:     {FontSize: 9, Align: "center"},
		Link:         {FontColor: "blue", Underline: true},
	}
}

// Config is the immutable set of base styles used for one rendering
// session. Build it once with DefaultConfig or NewConfig.
type Config struct {
	roles       map[Role]Style
	groupBorder int
}

// DefaultConfig returns the built-in styles.
func DefaultConfig() Config {
	return Config{roles: defaults(), groupBorder: DefaultGroupBorder}
}

// NewConfig merges overrides into the defaults, property by property.
// Unknown role names are rejected; unknown properties are passed through.
// A groupBorder <= 0 keeps DefaultGroupBorder.
func NewConfig(overrides map[string]Style, groupBorder int) (Config, error) {
	cfg := DefaultConfig()
	var unknown []string
	for name, o := range overrides {
		role := Role(name)
		base, ok := cfg.roles[role]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		cfg.roles[role] = base.Merge(o)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Config{}, fmt.Errorf("unknown style roles: %s", strings.Join(unknown, ", "))
	}
	if groupBorder > 0 {
		cfg.groupBorder = groupBorder
	}
	return cfg, nil
}

// Style returns a copy of the base style for role.
func (c Config) Style(role Role) Style {
	if c.roles == nil {
		return defaults()[role].Clone()
	}
	return c.roles[role].Clone()
}

// GroupBorder returns the border weight drawn at group boundaries.
func (c Config) GroupBorder() int {
	if c.groupBorder == 0 {
		return DefaultGroupBorder
	}
	return c.groupBorder
}

// Compose builds a cell style: the role's base style with at most three
// overrides applied. bgColor applies when non-empty, border holds border
// properties (may be nil), and link mixes in the link style.
func (c Config) Compose(role Role, bgColor string, border Style, link bool) Style {
	var overrides []Style
	if bgColor != "" {
		overrides = append(overrides, Style{BgColor: bgColor})
	}
	if len(border) > 0 {
		overrides = append(overrides, border)
	}
	if link {
		overrides = append(overrides, c.Style(Link))
	}
	return c.Style(role).Merge(overrides...)
}
