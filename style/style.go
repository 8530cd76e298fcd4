// Package style holds backend-neutral cell styles and the role configuration
// consumed by the renderer.
//
// A Style is a mapping of property name to value using the spreadsheet
// vocabulary below. Sinks translate the properties they understand and
// ignore the rest.
package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Property names understood by the bundled sinks.
const (
	FontName    = "font_name"
	FontSize    = "font_size"
	FontColor   = "font_color"
	Bold        = "bold"
	Italic      = "italic"
	Underline   = "underline"
	BgColor     = "bg_color"
	Align       = "align"  // left|center|right|justify
	VAlign      = "valign" // top|vcenter|bottom
	TextWrap    = "text_wrap"
	Top         = "top"    // border weight, see BorderThin etc.
	Bottom      = "bottom" // border weight
	Left        = "left"   // border weight
	Right       = "right"  // border weight
	BorderColor = "border_color"
)

// Border weights, numbered like the xlsx writers do.
const (
	BorderNone = iota
	BorderThin
	BorderMedium
	BorderDashed
	BorderDotted
	BorderThick
	BorderDouble
	BorderHair
)

// Style is a set of presentation properties. Treat it as immutable: Merge
// and With return new maps.
type Style map[string]any

// Merge returns a new Style with the properties of s overridden by each
// override in turn. Properties not mentioned by an override are kept.
func (s Style) Merge(overrides ...Style) Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// With returns a copy of s with one property set.
func (s Style) With(key string, value any) Style {
	return s.Merge(Style{key: value})
}

// Clone returns a copy of s.
func (s Style) Clone() Style {
	return s.Merge()
}

// Has reports whether the property is set.
func (s Style) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Key returns a canonical string for s. Two styles with equal resolved
// properties have equal keys, so sinks can use it to dedup registrations.
func (s Style) Key() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s=%v", k, s[k])
	}
	return b.String()
}

func (s Style) String() string {
	return "{" + s.Key() + "}"
}

// Bool returns the property as a bool; missing or unparsable values are false.
func (s Style) Bool(key string) bool {
	return cast.ToBool(s[key])
}

// Int returns the property as an int; missing or unparsable values are 0.
func (s Style) Int(key string) int {
	return cast.ToInt(s[key])
}

// Float returns the property as a float64; missing or unparsable values are 0.
func (s Style) Float(key string) float64 {
	return cast.ToFloat64(s[key])
}

// Str returns the property as a string; missing values are "".
func (s Style) Str(key string) string {
	if v, ok := s[key]; ok && v != nil {
		return cast.ToString(v)
	}
	return ""
}
