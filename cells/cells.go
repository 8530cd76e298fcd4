// Package cells provides ready-made drilldown cells whose background color
// is computed from their value.
package cells

import (
	"fmt"
	"math"

	"github.com/aerissecure/drilldown"
)

// DefaultFormat is the printf verb used to display numbers.
const DefaultFormat = "%.2f"

// Value is a number painted by a colormap according to its share of Max.
// An invalid Value is a null: it displays as "" and has no color.
type Value struct {
	Num    float64
	Valid  bool
	Max    float64  // 0 means 1
	Map    Colormap // zero means Viridis
	Format string   // "" means DefaultFormat
}

var _ drilldown.Cell = Value{}

// New returns a valid Value scaled against maxValue.
func New(num, maxValue float64) Value {
	return Value{Num: num, Valid: true, Max: maxValue}
}

// Null returns a Value without a number.
func Null() Value {
	return Value{}
}

// WithMap returns a copy of v painted with m.
func (v Value) WithMap(m Colormap) Value {
	v.Map = m
	return v
}

// WithFormat returns a copy of v displayed with the printf verb format.
func (v Value) WithFormat(format string) Value {
	v.Format = format
	return v
}

func (v Value) String() string {
	if !v.Valid || math.IsNaN(v.Num) {
		return ""
	}
	format := v.Format
	if format == "" {
		format = DefaultFormat
	}
	return fmt.Sprintf(format, v.Num)
}

// Color returns the colormap entry at Num/Max clamped below 1, so the
// maximum value takes the last color rather than wrapping around.
func (v Value) Color() string {
	if !v.Valid || math.IsNaN(v.Num) {
		return ""
	}
	limit := v.Max
	if limit == 0 {
		limit = 1
	}
	t := math.Max(0, math.Min(1-1e-9, v.Num/limit))
	return v.Map.Hex(t)
}

func (Value) Link() string { return "" }
