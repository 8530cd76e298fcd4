package cells

import (
	"fmt"
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// lutSize is the number of discrete colors a colormap resolves to. Values
// are snapped to one of them before interpolation, as plotting libraries do.
const lutSize = 256

// Colormap maps [0, 1] to a color by interpolating evenly spaced stops in
// RGB space.
type Colormap struct {
	name  string
	stops []colorful.Color
}

// NewColormap builds a colormap from two or more "#rrggbb" stops.
func NewColormap(name string, hexes ...string) (Colormap, error) {
	if len(hexes) < 2 {
		return Colormap{}, fmt.Errorf("colormap %s: need at least 2 stops, got %d", name, len(hexes))
	}
	m := Colormap{name: name, stops: make([]colorful.Color, len(hexes))}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Colormap{}, fmt.Errorf("colormap %s: stop %d: %w", name, i, err)
		}
		m.stops[i] = c
	}
	return m, nil
}

func mustColormap(name string, hexes ...string) Colormap {
	m, err := NewColormap(name, hexes...)
	if err != nil {
		panic(err)
	}
	return m
}

// Built-in colormaps.
var (
	Viridis = mustColormap("viridis",
		"#440154", "#482576", "#414487", "#35608d", "#2a788e", "#21908c",
		"#22a884", "#43bf71", "#7ad151", "#bbdf27", "#fde725")
	RdYlGn = mustColormap("rdylgn",
		"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
		"#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837")
	Greys = mustColormap("greys",
		"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373",
		"#525252", "#252525", "#000000")
	Blues = mustColormap("blues",
		"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6",
		"#2171b5", "#08519c", "#08306b")
)

var builtin = map[string]Colormap{
	Viridis.name: Viridis,
	RdYlGn.name:  RdYlGn,
	Greys.name:   Greys,
	Blues.name:   Blues,
}

// ByName looks up a built-in colormap, ignoring case.
func ByName(name string) (Colormap, bool) {
	m, ok := builtin[strings.ToLower(name)]
	return m, ok
}

// Names lists the built-in colormaps.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m Colormap) Name() string { return m.name }

// IsZero reports whether m has no stops.
func (m Colormap) IsZero() bool { return len(m.stops) == 0 }

// At returns the color at t. t is clamped to [0, 1].
func (m Colormap) At(t float64) colorful.Color {
	if m.IsZero() {
		return Viridis.At(t)
	}
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	idx := int(t * lutSize)
	if idx >= lutSize {
		idx = lutSize - 1
	}
	pos := float64(idx) / (lutSize - 1) * float64(len(m.stops)-1)
	i := int(pos)
	if i >= len(m.stops)-1 {
		return m.stops[len(m.stops)-1]
	}
	return m.stops[i].BlendRgb(m.stops[i+1], pos-float64(i))
}

// Hex returns the "#rrggbb" color at t.
func (m Colormap) Hex(t float64) string {
	return m.At(t).Hex()
}

func (m Colormap) String() string {
	return fmt.Sprintf("Colormap(%s, %d stops)", m.name, len(m.stops))
}
