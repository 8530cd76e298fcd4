package style

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// namedColors are the color names accepted in place of "#rrggbb".
var namedColors = map[string]string{
	"black":   "#000000",
	"blue":    "#0000ff",
	"brown":   "#800000",
	"cyan":    "#00ffff",
	"gray":    "#808080",
	"green":   "#008000",
	"lime":    "#00ff00",
	"magenta": "#ff00ff",
	"navy":    "#000080",
	"orange":  "#ff6600",
	"pink":    "#ff00ff",
	"purple":  "#800080",
	"red":     "#ff0000",
	"silver":  "#c0c0c0",
	"white":   "#ffffff",
	"yellow":  "#ffff00",
}

// ParseColor parses a color name, "#rgb", "#rrggbb" or an 8-digit ARGB
// string as stored in spreadsheet files.
func ParseColor(s string) (colorful.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[v]; ok {
		v = hex
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 8 {
		v = v[2:]
	}
	if len(v) != 3 && len(v) != 6 {
		return colorful.Color{}, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex("#" + v)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}

// HexColor normalizes s to "#rrggbb".
func HexColor(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Color returns the property as a parsed color. ok is false when the
// property is unset or empty.
func (s Style) Color(key string) (c colorful.Color, ok bool, err error) {
	v := s.Str(key)
	if v == "" {
		return colorful.Color{}, false, nil
	}
	c, err = ParseColor(v)
	if err != nil {
		return colorful.Color{}, false, fmt.Errorf("%s: %w", key, err)
	}
	return c, true, nil
}
