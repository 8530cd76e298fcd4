package xlsx

import (
	"strings"

	"github.com/unidoc/unioffice/schema/soo/dml"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/aerissecure/drilldown/style"
)

// at returns items[*idx], or nil when idx is unset or out of range.
func at[T any](items []*T, idx *uint32) *T {
	if idx == nil || int(*idx) >= len(items) {
		return nil
	}
	return items[*idx]
}

// themeColor resolves a 0-based theme color index to its RGB value. Tint
// is not applied.
func themeColor(wb *spreadsheet.Workbook, idx int) (string, bool) {
	themes := wb.Themes()
	if len(themes) == 0 || themes[0] == nil {
		return "", false
	}
	cs := themes[0].ThemeElements.ClrScheme
	scheme := []*dml.CT_Color{
		cs.Dk1, cs.Lt1, cs.Dk2, cs.Lt2,
		cs.Accent1, cs.Accent2, cs.Accent3, cs.Accent4, cs.Accent5, cs.Accent6,
		cs.Hlink, cs.FolHlink,
	}
	if idx < 0 || idx >= len(scheme) || scheme[idx] == nil {
		return "", false
	}
	switch clr := scheme[idx]; {
	case clr.SrgbClr != nil && clr.SrgbClr.ValAttr != "":
		return clr.SrgbClr.ValAttr, true
	case clr.SysClr != nil && clr.SysClr.LastClrAttr != nil:
		return *clr.SysClr.LastClrAttr, true
	}
	return "", false
}

// hexOf converts an ARGB or RGB color attribute to "#rrggbb".
func hexOf(rgb string) (string, bool) {
	hex, err := style.HexColor(rgb)
	return hex, err == nil
}

func isSet(props []*sml.CT_BooleanProperty) bool {
	return len(props) > 0 && (props[0].ValAttr == nil || *props[0].ValAttr)
}

var borderWeights = map[sml.ST_BorderStyle]int{}

func init() {
	for w, bs := range borderStyles {
		borderWeights[bs] = w
	}
}

// readStyle rebuilds the style properties of a cell style index. Only
// properties this package writes are recovered.
func readStyle(wb *spreadsheet.Workbook, styleID uint32) style.Style {
	x := wb.StyleSheet.X()
	if x.CellXfs == nil {
		return nil
	}
	xf := at(x.CellXfs.Xf, &styleID)
	if xf == nil {
		return nil
	}
	st := style.Style{}
	if x.Fonts != nil {
		readFont(st, at(x.Fonts.Font, xf.FontIdAttr))
	}
	if x.Fills != nil {
		readFill(st, wb, at(x.Fills.Fill, xf.FillIdAttr))
	}
	if x.Borders != nil {
		readBorder(st, at(x.Borders.Border, xf.BorderIdAttr))
	}
	if a := xf.Alignment; a != nil {
		switch h := a.HorizontalAttr.String(); h {
		case "left", "center", "right", "justify":
			st[style.Align] = h
		}
		switch a.VerticalAttr.String() {
		case "top":
			st[style.VAlign] = "top"
		case "center":
			st[style.VAlign] = "vcenter"
		case "bottom":
			st[style.VAlign] = "bottom"
		}
		if a.WrapTextAttr != nil && *a.WrapTextAttr {
			st[style.TextWrap] = true
		}
	}
	return st
}

func readFont(st style.Style, font *sml.CT_Font) {
	if font == nil {
		return
	}
	if len(font.Name) > 0 {
		st[style.FontName] = font.Name[0].ValAttr
	}
	if len(font.Sz) > 0 {
		st[style.FontSize] = font.Sz[0].ValAttr
	}
	if isSet(font.B) {
		st[style.Bold] = true
	}
	if isSet(font.I) {
		st[style.Italic] = true
	}
	if len(font.U) > 0 {
		st[style.Underline] = true
	}
	if len(font.Color) > 0 && font.Color[0].RgbAttr != nil {
		if hex, ok := hexOf(*font.Color[0].RgbAttr); ok {
			st[style.FontColor] = hex
		}
	}
}

func readFill(st style.Style, wb *spreadsheet.Workbook, fill *sml.CT_Fill) {
	if fill == nil || fill.PatternFill == nil || fill.PatternFill.FgColor == nil {
		return
	}
	fg := fill.PatternFill.FgColor
	if fg.RgbAttr != nil {
		if hex, ok := hexOf(*fg.RgbAttr); ok {
			st[style.BgColor] = hex
		}
	} else if fg.ThemeAttr != nil {
		if rgb, ok := themeColor(wb, int(*fg.ThemeAttr)); ok {
			if hex, ok := hexOf(rgb); ok {
				st[style.BgColor] = hex
			}
		}
	}
}

func readBorder(st style.Style, border *sml.CT_Border) {
	if border == nil {
		return
	}
	sides := []struct {
		key string
		pr  *sml.CT_BorderPr
	}{
		{style.Top, border.Top},
		{style.Bottom, border.Bottom},
		{style.Left, border.Left},
		{style.Right, border.Right},
	}
	for _, side := range sides {
		if side.pr == nil {
			continue
		}
		if w, ok := borderWeights[side.pr.StyleAttr]; ok {
			st[side.key] = w
		}
	}
}

// sheetOf extracts the sheet name from a hyperlink location such as
// "'My Sheet'!A1".
func sheetOf(location string) string {
	loc := strings.TrimPrefix(location, "#")
	if i := strings.LastIndex(loc, "!"); i >= 0 {
		loc = loc[:i]
	}
	if len(loc) >= 2 && strings.HasPrefix(loc, "'") && strings.HasSuffix(loc, "'") {
		loc = strings.ReplaceAll(loc[1:len(loc)-1], "''", "'")
	}
	return loc
}
