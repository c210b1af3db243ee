package visual

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// colorTokenRe splits a CSS value into hex literals, rgb() calls and whole
// identifiers. Identifiers keep their hyphens and digits so that
// "--blue-600" or "gray-200" stay one token and never read as a keyword.
var colorTokenRe = regexp.MustCompile(`(?i)#[0-9a-f]{3,8}\b|rgba?\([^)]*\)|[a-z0-9_-]*[a-z][a-z0-9_-]*`)

// cssVarRe matches the custom-property name inside var(). A literal
// fallback such as var(--x, #fff) is kept.
var cssVarRe = regexp.MustCompile(`(?i)var\(\s*--[a-z0-9_-]+\s*,?`)

// Image references can contain color words ("red-arrow.png").
var cssURLRe = regexp.MustCompile(`(?i)url\([^)]*\)`)

// namedColors covers the basic CSS keywords brands actually use.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#FFFFFF",
	"red":     "#FF0000",
	"green":   "#008000",
	"blue":    "#0000FF",
	"yellow":  "#FFFF00",
	"orange":  "#FFA500",
	"purple":  "#800080",
	"pink":    "#FFC0CB",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"lime":    "#00FF00",
	"aqua":    "#00FFFF",
	"cyan":    "#00FFFF",
	"fuchsia": "#FF00FF",
	"magenta": "#FF00FF",
	"silver":  "#C0C0C0",
	"gray":    "#808080",
	"grey":    "#808080",
	"gold":    "#FFD700",
	"indigo":  "#4B0082",
	"crimson": "#DC143C",
	"coral":   "#FF7F50",
	"tomato":  "#FF6347",
}

// NormalizeColor converts a CSS color to uppercase #RRGGBB. It returns
// ok=false for unparseable and fully transparent values.
func NormalizeColor(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "!important")
	s = strings.TrimSpace(s)

	switch {
	case s == "" || s == "transparent" || s == "none" || s == "inherit" || s == "currentcolor":
		return "", false
	case strings.HasPrefix(s, "#"):
		return normalizeHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return normalizeRGB(s)
	default:
		hex, ok := namedColors[s]
		return hex, ok
	}
}

func normalizeHex(h string) (string, bool) {
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return "", false
		}
	}
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 4:
		if h[3] == '0' {
			return "", false
		}
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	case 8:
		if h[6:] == "00" {
			return "", false
		}
		h = h[:6]
	default:
		return "", false
	}
	return "#" + strings.ToUpper(h), true
}

// normalizeRGB handles rgb()/rgba() in both comma and space syntax, with
// integer or percentage channels.
func normalizeRGB(s string) (string, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return "", false
	}
	inner := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : end])
	parts := strings.Fields(inner)
	if len(parts) < 3 {
		return "", false
	}

	var ch [3]int
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i])
		if !ok {
			return "", false
		}
		ch[i] = v
	}
	if len(parts) >= 4 {
		alpha, ok := parseAlpha(parts[3])
		if !ok || alpha == 0 {
			return "", false
		}
	}
	return fmt.Sprintf("#%02X%02X%02X", ch[0], ch[1], ch[2]), true
}

func parseChannel(p string) (int, bool) {
	if strings.HasSuffix(p, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp(int(math.Round(f * 2.55))), true
	}
	f, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0, false
	}
	return clamp(int(math.Round(f))), true
}

func parseAlpha(p string) (float64, bool) {
	if strings.HasSuffix(p, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		return f / 100, err == nil
	}
	f, err := strconv.ParseFloat(p, 64)
	return f, err == nil
}

func clamp(v int) int {
	return max(0, min(255, v))
}

// IsPlaceholderColor reports near-white and near-black values, which are
// page defaults rather than brand colors.
func IsPlaceholderColor(hex string) bool {
	r, g, b, ok := channels(hex)
	if !ok {
		return true
	}
	nearWhite := r > 240 && g > 240 && b > 240
	nearBlack := r < 15 && g < 15 && b < 15
	return nearWhite || nearBlack
}

func channels(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

// colorsInValue returns every normalizable color literal in a CSS value,
// such as the parts of "1px solid #333" or a gradient.
func colorsInValue(value string) []string {
	var out []string
	value = cssURLRe.ReplaceAllString(value, "")
	value = cssVarRe.ReplaceAllString(value, "")
	for _, tok := range colorTokenRe.FindAllString(value, -1) {
		if hex, ok := NormalizeColor(tok); ok {
			out = append(out, hex)
		}
	}
	return out
}
