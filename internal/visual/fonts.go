package visual

import (
	"regexp"
	"strings"
)

// genericFamilies are CSS keywords and system stacks, not brand typefaces.
var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true, "fantasy": true,
	"system-ui": true, "ui-serif": true, "ui-sans-serif": true, "ui-monospace": true, "ui-rounded": true,
	"math": true, "emoji": true, "fangsong": true,
	"inherit": true, "initial": true, "unset": true, "revert": true, "revert-layer": true,
	"-apple-system": true, "blinkmacsystemfont": true, "apple color emoji": true,
	"segoe ui emoji": true, "segoe ui symbol": true, "noto color emoji": true,
}

// fontShorthandRe captures the family list of a font shorthand, which follows
// the last size (and optional line height).
var fontShorthandRe = regexp.MustCompile(`^(?:.*\s)?[\d.]+(?:px|em|rem|pt|%|vw|vh)(?:\s*/\s*[\w.%]+)?\s+(.+)$`)

// fontFamilies splits a font-family value into brand family names.
func fontFamilies(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "!important"))
		name = strings.Trim(name, `"' `)
		if name == "" || strings.HasPrefix(name, "var(") || genericFamilies[strings.ToLower(name)] {
			continue
		}
		out = append(out, name)
	}
	return out
}

// shorthandFamilies extracts the families from a font shorthand value.
func shorthandFamilies(value string) []string {
	m := fontShorthandRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return nil
	}
	return fontFamilies(m[1])
}

// fontSet keeps families in first-seen order, deduplicated case-insensitively.
type fontSet struct {
	limit int
	seen  map[string]bool
	names []string
}

func newFontSet(limit int) *fontSet {
	return &fontSet{limit: limit, seen: make(map[string]bool)}
}

func (f *fontSet) add(names ...string) {
	for _, n := range names {
		key := strings.ToLower(n)
		if f.seen[key] || len(f.names) >= f.limit {
			continue
		}
		f.seen[key] = true
		f.names = append(f.names, n)
	}
}

// Selectors whose fonts represent the brand's type, in preference order.
var headingFontWords = []string{"h1", "h2", "h3", "title", "heading", "header", "logo", "brand"}

func fontRank(selector string) int {
	sel := strings.ToLower(selector)
	for _, w := range headingFontWords {
		if strings.Contains(sel, w) {
			return 0
		}
	}
	for _, tok := range selectorTokenRe.Split(sel, -1) {
		if tok == "body" || tok == "html" || tok == ":root" {
			return 1
		}
	}
	return 2
}
