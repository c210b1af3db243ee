package visual

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// declaration is one CSS property assignment with the selector it applies to.
type declaration struct {
	selector string
	property string
	value    string
}

// salientWords mark selectors likely to carry brand styling.
var salientWords = []string{"brand", "primary", "logo", "color", "accent", "header", "nav", "btn", "button", "cta", "hero"}

var selectorTokenRe = regexp.MustCompile(`[\s,>+~]+`)

func isSalientSelector(sel string) bool {
	sel = strings.ToLower(sel)
	for _, w := range salientWords {
		if strings.Contains(sel, w) {
			return true
		}
	}
	for _, tok := range selectorTokenRe.Split(sel, -1) {
		if i := strings.IndexAny(tok, ".#:["); i >= 0 {
			tok = tok[:i]
		}
		if tok == "a" {
			return true
		}
	}
	return false
}

// cssDeclarations returns every declaration from <style> blocks and inline
// style attributes in document order. Unparseable stylesheets are skipped.
func (e *Extractor) cssDeclarations(doc *goquery.Document) []declaration {
	var out []declaration

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		sheet, err := parser.Parse(s.Text())
		if err != nil {
			e.logger.Debug("skip unparseable stylesheet", "error", err)
			return
		}
		out = appendRules(out, sheet.Rules)
	})

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		decls, err := parser.ParseDeclarations(s.AttrOr("style", ""))
		if err != nil {
			return
		}
		sel := describeElement(s)
		for _, d := range decls {
			out = append(out, declaration{selector: sel, property: strings.ToLower(d.Property), value: d.Value})
		}
	})

	return out
}

// appendRules flattens qualified rules, descending into @media and
// @supports blocks.
func appendRules(out []declaration, rules []*css.Rule) []declaration {
	for _, r := range rules {
		if r.Kind == css.AtRule {
			out = appendRules(out, r.Rules)
			continue
		}
		sel := strings.Join(r.Selectors, ", ")
		for _, d := range r.Declarations {
			out = append(out, declaration{selector: sel, property: strings.ToLower(d.Property), value: d.Value})
		}
	}
	return out
}

// describeElement renders an element as a simple selector, e.g. div.logo#main.
func describeElement(s *goquery.Selection) string {
	var b strings.Builder
	b.WriteString(goquery.NodeName(s))
	if id := s.AttrOr("id", ""); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range strings.Fields(s.AttrOr("class", "")) {
		b.WriteString("." + c)
	}
	return b.String()
}

func isColorProperty(prop string) bool {
	switch prop {
	case "color", "background", "background-color", "background-image",
		"border", "border-color", "border-top", "border-bottom", "border-top-color", "border-bottom-color",
		"outline-color", "fill", "stroke", "accent-color", "caret-color", "text-decoration-color":
		return true
	}
	return isBrandVariable(prop)
}

// isBrandVariable matches custom properties such as --brand-primary.
func isBrandVariable(prop string) bool {
	if !strings.HasPrefix(prop, "--") {
		return false
	}
	for _, w := range []string{"brand", "primary", "secondary", "accent", "color", "theme"} {
		if strings.Contains(prop, w) {
			return true
		}
	}
	return false
}

// salientFirst stably orders declarations so that those on salient selectors
// (or brand custom properties) come first.
func salientFirst(decls []declaration) []declaration {
	out := make([]declaration, len(decls))
	copy(out, decls)
	sort.SliceStable(out, func(i, j int) bool {
		return salientRank(out[i]) < salientRank(out[j])
	})
	return out
}

func salientRank(d declaration) int {
	if isSalientSelector(d.selector) || isBrandVariable(d.property) {
		return 0
	}
	return 1
}
