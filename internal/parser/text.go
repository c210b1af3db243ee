package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Nodes that never carry readable copy.
const noiseSelector = "script, style, noscript, svg, template, iframe"

// Page chrome removed when no main region is marked up.
const chromeSelector = "nav, header, footer, aside, [role=navigation], [role=banner], [role=contentinfo]"

var mainSelectors = []string{"main", "[role=main]", "article"}

var heroSelectors = []string{
	"[class*=hero]",
	"[class*=banner]",
	"[class*=jumbotron]",
	"header > div",
	"section:first-of-type",
}

var aboutSelectors = []string{
	"[class*=about]",
	"#about",
	"[id*=about-us]",
}

var featureSelectors = []string{
	"[class*=feature]",
	"[class*=service]",
	"[class*=benefit]",
}

const (
	featuresPerSelector = 5
	maxFeatures         = 12
	maxFeatureLength    = 200
	minSnippetLength    = 20
)

// mainRegion strips noise from doc and returns the node set holding the
// page's primary copy.
func mainRegion(doc *goquery.Document) *goquery.Selection {
	doc.Find(noiseSelector).Remove()

	for _, sel := range mainSelectors {
		region := doc.Find(sel)
		if region.Length() > 0 && cleanText(region.Text()) != "" {
			return region
		}
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	whole := body.Clone()
	body.Find(chromeSelector).Remove()
	if cleanText(body.Text()) == "" {
		// A page whose only copy sits in its chrome still has copy.
		return whole
	}
	return body
}

// firstSnippet returns the first element text over minSnippetLength found by
// the selectors, tried in order.
func firstSnippet(doc *goquery.Document, selectors []string, limit int) string {
	for _, s := range selectors {
		var found string
		doc.Find(s).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := cleanText(sel.Text())
			if len(text) > minSnippetLength {
				found = truncateRunes(text, limit)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func extractFeatures(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]bool)

	for _, s := range featureSelectors {
		taken := 0
		doc.Find(s).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := truncateRunes(cleanText(sel.Text()), maxFeatureLength)
			if len(text) <= minSnippetLength || seen[text] {
				return true
			}
			seen[text] = true
			out = append(out, text)
			taken++
			return taken < featuresPerSelector && len(out) < maxFeatures
		})
		if len(out) >= maxFeatures {
			break
		}
	}
	return out
}

// cleanText collapses all whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes caps s at limit runes. A non-positive limit disables the cap.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}
