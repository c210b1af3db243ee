package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var skippedSchemes = []string{"#", "javascript:", "mailto:", "tel:", "data:"}

// extractLinks finds <a href> links, resolved to absolute http(s) URLs
// without fragments, deduplicated in document order.
func extractLinks(doc *goquery.Document, baseURL string, limit int) []string {
	return collectURLs(doc.Find("a[href]"), baseURL, limit, "href")
}

// extractImages finds image sources, honoring lazy-load attributes.
func extractImages(doc *goquery.Document, baseURL string, limit int) []string {
	return collectURLs(doc.Find("img"), baseURL, limit, "src", "data-src", "data-lazy-src", "srcset")
}

func collectURLs(sel *goquery.Selection, baseURL string, limit int, attrs ...string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string

	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := firstAttr(s, attrs...)
		if abs := resolveURL(base, raw); abs != "" && !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
		return limit <= 0 || len(out) < limit
	})
	return out
}

// firstAttr returns the first non-empty attribute among attrs. A srcset
// contributes its first candidate URL.
func firstAttr(s *goquery.Selection, attrs ...string) string {
	for _, a := range attrs {
		v := strings.TrimSpace(s.AttrOr(a, ""))
		if v == "" {
			continue
		}
		if a == "srcset" {
			fields := strings.Fields(strings.Split(v, ",")[0])
			if len(fields) == 0 {
				continue
			}
			v = fields[0]
		}
		return v
	}
	return ""
}

// resolveURL resolves href against base and returns "" for anything that is
// not a followable http(s) URL.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	for _, p := range skippedSchemes {
		if strings.HasPrefix(lower, p) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// resolveAttr resolves one attribute of the first element in sel.
func resolveAttr(sel *goquery.Selection, attr, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return resolveURL(base, sel.AttrOr(attr, ""))
}
