package visual

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// Match bases, strongest first.
const (
	BasisHeader   = "header"
	BasisDocument = "document"
)

const headerScope = "header, nav, [role=banner], #header, .header, .site-header"

type logoRule struct {
	name string
	find func(scope *goquery.Selection, base *url.URL) (*goquery.Selection, bool)
}

// logoCascade is tried per scope; the first rule that matches wins.
var logoCascade = []logoRule{
	{"img[logo]", findLogoImage},
	{`a[href="/"] img`, findHomeAnchorImage},
	{"svg[logo]", findLogoSVG},
}

// findLogo searches the page header first, then the whole document.
func findLogo(doc *goquery.Document, base *url.URL) *types.LogoCandidate {
	scopes := []struct {
		basis string
		sel   *goquery.Selection
	}{
		{BasisHeader, doc.Find(headerScope)},
		{BasisDocument, doc.Selection},
	}

	for _, scope := range scopes {
		if scope.sel.Length() == 0 {
			continue
		}
		for _, rule := range logoCascade {
			el, ok := rule.find(scope.sel, base)
			if !ok {
				continue
			}
			if c := logoCandidate(el, base); c != nil {
				c.Selector = rule.name
				c.Basis = scope.basis
				return c
			}
		}
	}
	return nil
}

func mentionsLogo(s *goquery.Selection, attrs ...string) bool {
	for _, a := range attrs {
		if strings.Contains(strings.ToLower(s.AttrOr(a, "")), "logo") {
			return true
		}
	}
	return false
}

func findLogoImage(scope *goquery.Selection, base *url.URL) (*goquery.Selection, bool) {
	var found *goquery.Selection
	scope.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if imageURL(img, base) == "" {
			return true
		}
		if mentionsLogo(img, "class", "id", "alt", "src", "data-src") ||
			mentionsLogo(img.Parent(), "class", "id") {
			found = img
			return false
		}
		return true
	})
	return found, found != nil
}

func findHomeAnchorImage(scope *goquery.Selection, base *url.URL) (*goquery.Selection, bool) {
	var found *goquery.Selection
	scope.Find("a[href] img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if isHomeLink(img.Closest("a").AttrOr("href", ""), base) && imageURL(img, base) != "" {
			found = img
			return false
		}
		return true
	})
	return found, found != nil
}

func findLogoSVG(scope *goquery.Selection, base *url.URL) (*goquery.Selection, bool) {
	var found *goquery.Selection
	scope.Find("svg").EachWithBreak(func(_ int, svg *goquery.Selection) bool {
		title := strings.ToLower(svg.Find("title").First().Text())
		if mentionsLogo(svg, "class", "id", "aria-label") ||
			mentionsLogo(svg.Parent(), "class", "id") ||
			strings.Contains(title, "logo") ||
			isHomeLink(svg.Closest("a").AttrOr("href", ""), base) {
			found = svg
			return false
		}
		return true
	})
	return found, found != nil
}

// isHomeLink reports whether href points at the site root.
func isHomeLink(href string, base *url.URL) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	r := base.ResolveReference(u)
	return strings.EqualFold(r.Hostname(), base.Hostname()) && (r.Path == "" || r.Path == "/") && r.RawQuery == ""
}

func logoCandidate(el *goquery.Selection, base *url.URL) *types.LogoCandidate {
	if goquery.NodeName(el) == "svg" {
		return &types.LogoCandidate{
			Alt:    cleanText(el.Find("title").First().Text()),
			Inline: true,
		}
	}
	u := imageURL(el, base)
	if u == "" {
		return nil
	}
	return &types.LogoCandidate{URL: u, Alt: cleanText(el.AttrOr("alt", ""))}
}

// imageURL resolves an image's source, honoring lazy-load attributes and
// the first srcset candidate. Inline data URIs are kept as they are.
func imageURL(img *goquery.Selection, base *url.URL) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src", "srcset"} {
		v := strings.TrimSpace(img.AttrOr(attr, ""))
		if attr == "srcset" && v != "" {
			fields := strings.Fields(strings.Split(v, ",")[0])
			if len(fields) == 0 {
				continue
			}
			v = fields[0]
		}
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "data:image/") {
			return v
		}
		if strings.HasPrefix(v, "data:") {
			continue
		}
		ref, err := url.Parse(v)
		if err != nil {
			continue
		}
		r := base.ResolveReference(ref)
		if r.Scheme == "http" || r.Scheme == "https" {
			return r.String()
		}
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
