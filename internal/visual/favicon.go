package visual

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

var faviconSelectors = []string{
	`link[rel~="icon"]`,
	`link[rel="apple-touch-icon"]`,
	`link[rel="apple-touch-icon-precomposed"]`,
	`link[rel="mask-icon"]`,
}

// findFavicon returns the declared icon, else the conventional /favicon.ico.
// The fallback is not checked over the network.
func findFavicon(doc *goquery.Document, base *url.URL) string {
	for _, s := range faviconSelectors {
		href := doc.Find(s).First().AttrOr("href", "")
		if href == "" {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		if r := base.ResolveReference(ref); r.Scheme == "http" || r.Scheme == "https" {
			return r.String()
		}
	}
	return (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}).String()
}
