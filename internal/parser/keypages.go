package parser

import (
	"net/url"
	"path"
	"strings"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// Key page kinds.
const (
	PageAbout    = "about"
	PageProducts = "products"
	PageNews     = "news"
	PageContact  = "contact"
	PageCareers  = "careers"
)

// keyPagePatterns are matched against the lowercased link path, kind by kind.
var keyPagePatterns = []struct {
	kind     string
	patterns []string
}{
	{PageAbout, []string{"about", "company", "who-we-are", "our-story"}},
	{PageProducts, []string{"products", "services", "solutions"}},
	{PageNews, []string{"news", "blog", "press", "updates", "media"}},
	{PageContact, []string{"contact", "reach-us", "get-in-touch"}},
	{PageCareers, []string{"careers", "jobs", "work-with-us", "join-us"}},
}

var nonPageExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".zip": true, ".mp4": true, ".xml": true,
}

// KeyPageLink is a follow-up page candidate.
type KeyPageLink struct {
	URL  string
	Kind string
}

// FindKeyPages picks same-site key pages among the first scan links, in link
// order, and returns at most limit of them. The homepage itself is never
// picked and each URL appears once.
func FindKeyPages(homeURL string, links []string, scan, limit int) []KeyPageLink {
	home, err := url.Parse(homeURL)
	if err != nil || home.Hostname() == "" || limit <= 0 {
		return nil
	}
	if scan > 0 && len(links) > scan {
		links = links[:scan]
	}

	seen := map[string]bool{pageKey(home): true}
	var out []KeyPageLink
	for _, raw := range links {
		u, err := url.Parse(raw)
		if err != nil || !sameSite(home, u) {
			continue
		}
		key := pageKey(u)
		if seen[key] {
			continue
		}
		p := strings.ToLower(u.Path)
		if nonPageExtensions[path.Ext(p)] {
			continue
		}
		if kind := keyPageKind(p); kind != "" {
			seen[key] = true
			out = append(out, KeyPageLink{URL: raw, Kind: kind})
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

func keyPageKind(p string) string {
	for _, k := range keyPagePatterns {
		for _, pat := range k.patterns {
			if strings.Contains(p, pat) {
				return k.kind
			}
		}
	}
	return ""
}

func sameSite(home, u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") ==
		strings.TrimPrefix(strings.ToLower(home.Hostname()), "www.")
}

func pageKey(u *url.URL) string {
	p := strings.TrimSuffix(u.Path, "/")
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") + p + "?" + u.RawQuery
}

// MergeKeyPage folds what a key page found into the homepage content. It
// only fills empty fields and grows lists, so nothing the homepage had is
// lost. About text comes from about pages and features from about and
// products pages; contact channels and social links come from any kind.
func MergeKeyPage(home *types.StructuredContent, kind string, page *types.StructuredContent) {
	if home == nil || page == nil {
		return
	}

	if home.AboutText == "" && kind == PageAbout {
		about := page.AboutText
		if about == "" && len(page.MainText) > minSnippetLength {
			about = truncateRunes(page.MainText, 500)
		}
		home.AboutText = about
	}

	if kind == PageAbout || kind == PageProducts {
		seen := make(map[string]bool, len(home.Features))
		for _, f := range home.Features {
			seen[f] = true
		}
		for _, f := range page.Features {
			if len(home.Features) >= maxFeatures {
				break
			}
			if !seen[f] {
				seen[f] = true
				home.Features = append(home.Features, f)
			}
		}
	}

	if page.Contact != nil {
		if home.Contact == nil {
			home.Contact = &types.ContactInfo{}
		}
		if home.Contact.Email == "" {
			home.Contact.Email = page.Contact.Email
		}
		if home.Contact.Phone == "" {
			home.Contact.Phone = page.Contact.Phone
		}
		if home.Contact.Address == "" {
			home.Contact.Address = page.Contact.Address
		}
		if home.Contact.Channels() == 0 {
			home.Contact = nil
		}
	}

	for platform, handle := range page.SocialLinks {
		if home.SocialLinks == nil {
			home.SocialLinks = make(map[string]string)
		}
		if _, ok := home.SocialLinks[platform]; !ok {
			home.SocialLinks[platform] = handle
		}
	}
}
