package parser

import (
	"net"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// titleSuffixRe matches trailing decorations such as " | Home" or
// " - Official Site".
var titleSuffixRe = regexp.MustCompile(`(?i)\s*[|\-–—:·]\s*(home|homepage|home page|official site|official website|welcome|main page)\s*$`)

// titleSeparators split a title into a brand part and a tagline part.
var titleSeparators = []string{" | ", " - ", " – ", " — ", " · ", ": "}

// GuessBrandName derives a display name for the brand behind a page.
// Sources in order: JSON-LD Organization name, og:site_name, a short title,
// a short H1, then the domain label.
func GuessBrandName(content *types.StructuredContent, domain string) string {
	if content != nil {
		for _, b := range content.StructuredData {
			if b.Type != BlockJSONLD || !IsOrganizationBlock(b) {
				continue
			}
			if name, ok := b.Data["name"].(string); ok && cleanText(name) != "" {
				return cleanText(name)
			}
		}

		if content.SiteName != "" {
			return content.SiteName
		}

		if title := brandFromTitle(content.Title); title != "" {
			return title
		}

		for _, h1 := range content.HeadingTexts(1) {
			if n := len([]rune(h1)); n >= 5 && n <= 30 {
				return h1
			}
		}
	}
	return brandFromDomain(domain)
}

func brandFromTitle(title string) string {
	title = titleSuffixRe.ReplaceAllString(cleanText(title), "")
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) >= 50 {
		return ""
	}
	return title
}

// brandFromDomain title-cases the registrable label of a host name.
func brandFromDomain(domain string) string {
	host := strings.TrimPrefix(strings.ToLower(domain), "www.")
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && net.ParseIP(host) == nil {
		host = site
	}
	label := host
	if i := strings.IndexByte(host, '.'); i > 0 {
		label = host[:i]
	}
	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// BrandTokens returns the lowercase alphanumeric words of a name, used to
// check that a title agrees with a host name or site name.
func BrandTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
