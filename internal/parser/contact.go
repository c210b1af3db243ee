package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BrandLens/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\(?\d[\d\s().-]{8,}\d`)
)

var ignoredEmailParts = []string{"noreply", "no-reply", "donotreply", "example.com", "sentry", "wixpress"}

// Asset names such as logo@2x.png look like addresses.
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

const addressSelector = "address, [class*=address], [itemtype*=PostalAddress]"

// extractContact finds one email, phone number and postal address.
// Explicit mailto:/tel: links win over matches in the copy.
func extractContact(doc *goquery.Document) *types.ContactInfo {
	text := doc.Find("body").Text()
	c := &types.ContactInfo{}

	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		addr := strings.TrimPrefix(a.AttrOr("href", ""), "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if validEmail(addr) {
			c.Email = addr
			return false
		}
		return true
	})
	if c.Email == "" {
		for _, m := range emailRe.FindAllString(text, 20) {
			if validEmail(m) {
				c.Email = m
				break
			}
		}
	}

	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		num := strings.TrimPrefix(a.AttrOr("href", ""), "tel:")
		if validPhone(num) {
			c.Phone = strings.TrimSpace(num)
			return false
		}
		return true
	})
	if c.Phone == "" {
		for _, m := range phoneRe.FindAllString(text, 20) {
			if validPhone(m) {
				c.Phone = strings.TrimSpace(m)
				break
			}
		}
	}

	doc.Find(addressSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		addr := cleanText(sel.Text())
		if len(addr) > 10 && len(addr) <= 200 {
			c.Address = addr
			return false
		}
		return true
	})

	if c.Channels() == 0 {
		return nil
	}
	return c
}

func validEmail(addr string) bool {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !emailRe.MatchString(addr) {
		return false
	}
	for _, part := range ignoredEmailParts {
		if strings.Contains(addr, part) {
			return false
		}
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(addr, suffix) {
			return false
		}
	}
	return true
}

// validPhone accepts 10 to 15 digits that are not a placeholder such as
// 0000000000 or 1234567890.
func validPhone(raw string) bool {
	var digits []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}

	same, ascending := true, true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			same = false
		}
		if digits[i] != '0'+(digits[i-1]-'0'+1)%10 {
			ascending = false
		}
	}
	return !same && !ascending
}

type socialPattern struct {
	platform string
	re       *regexp.Regexp
}

var socialPatterns = []socialPattern{
	{"twitter", regexp.MustCompile(`(?i)(?:^|//|\.)(?:twitter|x)\.com/([A-Za-z0-9_]+)`)},
	{"facebook", regexp.MustCompile(`(?i)(?:^|//|\.)facebook\.com/([^/?#\s]+)`)},
	{"linkedin", regexp.MustCompile(`(?i)(?:^|//|\.)linkedin\.com/company/([^/?#\s]+)`)},
	{"instagram", regexp.MustCompile(`(?i)(?:^|//|\.)instagram\.com/([^/?#\s]+)`)},
	{"youtube", regexp.MustCompile(`(?i)(?:^|//|\.)youtube\.com/((?:c/|channel/|user/)?@?[^/?#\s]+)`)},
	{"tiktok", regexp.MustCompile(`(?i)(?:^|//|\.)tiktok\.com/(@[^/?#\s]+)`)},
}

// Path segments that are share widgets or site pages, not accounts.
var nonHandles = map[string]bool{
	"share": true, "sharer": true, "sharer.php": true, "intent": true, "home": true,
	"watch": true, "embed": true, "p": true, "reel": true, "login": true, "hashtag": true,
	"dialog": true, "plugins": true, "tr": true,
}

// extractSocialLinks maps platform to account handle for every recognized
// profile link. The first link per platform wins.
func extractSocialLinks(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		for _, sp := range socialPatterns {
			if _, done := out[sp.platform]; done {
				continue
			}
			m := sp.re.FindStringSubmatch(href)
			if m == nil || nonHandles[strings.ToLower(m[1])] {
				continue
			}
			out[sp.platform] = m[1]
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
