package profile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// Target is a normalized brand identifier.
type Target struct {
	// Brand is the identifier as the caller supplied it.
	Brand string
	// URL is the absolute page address to analyze.
	URL string
	// NameHint is set when Brand was a company name rather than an address.
	NameHint string
}

var (
	domainRe   = regexp.MustCompile(`(?i)^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]*[a-z0-9])?)*\.[a-z]{2,}(?::\d+)?(?:/\S*)?$`)
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9]+`)
	legalWords = map[string]bool{
		"inc": true, "llc": true, "ltd": true, "corp": true, "corporation": true,
		"co": true, "company": true, "gmbh": true, "plc": true, "limited": true,
	}
)

// NormalizeBrand turns a URL, bare domain or company name into a Target.
// URLs are validated and kept, domains get an https scheme, and company
// names become https://<slug>.com with the name kept as a hint.
func NormalizeBrand(raw string) (Target, error) {
	brand := strings.TrimSpace(raw)
	if brand == "" {
		return Target{}, fmt.Errorf("%w: empty brand identifier", types.ErrInvalidURL)
	}

	if strings.Contains(brand, "://") {
		req, err := types.NewRequest(brand)
		if err != nil {
			return Target{}, err
		}
		return Target{Brand: brand, URL: req.URLString()}, nil
	}

	if domainRe.MatchString(brand) {
		return Target{Brand: brand, URL: "https://" + brand}, nil
	}

	slug := companySlug(brand)
	if slug == "" {
		return Target{}, fmt.Errorf("%w: cannot derive a domain from %q", types.ErrInvalidURL, brand)
	}
	return Target{Brand: brand, URL: "https://" + slug + ".com", NameHint: brand}, nil
}

// companySlug lowercases name, drops legal-form suffixes and keeps only
// letters and digits.
func companySlug(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for len(words) > 1 && legalWords[strings.Trim(words[len(words)-1], ".,")] {
		words = words[:len(words)-1]
	}
	return nonSlugRe.ReplaceAllString(strings.Join(words, ""), "")
}
