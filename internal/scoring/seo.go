package scoring

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// SEOAudit is an on-page SEO audit.
type SEOAudit struct {
	Score  int        `json:"score"` // 0-100
	Issues []SEOIssue `json:"issues,omitempty"`
}

// SEOIssue is a single finding.
type SEOIssue struct {
	Severity string `json:"severity"` // error, warning, info
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Messages lists the issue texts in order.
func (a *SEOAudit) Messages() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.Issues))
	for i, is := range a.Issues {
		out[i] = is.Message
	}
	return out
}

// AuditSEO scores on-page SEO from the parsed content. When doc is non-nil
// the raw markup is also checked for image alt text, viewport and robots.
func AuditSEO(content *types.StructuredContent, doc *types.Document) *SEOAudit {
	if content == nil {
		content = &types.StructuredContent{}
	}
	a := &SEOAudit{Score: 100}

	title := content.Title
	switch n := len([]rune(title)); {
	case n == 0:
		a.issue(20, "error", "title", "Missing title tag")
	case n > 60:
		a.issue(5, "warning", "title", fmt.Sprintf("Title too long (%d chars, max 60)", n))
	case n < 10:
		a.issue(5, "warning", "title", "Title too short")
	}

	switch n := len([]rune(content.MetaDescription)); {
	case n == 0:
		a.issue(15, "error", "description", "Missing meta description")
	case n > 160:
		a.issue(5, "warning", "description", fmt.Sprintf("Description too long (%d chars, max 160)", n))
	}

	if content.Canonical == "" {
		a.issue(5, "warning", "canonical", "Missing canonical URL")
	}

	switch h1 := len(content.HeadingTexts(1)); {
	case h1 == 0:
		a.issue(10, "error", "headings", "Missing H1 tag")
	case h1 > 1:
		a.issue(5, "warning", "headings", fmt.Sprintf("Multiple H1 tags (%d)", h1))
	}

	if content.OpenGraph["title"] == "" {
		a.issue(3, "info", "opengraph", "Missing og:title")
	}
	if content.OpenGraph["image"] == "" {
		a.issue(3, "info", "opengraph", "Missing og:image")
	}
	if len(content.StructuredData) == 0 {
		a.issue(5, "warning", "structured_data", "No structured data (JSON-LD or microdata)")
	}
	if content.Language == "" {
		a.issue(2, "info", "language", "Missing lang attribute")
	}

	if doc != nil {
		a.auditMarkup(doc)
	}

	a.Score = max(a.Score, 0)
	return a
}

func (a *SEOAudit) auditMarkup(doc *types.Document) {
	gq, err := doc.HTML()
	if err != nil {
		return
	}

	noAlt := 0
	gq.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if alt, ok := sel.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			noAlt++
		}
	})
	if noAlt > 0 {
		a.issue(min(noAlt*2, 10), "warning", "images", fmt.Sprintf("%d images without alt text", noAlt))
	}

	if robots := gq.Find(`meta[name="robots"]`).AttrOr("content", ""); strings.Contains(strings.ToLower(robots), "noindex") {
		a.issue(0, "warning", "robots", "Page is set to noindex")
	}

	if gq.Find(`meta[name="viewport"]`).Length() == 0 {
		a.issue(5, "warning", "mobile", "Missing viewport meta tag")
	}
}

func (a *SEOAudit) issue(penalty int, severity, category, msg string) {
	a.Score -= penalty
	a.Issues = append(a.Issues, SEOIssue{Severity: severity, Category: category, Message: msg})
}
