package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Parser turns a fetched document into StructuredContent.
// It holds no per-document state and is safe for concurrent use.
type Parser struct {
	cfg      config.ParserConfig
	markdown *markdownRenderer
	logger   *slog.Logger
}

// New creates a content parser.
func New(cfg config.ParserConfig, logger *slog.Logger) *Parser {
	return &Parser{
		cfg:      cfg,
		markdown: newMarkdownRenderer(),
		logger:   logger.With("component", "content_parser"),
	}
}

// Parse extracts everything the parser knows how to find. Missing fields are
// left empty. The only error is ErrNoContentExtracted, returned together with
// the partial content when the page has no usable main text.
func (p *Parser) Parse(doc *types.Document) (*types.StructuredContent, error) {
	// Main-text extraction strips nodes, so the parser works on its own tree
	// and the document's cached one stays intact for the visual extractor.
	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", types.ErrNoContentExtracted, err)
	}
	base := doc.BaseURL()

	content := &types.StructuredContent{
		Title:           cleanText(root.Find("title").First().Text()),
		MetaDescription: metaContent(root, "description"),
		MetaKeywords:    splitKeywords(metaContent(root, "keywords")),
		Headings:        extractHeadings(root),
		Canonical:       resolveAttr(root.Find(`link[rel="canonical"]`).First(), "href", base),
		Language:        strings.TrimSpace(root.Find("html").AttrOr("lang", "")),
		ManifestURL:     resolveAttr(root.Find(`link[rel="manifest"]`).First(), "href", base),
	}

	content.StructuredData = extractStructuredData(root)
	content.OpenGraph = extractOpenGraph(root)
	content.SiteName = content.OpenGraph["site_name"]

	// Links, navigation and contact details are read before chrome is
	// stripped for the main text.
	content.Links = extractLinks(root, base, p.cfg.MaxLinks)
	content.Images = extractImages(root, base, p.cfg.MaxImages)
	content.Navigation = p.extractNavigation(root, doc.Body)
	content.SocialLinks = extractSocialLinks(root)
	content.Contact = extractContact(root)

	content.HeroText = firstSnippet(root, heroSelectors, 300)
	content.AboutText = firstSnippet(root, aboutSelectors, 500)
	content.Features = extractFeatures(root)

	main := mainRegion(root)
	content.MainText = truncateRunes(cleanText(main.Text()), p.cfg.MaxTextLength)
	if html, err := goquery.OuterHtml(main); err == nil {
		content.Markdown = truncateRunes(p.markdown.render(html, base), p.cfg.MaxTextLength)
	}

	content.Industry, content.IndustryScore = ClassifyIndustry(content.Title, content.MetaDescription, content.MainText)

	p.logger.Debug("document parsed",
		"url", base,
		"title", content.Title,
		"headings", len(content.Headings),
		"text_length", len([]rune(content.MainText)),
		"links", len(content.Links),
		"structured_blocks", len(content.StructuredData),
		"industry", content.Industry,
	)

	if content.MainText == "" {
		return content, types.ErrNoContentExtracted
	}
	return content, nil
}

func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(`meta[name="` + name + `"]`).First()
	if sel.Length() == 0 {
		sel = doc.Find(`meta[name="` + strings.ToUpper(name[:1]) + name[1:] + `"]`).First()
	}
	return cleanText(sel.AttrOr("content", ""))
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// extractHeadings returns H1-H3 in document order.
func extractHeadings(doc *goquery.Document) []types.Heading {
	var out []types.Heading
	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if text == "" {
			return
		}
		level := int(goquery.NodeName(sel)[1] - '0')
		out = append(out, types.Heading{Level: level, Text: text})
	})
	return out
}
