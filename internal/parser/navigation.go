package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

var navSelectors = []string{
	"nav",
	"[role=navigation]",
	".navigation",
	"#navigation",
	".navbar",
	".menu",
	"#menu",
}

// navXPath catches menus built from lists in the page header when no
// navigation landmark exists.
const navXPath = `//header//ul/li/a | //*[contains(@class,"header")]//ul/li/a`

// extractNavigation returns the visible labels of navigation links.
func (p *Parser) extractNavigation(doc *goquery.Document, body []byte) []string {
	limit := p.cfg.MaxNavItems
	c := newLabelCollector(limit)

	for _, s := range navSelectors {
		doc.Find(s).Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			return c.add(a.Text())
		})
		if c.full() {
			break
		}
	}

	if len(c.items) == 0 {
		p.navigationByXPath(body, c)
	}
	return c.items
}

func (p *Parser) navigationByXPath(body []byte, c *labelCollector) {
	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return
	}
	nodes, err := htmlquery.QueryAll(root, navXPath)
	if err != nil {
		p.logger.Warn("invalid navigation xpath", "selector", navXPath, "error", err)
		return
	}
	for _, n := range nodes {
		if !c.add(htmlquery.InnerText(n)) {
			return
		}
	}
}

type labelCollector struct {
	limit int
	seen  map[string]bool
	items []string
}

func newLabelCollector(limit int) *labelCollector {
	return &labelCollector{limit: limit, seen: make(map[string]bool)}
}

// add records a label and reports whether more are wanted.
func (c *labelCollector) add(raw string) bool {
	text := cleanText(raw)
	key := strings.ToLower(text)
	if len([]rune(text)) > 1 && len(text) <= 60 && !c.seen[key] {
		c.seen[key] = true
		c.items = append(c.items, text)
	}
	return !c.full()
}

func (c *labelCollector) full() bool {
	return c.limit > 0 && len(c.items) >= c.limit
}
