package visual

import (
	"bytes"

	"github.com/antchfx/htmlquery"
)

// svgColorQueries are tried in order: brand marks before decoration.
var svgColorQueries = []string{
	`//header//svg/descendant-or-self::*[@fill or @stroke or @stop-color] | //*[contains(@class,"logo")]//svg/descendant-or-self::*[@fill or @stroke or @stop-color]`,
	`//svg/descendant-or-self::*[@fill or @stroke or @stop-color]`,
}

var svgColorAttrs = []string{"fill", "stroke", "stop-color"}

// svgColors reads fill, stroke and gradient stop colors from inline SVG.
func (e *Extractor) svgColors(body []byte) []string {
	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []string
	for _, q := range svgColorQueries {
		nodes, err := htmlquery.QueryAll(root, q)
		if err != nil {
			e.logger.Warn("invalid svg xpath", "selector", q, "error", err)
			continue
		}
		for _, n := range nodes {
			for _, attr := range svgColorAttrs {
				if hex, ok := NormalizeColor(htmlquery.SelectAttr(n, attr)); ok {
					out = append(out, hex)
				}
			}
		}
	}
	return out
}
