package parser

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// markdownRenderer produces the compact digest of the main region that
// prompts are built from.
type markdownRenderer struct {
	conv *converter.Converter
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// render converts html to markdown. Conversion failures yield "".
func (m *markdownRenderer) render(html, domain string) string {
	md, err := m.conv.ConvertString(html, converter.WithDomain(domain))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}
