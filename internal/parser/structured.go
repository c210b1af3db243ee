package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// Block types stored in StructuredBlock.Type.
const (
	BlockJSONLD    = "json-ld"
	BlockMicrodata = "microdata"
)

// extractStructuredData returns every JSON-LD entity and top-level microdata
// item. A JSON-LD script may hold an object, an array, or an @graph.
func extractStructuredData(doc *goquery.Document) []types.StructuredBlock {
	var out []types.StructuredBlock

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}
		for _, entity := range decodeJSONLD(raw) {
			out = append(out, types.StructuredBlock{Type: BlockJSONLD, Data: entity})
		}
	})

	return append(out, extractMicrodata(doc)...)
}

func decodeJSONLD(raw string) []map[string]any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return flattenJSONLD(v)
}

func flattenJSONLD(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			var out []map[string]any
			for _, g := range graph {
				out = append(out, flattenJSONLD(g)...)
			}
			return out
		}
		return []map[string]any{t}
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, flattenJSONLD(item)...)
		}
		return out
	default:
		return nil
	}
}

func extractMicrodata(doc *goquery.Document) []types.StructuredBlock {
	var out []types.StructuredBlock

	doc.Find("[itemscope]:not([itemscope] [itemscope])").Each(func(_ int, sel *goquery.Selection) {
		data := make(map[string]any)
		if itemType, ok := sel.Attr("itemtype"); ok && itemType != "" {
			data["@type"] = itemType
		}

		sel.Find("[itemprop]").Each(func(_ int, prop *goquery.Selection) {
			name := prop.AttrOr("itemprop", "")
			if name == "" {
				return
			}
			var value string
			for _, attr := range []string{"content", "href", "src", "datetime"} {
				if v, ok := prop.Attr(attr); ok {
					value = v
					break
				}
			}
			if value == "" {
				value = cleanText(prop.Text())
			}
			if value != "" {
				data[name] = value
			}
		})

		if len(data) > 0 {
			out = append(out, types.StructuredBlock{Type: BlockMicrodata, Data: data})
		}
	})
	return out
}

// extractOpenGraph collects og: meta properties keyed without the prefix.
func extractOpenGraph(doc *goquery.Document) map[string]string {
	data := make(map[string]string)
	doc.Find(`meta[property^="og:"]`).Each(func(_ int, sel *goquery.Selection) {
		key := strings.TrimPrefix(sel.AttrOr("property", ""), "og:")
		content := cleanText(sel.AttrOr("content", ""))
		if key != "" && content != "" {
			if _, dup := data[key]; !dup {
				data[key] = content
			}
		}
	})
	if len(data) == 0 {
		return nil
	}
	return data
}

// BlockType returns the schema type of a block with any schema.org prefix
// removed. Arrays of types yield the first entry.
func BlockType(b types.StructuredBlock) string {
	var t string
	switch v := b.Data["@type"].(type) {
	case string:
		t = v
	case []any:
		if len(v) > 0 {
			t, _ = v[0].(string)
		}
	}
	if i := strings.LastIndexAny(t, "/#"); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// IsOrganizationBlock reports whether a block describes the site owner.
func IsOrganizationBlock(b types.StructuredBlock) bool {
	switch BlockType(b) {
	case "Organization", "Corporation", "LocalBusiness", "WebSite", "Brand", "Company", "NGO", "EducationalOrganization", "MedicalOrganization":
		return true
	}
	return false
}
