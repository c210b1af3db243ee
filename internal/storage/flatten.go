package storage

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// CSVHeader is the column order of FlattenProfile rows.
var CSVHeader = []string{
	"url", "brand_name", "status", "extraction_method", "quality_score", "grade",
	"title", "meta_description", "industry", "logo_url", "favicon_url", "colors", "fonts",
	"email", "phone", "address", "social", "positioning", "value_proposition",
	"insights_source", "failure_reason", "warnings", "analyzed_at", "duration_ms",
}

// listSep joins multi-valued cells.
const listSep = "; "

// FlattenProfile renders p as one CSV row in CSVHeader order.
func FlattenProfile(p *types.BrandProfile) []string {
	c := p.StructuredContent
	if c == nil {
		c = &types.StructuredContent{}
	}
	contact := c.Contact
	if contact == nil {
		contact = &types.ContactInfo{}
	}

	var logo, favicon string
	if v := p.VisualAssets; v != nil {
		favicon = v.FaviconURL
		if v.Logo != nil {
			logo = v.Logo.URL
		}
	}

	var positioning, valueProp, source string
	if ins := p.Insights; ins != nil {
		positioning, valueProp, source = ins.Positioning, ins.ValueProposition, ins.Source
	}

	var analyzed string
	if !p.AnalyzedAt.IsZero() {
		analyzed = p.AnalyzedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		p.URL,
		p.BrandNameGuess,
		string(p.Status),
		string(p.ExtractionMethod),
		strconv.FormatFloat(p.QualityScore, 'f', 3, 64),
		p.Grade,
		c.Title,
		c.MetaDescription,
		c.Industry,
		logo,
		favicon,
		strings.Join(p.VisualAssets.Hexes(), listSep),
		strings.Join(fonts(p.VisualAssets), listSep),
		contact.Email,
		contact.Phone,
		contact.Address,
		joinMap(c.SocialLinks),
		positioning,
		valueProp,
		source,
		p.FailureReason,
		strings.Join(p.Warnings, listSep),
		analyzed,
		strconv.FormatInt(p.DurationMs, 10),
	}
}

func fonts(v *types.VisualAssets) []string {
	if v == nil {
		return nil
	}
	return v.Fonts
}

// joinMap renders m as sorted key=value pairs.
func joinMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, listSep)
}
