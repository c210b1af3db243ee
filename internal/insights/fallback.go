package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/IshaanNene/BrandLens/internal/scoring"
	"github.com/IshaanNene/BrandLens/internal/types"
	"github.com/IshaanNene/BrandLens/internal/visual"
)

// Insight sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

const (
	maxFallbackTextRunes = 300
	maxKeyMessages       = 3
	maxRecommendations   = 6
)

// Fallback builds insights from the extracted evidence alone. Positioning,
// value proposition and key messages are copied from page text and are left
// empty when the page has none.
func Fallback(in Input) *types.Insights {
	c := in.content()
	tmpl := templateFor(in.industry())

	ins := &types.Insights{Source: SourceFallback}
	ins.Positioning = firstText(c.MetaDescription, c.HeroText, first(c.HeadingTexts(1)))
	ins.ValueProposition = firstText(except(ins.Positioning, c.HeroText, first(c.HeadingTexts(1)), c.AboutText)...)
	ins.KeyMessages = keyMessages(c)

	audit := scoring.AuditSEO(c, in.Doc)
	presence := digitalPresence(in, audit)
	ins.DigitalPresence = presence

	swot := types.SWOT{
		Strengths:     append([]string{}, tmpl.SWOT.Strengths...),
		Weaknesses:    append([]string{}, tmpl.SWOT.Weaknesses...),
		Opportunities: append([]string{}, tmpl.SWOT.Opportunities...),
		Threats:       append([]string{}, tmpl.SWOT.Threats...),
	}
	s, w := evidenceSWOT(c, in.Visual, audit)
	swot.Strengths = append(swot.Strengths, s...)
	swot.Weaknesses = append(swot.Weaknesses, w...)
	ins.SWOT = &swot

	ins.Recommendations = recommendations(c, in.Visual, audit)
	return ins
}

// DigitalPresence computes the 0-100 sub-scores from evidence. It is
// attached to model-generated insights as well.
func DigitalPresence(in Input) *types.DigitalPresence {
	return digitalPresence(in, scoring.AuditSEO(in.content(), in.Doc))
}

func digitalPresence(in Input, audit *scoring.SEOAudit) *types.DigitalPresence {
	c := in.content()
	conf := in.Confidence
	if conf == nil {
		conf = scoring.Score(in.URL, c, in.Visual).Confidence
	}

	var contentScore float64
	for _, name := range []string{scoring.Title, scoring.Description, scoring.Headings, scoring.Content} {
		contentScore += conf[name]
	}
	contentScore = contentScore / 4 * 100

	visualScore := 0
	if v := in.Visual; v != nil {
		switch {
		case v.Logo == nil:
		case v.Logo.Basis == visual.BasisHeader:
			visualScore += 40
		default:
			visualScore += 28
		}
		visualScore += min(len(v.Palette), 4) * 10
		visualScore += min(len(v.Fonts), 2) * 10
	}

	dp := &types.DigitalPresence{
		SEO:     audit.Score,
		Content: int(math.Round(contentScore)),
		Visual:  min(visualScore, 100),
		Social:  min(len(c.SocialLinks)*20, 100),
	}
	dp.Overall = int(math.Round(float64(dp.SEO+dp.Content+dp.Visual+dp.Social) / 4))
	return dp
}

func evidenceSWOT(c *types.StructuredContent, v *types.VisualAssets, audit *scoring.SEOAudit) (strengths, weaknesses []string) {
	if v != nil && v.Logo != nil {
		strengths = append(strengths, "Recognizable logo placed on the site")
	}
	if v != nil && len(v.Palette) >= 3 {
		strengths = append(strengths, fmt.Sprintf("Defined color palette of %d colors", len(v.Palette)))
	}
	if len(c.StructuredData) > 0 {
		strengths = append(strengths, "Publishes structured data for search engines")
	}
	if n := len(c.SocialLinks); n >= 2 {
		strengths = append(strengths, fmt.Sprintf("Active on %d social platforms", n))
	}
	if c.Contact.Channels() >= 2 {
		strengths = append(strengths, "Multiple contact channels published")
	}

	if c.MetaDescription == "" {
		weaknesses = append(weaknesses, "No meta description summarizing the offer")
	}
	if len(c.SocialLinks) == 0 {
		weaknesses = append(weaknesses, "No social media profiles linked")
	}
	if c.Contact.Channels() == 0 {
		weaknesses = append(weaknesses, "No contact details on the page")
	}
	if audit.Score < 70 {
		weaknesses = append(weaknesses, fmt.Sprintf("On-page SEO scores %d/100", audit.Score))
	}
	return strengths, weaknesses
}

// recommendations turns detected gaps into actions, SEO errors first.
func recommendations(c *types.StructuredContent, v *types.VisualAssets, audit *scoring.SEOAudit) []string {
	var recs []string
	for _, sev := range []string{"error", "warning"} {
		for _, is := range audit.Issues {
			if is.Severity == sev {
				recs = append(recs, "Fix: "+is.Message)
			}
		}
	}
	if v == nil || v.Logo == nil {
		recs = append(recs, "Place the brand logo in the site header")
	}
	if len(c.SocialLinks) == 0 {
		recs = append(recs, "Link the brand's social media profiles from the site")
	}
	if c.Contact.Channels() == 0 {
		recs = append(recs, "Publish an email address or phone number")
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func keyMessages(c *types.StructuredContent) []string {
	src := c.Features
	if len(src) == 0 {
		src = c.HeadingTexts(2)
	}
	var out []string
	for _, s := range src {
		if len(out) == maxKeyMessages {
			break
		}
		if s = truncate(s, maxFallbackTextRunes); len([]rune(s)) > minListItemRunes {
			out = append(out, s)
		}
	}
	return out
}

// firstText returns the first candidate longer than the gate minimum.
func firstText(candidates ...string) string {
	for _, s := range candidates {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > minStringRunes {
			return truncate(s, maxFallbackTextRunes)
		}
	}
	return ""
}

func except(skip string, candidates ...string) []string {
	out := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if skip != "" && strings.HasPrefix(truncate(s, maxFallbackTextRunes), skip) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
