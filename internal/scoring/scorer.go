// Package scoring rates how much trustworthy brand signal a profile carries.
// Every function here is pure and deterministic.
package scoring

import (
	"math"
	"net/url"

	"github.com/IshaanNene/BrandLens/internal/parser"
	"github.com/IshaanNene/BrandLens/internal/types"
	"github.com/IshaanNene/BrandLens/internal/visual"
)

// Confidence component names, as they appear in BrandProfile.ConfidenceScores.
const (
	Title          = "title"
	Description    = "description"
	Headings       = "headings"
	Content        = "content"
	Navigation     = "navigation"
	StructuredData = "structuredData"
	Industry       = "industry"
	Logo           = "logo"
	Colors         = "colors"
	Fonts          = "fonts"
	Contact        = "contact"
)

// Weights sum to 1, so the quality score is already normalized.
var Weights = map[string]float64{
	Title:          0.15,
	Description:    0.10,
	Headings:       0.10,
	Content:        0.20,
	Navigation:     0.05,
	StructuredData: 0.05,
	Industry:       0.05,
	Logo:           0.10,
	Colors:         0.10,
	Fonts:          0.05,
	Contact:        0.05,
}

// componentOrder fixes the summation order so results are bit-for-bit stable.
var componentOrder = []string{
	Title, Description, Headings, Content, Navigation, StructuredData,
	Industry, Logo, Colors, Fonts, Contact,
}

// Result is the scorer's output.
type Result struct {
	Confidence map[string]float64
	Quality    float64
	Grade      string
}

// Score computes per-component confidences, the weighted quality score and
// its letter grade. Nil content or assets score zero for their components.
// Adding evidence never lowers any component or the total.
func Score(pageURL string, content *types.StructuredContent, assets *types.VisualAssets) Result {
	if content == nil {
		content = &types.StructuredContent{}
	}
	if assets == nil {
		assets = &types.VisualAssets{}
	}

	conf := map[string]float64{
		Title:          titleConfidence(pageURL, content),
		Description:    descriptionConfidence(content.MetaDescription),
		Headings:       headingsConfidence(content.Headings),
		Content:        contentConfidence(content),
		Navigation:     ratio(len(content.Navigation), 5),
		StructuredData: structuredDataConfidence(content.StructuredData),
		Industry:       industryConfidence(content),
		Logo:           logoConfidence(assets.Logo),
		Colors:         colorsConfidence(assets.Palette),
		Fonts:          ratio(len(assets.Fonts), 2),
		Contact:        ratio(content.Contact.Channels(), 3),
	}

	var quality float64
	for _, name := range componentOrder {
		conf[name] = round3(conf[name])
		quality += Weights[name] * conf[name]
	}
	quality = round3(math.Min(quality, 1))

	return Result{Confidence: conf, Quality: quality, Grade: Grade(quality)}
}

// titleConfidence rewards presence, length up to 20 characters, and a title
// that names the brand as the host, site name or H1 does.
func titleConfidence(pageURL string, c *types.StructuredContent) float64 {
	if c.Title == "" {
		return 0
	}
	score := 0.5 + 0.2*ratio(len([]rune(c.Title)), 20)
	if titleAgrees(pageURL, c) {
		score += 0.3
	}
	return score
}

func titleAgrees(pageURL string, c *types.StructuredContent) bool {
	refs := []string{c.SiteName}
	if u, err := url.Parse(pageURL); err == nil {
		refs = append(refs, u.Hostname())
	}
	refs = append(refs, c.HeadingTexts(1)...)

	ref := make(map[string]bool)
	for _, r := range refs {
		for _, tok := range parser.BrandTokens(r) {
			if len(tok) >= 3 && !commonHostTokens[tok] {
				ref[tok] = true
			}
		}
	}
	for _, tok := range parser.BrandTokens(c.Title) {
		if ref[tok] {
			return true
		}
	}
	return false
}

// commonHostTokens never identify a brand on their own.
var commonHostTokens = map[string]bool{
	"www": true, "com": true, "net": true, "org": true, "the": true, "and": true,
	"home": true, "official": true, "site": true, "welcome": true,
}

func descriptionConfidence(desc string) float64 {
	if desc == "" {
		return 0
	}
	return 0.4 + 0.6*ratio(len([]rune(desc)), 80)
}

// headingsConfidence mixes heading count with level diversity.
func headingsConfidence(hs []types.Heading) float64 {
	if len(hs) == 0 {
		return 0
	}
	levels := make(map[int]bool)
	for _, h := range hs {
		levels[h.Level] = true
	}
	return 0.7*ratio(len(hs), 6) + 0.3*ratio(len(levels), 3)
}

func contentConfidence(c *types.StructuredContent) float64 {
	return 0.7*ratio(len([]rune(c.MainText)), 1000) + 0.3*ratio(len(c.Headings), 5)
}

func structuredDataConfidence(blocks []types.StructuredBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	score := 0.7 * ratio(len(blocks), 2)
	for _, b := range blocks {
		if parser.IsOrganizationBlock(b) {
			score += 0.3
			break
		}
	}
	return score
}

func industryConfidence(c *types.StructuredContent) float64 {
	if c.Industry == "" || c.Industry == parser.DefaultIndustry {
		return 0
	}
	return 0.4 + 0.6*ratio(c.IndustryScore, 10)
}

func logoConfidence(l *types.LogoCandidate) float64 {
	switch {
	case l == nil:
		return 0
	case l.Basis == visual.BasisHeader:
		return 1
	default:
		return 0.7
	}
}

// colorsConfidence rewards palette size and colors confirmed by more than
// one source.
func colorsConfidence(p []types.ColorSample) float64 {
	if len(p) == 0 {
		return 0
	}
	score := 0.8 * ratio(len(p), 4)
	for _, c := range p {
		if c.Corroborated {
			score += 0.2
			break
		}
	}
	return score
}

// ratio returns n/full clamped to [0,1].
func ratio(n, full int) float64 {
	if n <= 0 || full <= 0 {
		return 0
	}
	return math.Min(float64(n)/float64(full), 1)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
