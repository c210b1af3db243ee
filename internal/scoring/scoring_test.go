package scoring

import (
	"reflect"
	"strings"
	"testing"

	"github.com/IshaanNene/BrandLens/internal/parser"
	"github.com/IshaanNene/BrandLens/internal/types"
)

const acmeURL = "https://acme.com/"

// field applies one piece of evidence to a profile under construction.
type field struct {
	name  string
	apply func(*types.StructuredContent, *types.VisualAssets)
}

var acmeFields = []field{
	{"title", func(c *types.StructuredContent, _ *types.VisualAssets) { c.Title = "Acme Corp" }},
	{"description", func(c *types.StructuredContent, _ *types.VisualAssets) {
		c.MetaDescription = "Acme Corp builds dependable rocket gear for coyotes anywhere"
	}},
	{"headings", func(c *types.StructuredContent, _ *types.VisualAssets) {
		c.Headings = []types.Heading{
			{Level: 1, Text: "Acme rocket gear"}, {Level: 2, Text: "Skates"}, {Level: 2, Text: "Magnets"},
			{Level: 3, Text: "Anvils"}, {Level: 3, Text: "Support"},
		}
	}},
	{"mainText", func(c *types.StructuredContent, _ *types.VisualAssets) { c.MainText = strings.Repeat("Rocket gear copy. ", 40) }},
	{"navigation", func(c *types.StructuredContent, _ *types.VisualAssets) { c.Navigation = []string{"Products", "About", "Contact"} }},
	{"structuredData", func(c *types.StructuredContent, _ *types.VisualAssets) {
		c.StructuredData = []types.StructuredBlock{{Type: "json-ld", Data: map[string]any{"@type": "Organization", "name": "Acme"}}}
	}},
	{"industry", func(c *types.StructuredContent, _ *types.VisualAssets) { c.Industry, c.IndustryScore = "technology", 5 }},
	{"siteName", func(c *types.StructuredContent, _ *types.VisualAssets) { c.SiteName = "Acme" }},
	{"contact", func(c *types.StructuredContent, _ *types.VisualAssets) {
		c.Contact = &types.ContactInfo{Email: "sales@acme.com", Phone: "+1 480 555 0199"}
	}},
	{"logo", func(_ *types.StructuredContent, a *types.VisualAssets) {
		a.Logo = &types.LogoCandidate{URL: "https://acme.com/logo.png", Selector: "img[logo]", Basis: "header"}
	}},
	{"colors", func(_ *types.StructuredContent, a *types.VisualAssets) {
		a.Palette = []types.ColorSample{{Hex: "#1A73E8", Source: "css", Corroborated: true}, {Hex: "#F4A261", Source: "css"}}
	}},
	{"fonts", func(_ *types.StructuredContent, a *types.VisualAssets) { a.Fonts = []string{"Inter"} }},
}

func build(mask int) (*types.StructuredContent, *types.VisualAssets) {
	c, a := &types.StructuredContent{}, &types.VisualAssets{}
	for i, f := range acmeFields {
		if mask&(1<<i) != 0 {
			f.apply(c, a)
		}
	}
	return c, a
}

func TestAcmeTitleConfidence(t *testing.T) {
	c, a := build(1) // title only
	res := Score(acmeURL, c, a)
	if res.Confidence[Title] <= 0.8 {
		t.Errorf("title confidence = %v, want > 0.8", res.Confidence[Title])
	}
}

func TestTitleWithoutBrandAgreement(t *testing.T) {
	c := &types.StructuredContent{Title: "Welcome to our homepage"}
	res := Score("https://globex.com/", c, nil)
	if got := res.Confidence[Title]; got != 0.7 {
		t.Errorf("title confidence = %v, want 0.7", got)
	}
}

func TestQualityIsMonotonicOverFieldSubsets(t *testing.T) {
	n := len(acmeFields)
	for mask := 0; mask < 1<<n; mask++ {
		c, a := build(mask)
		base := Score(acmeURL, c, a)
		if base.Quality < 0 || base.Quality > 1 {
			t.Fatalf("mask %b: quality %v out of range", mask, base.Quality)
		}

		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				continue
			}
			c2, a2 := build(mask | 1<<i)
			more := Score(acmeURL, c2, a2)
			if more.Quality < base.Quality {
				t.Fatalf("adding %s to mask %b lowered quality %v -> %v", acmeFields[i].name, mask, base.Quality, more.Quality)
			}
			for name, v := range base.Confidence {
				if more.Confidence[name] < v {
					t.Fatalf("adding %s to mask %b lowered %s %v -> %v", acmeFields[i].name, mask, name, v, more.Confidence[name])
				}
			}
		}
	}
}

func TestEmptyAndFullScores(t *testing.T) {
	empty := Score(acmeURL, nil, nil)
	if empty.Quality != 0 || empty.Grade != "F" {
		t.Errorf("empty = %+v", empty)
	}
	if len(empty.Confidence) != len(Weights) {
		t.Errorf("expected every component reported, got %v", empty.Confidence)
	}

	c, a := build(1<<len(acmeFields) - 1)
	full := Score(acmeURL, c, a)
	if full.Quality < 0.7 || full.Quality > 1 {
		t.Errorf("full quality = %v", full.Quality)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range Weights {
		sum += w
	}
	if round3(sum) != 1 {
		t.Errorf("weights sum to %v", sum)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	c, a := build(0b101010101010)
	first := Score(acmeURL, c, a)
	second := Score(acmeURL, c, a)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scores differ: %+v vs %+v", first, second)
	}
}

func TestLogoBasis(t *testing.T) {
	header := Score(acmeURL, nil, &types.VisualAssets{Logo: &types.LogoCandidate{Basis: "header"}})
	document := Score(acmeURL, nil, &types.VisualAssets{Logo: &types.LogoCandidate{Basis: "document"}})
	if header.Confidence[Logo] <= document.Confidence[Logo] {
		t.Errorf("header logo %v should beat document logo %v", header.Confidence[Logo], document.Confidence[Logo])
	}
}

func TestDefaultIndustryScoresZero(t *testing.T) {
	res := Score(acmeURL, &types.StructuredContent{Industry: "general business"}, nil)
	if res.Confidence[Industry] != 0 {
		t.Errorf("industry confidence = %v", res.Confidence[Industry])
	}
}

func TestIndustryConfidenceHoldsWhenWinnerChanges(t *testing.T) {
	// Three technology keywords, then a heavier finance phrase with fewer matches.
	base := "software platform data"
	more := base + " asset management asset management"

	c := &types.StructuredContent{}
	c.Industry, c.IndustryScore = parser.ClassifyIndustry(base)
	before := Score(acmeURL, c, nil).Confidence[Industry]

	c.Industry, c.IndustryScore = parser.ClassifyIndustry(more)
	if c.Industry != "financial services" {
		t.Fatalf("winner = %q, want the finance category to take over", c.Industry)
	}
	after := Score(acmeURL, c, nil).Confidence[Industry]
	if after < before {
		t.Errorf("industry confidence dropped from %v to %v when text was added", before, after)
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		q    float64
		want string
	}{
		{1, "A"}, {0.9, "A"}, {0.89, "B"}, {0.8, "B"}, {0.75, "C"},
		{0.6, "D"}, {0.59, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.q); got != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.q, got, tt.want)
		}
	}
}

func TestAuditSEO(t *testing.T) {
	t.Run("empty content", func(t *testing.T) {
		a := AuditSEO(nil, nil)
		// title 20 + description 15 + canonical 5 + h1 10 + og 6 + structured 5 + lang 2
		if a.Score != 37 {
			t.Errorf("score = %d, want 37", a.Score)
		}
		if len(a.Issues) != 8 {
			t.Errorf("issues = %v", a.Messages())
		}
	})

	t.Run("clean page", func(t *testing.T) {
		c := &types.StructuredContent{
			Title:           "Acme Corp | Rocket gear",
			MetaDescription: "Acme Corp builds dependable rocket gear for coyotes anywhere",
			Canonical:       "https://acme.com/",
			Headings:        []types.Heading{{Level: 1, Text: "Rocket gear"}},
			OpenGraph:       map[string]string{"title": "Acme", "image": "https://acme.com/og.png"},
			StructuredData:  []types.StructuredBlock{{Type: "json-ld"}},
			Language:        "en",
		}
		doc, err := types.NewDocumentFromHTML(acmeURL, `<html><head><meta name="viewport" content="width=device-width"></head><body><img src="a.png" alt="A"></body></html>`)
		if err != nil {
			t.Fatal(err)
		}
		a := AuditSEO(c, doc)
		if a.Score != 100 || len(a.Issues) != 0 {
			t.Errorf("audit = %+v", a)
		}
	})

	t.Run("markup issues", func(t *testing.T) {
		doc, err := types.NewDocumentFromHTML(acmeURL, `<html><head><meta name="robots" content="NOINDEX"></head><body><img src="a.png"><img src="b.png" alt=" "></body></html>`)
		if err != nil {
			t.Fatal(err)
		}
		a := AuditSEO(&types.StructuredContent{
			Title:           "Acme Corp | Rocket gear",
			MetaDescription: "desc",
			Canonical:       "https://acme.com/",
			Headings:        []types.Heading{{Level: 1, Text: "A"}, {Level: 1, Text: "B"}},
			OpenGraph:       map[string]string{"title": "Acme", "image": "x"},
			StructuredData:  []types.StructuredBlock{{Type: "json-ld"}},
			Language:        "en",
		}, doc)
		// multiple h1 5 + alt 4 + viewport 5
		if a.Score != 86 {
			t.Errorf("score = %d, want 86: %v", a.Score, a.Messages())
		}
		msgs := strings.Join(a.Messages(), "; ")
		for _, want := range []string{"Multiple H1 tags (2)", "2 images without alt text", "noindex", "viewport"} {
			if !strings.Contains(msgs, want) {
				t.Errorf("missing %q in %s", want, msgs)
			}
		}
	})
}
