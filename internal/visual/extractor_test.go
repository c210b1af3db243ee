package visual

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const acmeHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Acme Corp</title>
    <meta name="description" content="Acme Corp builds dependable rocket gear for coyotes anywhere">
    <link rel="icon" href="/favicon.png">
    <style>.logo{background-color:#1a73e8}</style>
</head>
<body>
    <header><a href="/"><img class="logo" src="/img/logo.png" alt="Acme"></a></header>
    <main><h1>Rocket gear</h1><h2>Skates</h2><h2>Magnets</h2><h3>Anvils</h3><h3>Support</h3><p>Copy.</p></main>
</body>
</html>`

func newTestExtractor() *Extractor {
	return New(config.DefaultConfig().Visual, testLogger)
}

func mustDoc(t *testing.T, html string) *types.Document {
	t.Helper()
	doc, err := types.NewDocumentFromHTML("https://acme.com/", html)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

func page(head, body string) string {
	return "<html><head>" + head + "</head><body>" + body + "</body></html>"
}

func containsHex(palette []types.ColorSample, hex string) bool {
	for _, c := range palette {
		if strings.EqualFold(c.Hex, hex) {
			return true
		}
	}
	return false
}

func TestExtractAcme(t *testing.T) {
	assets, err := newTestExtractor().Extract(mustDoc(t, acmeHTML))
	if !errors.Is(err, types.ErrVisualExtractionPartial) {
		t.Fatalf("expected partial extraction (no fonts), got %v", err)
	}
	if !strings.Contains(err.Error(), "fonts") {
		t.Errorf("error should name the missing part: %v", err)
	}

	if !containsHex(assets.Palette, "#1a73e8") {
		t.Errorf("palette %v should contain #1A73E8", assets.Hexes())
	}
	if assets.Palette[0].Source != types.ColorSourceCSS {
		t.Errorf("source = %q", assets.Palette[0].Source)
	}

	want := &types.LogoCandidate{
		URL:      "https://acme.com/img/logo.png",
		Selector: "img[logo]",
		Basis:    BasisHeader,
		Alt:      "Acme",
	}
	if !reflect.DeepEqual(assets.Logo, want) {
		t.Errorf("logo = %+v", assets.Logo)
	}
	if assets.FaviconURL != "https://acme.com/favicon.png" {
		t.Errorf("favicon = %q", assets.FaviconURL)
	}
}

func TestExtractComplete(t *testing.T) {
	html := page(
		`<style>h1{font-family:"Playfair Display",serif} .btn-primary{background:#E63946;color:#fff}</style>`,
		`<header><img src="/logo.svg" alt="Brand logo"></header><h1>Hi</h1>`,
	)
	assets, err := newTestExtractor().Extract(mustDoc(t, html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(assets.Hexes(), []string{"#E63946"}) {
		t.Errorf("palette = %v", assets.Hexes())
	}
	if !reflect.DeepEqual(assets.Fonts, []string{"Playfair Display"}) {
		t.Errorf("fonts = %v", assets.Fonts)
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"#1a73e8", "#1A73E8", true},
		{"#abc", "#AABBCC", true},
		{"#abcd", "#AABBCC", true},
		{"#abc0", "", false},
		{"#1a73e8ff", "#1A73E8", true},
		{"#1a73e800", "", false},
		{"#12345", "", false},
		{"#ggg", "", false},
		{"rgb(26, 115, 232)", "#1A73E8", true},
		{"rgb(26 115 232 / 50%)", "#1A73E8", true},
		{"rgba(26,115,232,0.5)", "#1A73E8", true},
		{"rgba(0, 0, 0, 0)", "", false},
		{"rgb(100%, 0%, 0%)", "#FF0000", true},
		{"rgb(300, -5, 0)", "#FF0000", true},
		{"Navy", "#000080", true},
		{"transparent", "", false},
		{"currentColor", "", false},
		{"#FFF !important", "#FFFFFF", true},
		{"chartreuse-ish", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeColor(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeColor(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPaletteDropsDuplicatesAndPlaceholders(t *testing.T) {
	html := page(`<style>
		body { background: #fff; color: #000 }
		.a { color: #FFFFFF; border: 1px solid white }
		.b { color: #1a73e8 }
		.c { color: #1A73E8; background-color: rgb(26, 115, 232) }
		.d { color: rgba(0,0,0,0); background: transparent }
		.e { color: #fefefe; background: #0a0a0a }
		.f { background: linear-gradient(90deg, #ff5733, #33c1ff) url(red-arrow.png) }
	</style>`, `<p>x</p>`)

	assets, _ := newTestExtractor().Extract(mustDoc(t, html))
	got := assets.Hexes()
	want := []string{"#1A73E8", "#FF5733", "#33C1FF"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("palette = %v, want %v", got, want)
	}

	seen := make(map[string]bool)
	for _, hex := range got {
		if seen[hex] {
			t.Errorf("duplicate %s", hex)
		}
		seen[hex] = true
		if IsPlaceholderColor(hex) {
			t.Errorf("placeholder %s in palette", hex)
		}
	}
}

func TestPaletteIgnoresColorWordsInIdentifiers(t *testing.T) {
	html := page(`<style>
		.btn-primary { background-color: var(--blue-600); border: 1px solid var(--gray-200) }
		.nav-red-link { color: var(--text, #2a9d8f) }
		.logo { color: #1a73e8 }
		.hero { background: teal }
	</style>`, `<p>x</p>`)

	assets, _ := newTestExtractor().Extract(mustDoc(t, html))
	want := []string{"#2A9D8F", "#1A73E8", "#008080"}
	if !reflect.DeepEqual(assets.Hexes(), want) {
		t.Errorf("palette = %v, want %v", assets.Hexes(), want)
	}
}

func TestColorsInValue(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"var(--blue-600)", nil},
		{"1px solid var(--gray-200)", nil},
		{"var(--accent, red)", []string{"#FF0000"}},
		{"dark-blue", nil},
		{"navy", []string{"#000080"}},
		{"linear-gradient(90deg, #ff5733, rgb(51, 193, 255))", []string{"#FF5733", "#33C1FF"}},
		{"url(blue-arrow.png) no-repeat", nil},
	}
	for _, tt := range tests {
		if got := colorsInValue(tt.value); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("colorsInValue(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPaletteEmptyWhenOnlyPlaceholders(t *testing.T) {
	html := page(`<style>body{background:#ffffff;color:#0d0d0d}</style>`, `<p>plain</p>`)
	assets, err := newTestExtractor().Extract(mustDoc(t, html))
	if len(assets.Palette) != 0 {
		t.Errorf("expected empty palette, got %v", assets.Hexes())
	}
	if !errors.Is(err, types.ErrVisualExtractionPartial) || !strings.Contains(err.Error(), "colors") {
		t.Errorf("expected missing colors, got %v", err)
	}
}

func TestPaletteSalientSelectorsFirst(t *testing.T) {
	html := page(`<style>
		.footer-note { color: #888888 }
		.brand-title { color: #D62828 }
		:root { --accent: #2A9D8F }
	</style>`, `<p>x</p>`)

	assets, _ := newTestExtractor().Extract(mustDoc(t, html))
	want := []string{"#D62828", "#2A9D8F", "#888888"}
	if !reflect.DeepEqual(assets.Hexes(), want) {
		t.Errorf("palette = %v, want %v", assets.Hexes(), want)
	}
}

func TestPaletteComputedFirstAndCorroborated(t *testing.T) {
	doc := mustDoc(t, page(`<style>.logo{color:#1a73e8} .x{color:#f4a261}</style>`, `<p>x</p>`))
	doc.Computed = &types.ComputedStyles{
		Colors: []types.StyleSample{
			{Selector: "header", Property: "background-color", Value: "rgba(0, 0, 0, 0)"},
			{Selector: "header", Property: "color", Value: "rgb(26, 115, 232)"},
			{Selector: "a", Property: "color", Value: "rgb(0, 0, 0)"},
		},
	}

	assets, _ := newTestExtractor().Extract(doc)
	want := []types.ColorSample{
		{Hex: "#1A73E8", Source: types.ColorSourceComputed, Corroborated: true},
		{Hex: "#F4A261", Source: types.ColorSourceCSS},
	}
	if !reflect.DeepEqual(assets.Palette, want) {
		t.Errorf("palette = %+v", assets.Palette)
	}
}

func TestPaletteSeededByManifestThemeColor(t *testing.T) {
	doc := mustDoc(t, page(`<style>.logo{color:#1a73e8} .x{color:#e63946}</style>`, `<p>x</p>`))
	doc.ManifestThemeColor = ManifestThemeColor([]byte(`{"name":"Acme","theme_color":"#e63946","background_color":"#ffffff"}`))

	assets, _ := newTestExtractor().Extract(doc)
	want := []types.ColorSample{
		{Hex: "#E63946", Source: types.ColorSourceManifest, Corroborated: true},
		{Hex: "#1A73E8", Source: types.ColorSourceCSS},
	}
	if !reflect.DeepEqual(assets.Palette, want) {
		t.Errorf("palette = %+v", assets.Palette)
	}
}

func TestManifestThemeColor(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"hex", `{"theme_color":"#1a73e8"}`, "#1A73E8"},
		{"short hex", `{"theme_color":"#f00"}`, "#FF0000"},
		{"named", `{"theme_color":"teal"}`, "#008080"},
		{"white placeholder", `{"theme_color":"#ffffff"}`, ""},
		{"missing", `{"name":"Acme"}`, ""},
		{"not json", `<html>404</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ManifestThemeColor([]byte(tt.data)); got != tt.want {
				t.Errorf("ManifestThemeColor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestManifestURL(t *testing.T) {
	if got := ManifestURL("https://acme.com/app.webmanifest", "https://acme.com/"); got != "https://acme.com/app.webmanifest" {
		t.Errorf("declared manifest ignored: %q", got)
	}
	if got := ManifestURL("", "https://www.acme.com/products?x=1"); got != "https://www.acme.com/site.webmanifest" {
		t.Errorf("fallback = %q", got)
	}
	if got := ManifestURL("", "::"); got != "" {
		t.Errorf("bad page url gave %q", got)
	}
}

func TestPaletteCapped(t *testing.T) {
	var css strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&css, ".c%d{color:#%02X3366}", i, 0x20+i*10)
	}
	assets, _ := newTestExtractor().Extract(mustDoc(t, page("<style>"+css.String()+"</style>", "<p>x</p>")))
	if len(assets.Palette) != 8 {
		t.Errorf("expected 8 colors, got %d", len(assets.Palette))
	}
}

func TestSVGColors(t *testing.T) {
	html := page(``, `<header><svg class="logo"><title>Acme</title><path fill="#FF5733" stroke="none"/><circle stroke="currentColor" fill="#fff"/></svg></header>
<footer><svg><defs><linearGradient><stop stop-color="#264653"/></linearGradient></defs></svg></footer>`)

	assets, _ := newTestExtractor().Extract(mustDoc(t, html))
	want := []types.ColorSample{
		{Hex: "#FF5733", Source: types.ColorSourceSVG},
		{Hex: "#264653", Source: types.ColorSourceSVG},
	}
	if !reflect.DeepEqual(assets.Palette, want) {
		t.Errorf("palette = %+v", assets.Palette)
	}
	if assets.Logo == nil || !assets.Logo.Inline || assets.Logo.Selector != "svg[logo]" || assets.Logo.Alt != "Acme" {
		t.Errorf("logo = %+v", assets.Logo)
	}
}

func TestFonts(t *testing.T) {
	html := page(`<style>
		p { font-family: inter, Arial }
		body { font: 400 16px/1.5 'Inter', -apple-system, BlinkMacSystemFont, sans-serif }
		.page-title { font-family: "Playfair Display", Georgia, serif !important }
		code { font-family: var(--mono), monospace }
	</style>`, `<p>x</p>`)

	t.Run("declarations", func(t *testing.T) {
		assets, _ := newTestExtractor().Extract(mustDoc(t, html))
		want := []string{"Playfair Display", "Georgia", "Inter", "Arial"}
		if !reflect.DeepEqual(assets.Fonts, want) {
			t.Errorf("fonts = %v, want %v", assets.Fonts, want)
		}
	})

	t.Run("computed first", func(t *testing.T) {
		doc := mustDoc(t, html)
		doc.Computed = &types.ComputedStyles{Fonts: []types.StyleSample{
			{Selector: "h1", Property: "font-family", Value: `Roboto, "Helvetica Neue", sans-serif`},
		}}
		cfg := config.DefaultConfig().Visual
		cfg.MaxFonts = 3
		assets, _ := New(cfg, testLogger).Extract(doc)
		want := []string{"Roboto", "Helvetica Neue", "Playfair Display"}
		if !reflect.DeepEqual(assets.Fonts, want) {
			t.Errorf("fonts = %v, want %v", assets.Fonts, want)
		}
	})
}

func TestLogoCascade(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantURL      string
		wantSelector string
		wantBasis    string
	}{
		{
			"header beats document",
			`<main><img class="logo" src="/body-logo.png"></main><header><div class="site-logo"><img src="/head.png"></div></header>`,
			"https://acme.com/head.png", "img[logo]", BasisHeader,
		},
		{
			"document-wide",
			`<div><img id="LogoMark" data-src="/lazy.png"></div>`,
			"https://acme.com/lazy.png", "img[logo]", BasisDocument,
		},
		{
			"home anchor",
			`<header><a href="https://acme.com/"><img srcset="/brand@2x.png 2x, /brand.png 1x"></a></header>`,
			"https://acme.com/brand@2x.png", `a[href="/"] img`, BasisHeader,
		},
		{
			"other anchors ignored",
			`<header><a href="/shop"><img src="/banner.png"></a></header>`,
			"", "", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets, _ := newTestExtractor().Extract(mustDoc(t, page("", tt.body)))
			if tt.wantURL == "" {
				if assets.Logo != nil {
					t.Fatalf("expected no logo, got %+v", assets.Logo)
				}
				return
			}
			if assets.Logo == nil {
				t.Fatal("expected a logo")
			}
			if assets.Logo.URL != tt.wantURL || assets.Logo.Selector != tt.wantSelector || assets.Logo.Basis != tt.wantBasis {
				t.Errorf("logo = %+v", assets.Logo)
			}
		})
	}
}

func TestFaviconNeverBecomesLogo(t *testing.T) {
	assets, err := newTestExtractor().Extract(mustDoc(t, page("", "<p>no images</p>")))
	if assets.Logo != nil {
		t.Errorf("logo = %+v", assets.Logo)
	}
	if assets.FaviconURL != "https://acme.com/favicon.ico" {
		t.Errorf("favicon = %q", assets.FaviconURL)
	}
	if !errors.Is(err, types.ErrVisualExtractionPartial) {
		t.Errorf("expected partial error, got %v", err)
	}
}
