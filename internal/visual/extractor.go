// Package visual finds a brand's logo, palette and typefaces in a fetched page.
package visual

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Extractor pulls visual assets from a document. It is stateless and safe
// for concurrent use.
type Extractor struct {
	cfg    config.VisualConfig
	logger *slog.Logger
}

// New creates a visual extractor.
func New(cfg config.VisualConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		logger: logger.With("component", "visual_extractor"),
	}
}

// Extract returns whatever assets were found. When the logo, palette or
// fonts are missing the assets come back together with an error wrapping
// ErrVisualExtractionPartial.
func (e *Extractor) Extract(doc *types.Document) (*types.VisualAssets, error) {
	assets := &types.VisualAssets{}

	base, err := url.Parse(doc.BaseURL())
	if err != nil {
		return assets, fmt.Errorf("%w: base url: %v", types.ErrVisualExtractionPartial, err)
	}
	gq, err := doc.HTML()
	if err != nil {
		return assets, fmt.Errorf("%w: parse html: %v", types.ErrVisualExtractionPartial, err)
	}

	assets.Logo = findLogo(gq, base)
	assets.FaviconURL = findFavicon(gq, base)

	decls := e.cssDeclarations(gq)
	assets.Palette = e.extractPalette(doc, decls)
	assets.Fonts = e.extractFonts(doc, decls)

	var missing []string
	if assets.Logo == nil {
		missing = append(missing, "logo")
	}
	if len(assets.Palette) == 0 {
		missing = append(missing, "colors")
	}
	if len(assets.Fonts) == 0 {
		missing = append(missing, "fonts")
	}

	e.logger.Debug("visual assets extracted",
		"url", doc.BaseURL(),
		"logo", assets.Logo != nil,
		"colors", len(assets.Palette),
		"fonts", len(assets.Fonts),
		"computed", !doc.Computed.Empty(),
	)

	if len(missing) > 0 {
		return assets, fmt.Errorf("%w: no %s", types.ErrVisualExtractionPartial, strings.Join(missing, ", "))
	}
	return assets, nil
}

// extractPalette seeds the palette with the manifest theme color, then
// merges computed, stylesheet and SVG colors, in that order.
func (e *Extractor) extractPalette(doc *types.Document, decls []declaration) []types.ColorSample {
	pal := newPalette(e.cfg.MaxColors)

	if doc.ManifestThemeColor != "" {
		pal.addValue(doc.ManifestThemeColor, types.ColorSourceManifest)
	}

	if doc.Computed != nil {
		for _, s := range doc.Computed.Colors {
			pal.addValue(s.Value, types.ColorSourceComputed)
		}
	}

	for _, d := range salientFirst(decls) {
		if isColorProperty(d.property) {
			pal.addValue(d.value, types.ColorSourceCSS)
		}
	}

	for _, hex := range e.svgColors(doc.Body) {
		pal.add(hex, types.ColorSourceSVG)
	}

	return pal.result()
}

// extractFonts prefers computed families, then declarations on heading-level
// selectors, then body, then everything else.
func (e *Extractor) extractFonts(doc *types.Document, decls []declaration) []string {
	fonts := newFontSet(e.cfg.MaxFonts)

	if doc.Computed != nil {
		for _, s := range doc.Computed.Fonts {
			fonts.add(fontFamilies(s.Value)...)
		}
	}

	var fontDecls []declaration
	for _, d := range decls {
		if d.property == "font-family" || d.property == "font" {
			fontDecls = append(fontDecls, d)
		}
	}
	sort.SliceStable(fontDecls, func(i, j int) bool {
		return fontRank(fontDecls[i].selector) < fontRank(fontDecls[j].selector)
	})
	for _, d := range fontDecls {
		if d.property == "font" {
			fonts.add(shorthandFamilies(d.value)...)
		} else {
			fonts.add(fontFamilies(d.value)...)
		}
	}

	return fonts.names
}
