package fetcher

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// styleSampleJS samples computed colors from brand-salient elements and
// font stacks from heading-level elements and the body. Values are
// returned raw; normalization happens in the visual extractor.
const styleSampleJS = `() => {
	const colorSelectors = [
		'header', 'nav', '[class*="brand" i]', '[class*="primary" i]',
		'[class*="logo" i]', '[id*="logo" i]', '[class*="color" i]',
		'button', '.btn', 'a', 'footer'
	];
	const fontSelectors = ['h1', 'h2', 'h3', '[class*="title" i]', 'body', 'p'];
	const colors = [];
	const fonts = [];
	const seen = new Set();
	for (const sel of colorSelectors) {
		let nodes = [];
		try { nodes = Array.from(document.querySelectorAll(sel)).slice(0, 8); } catch (e) { continue; }
		for (const el of nodes) {
			const cs = window.getComputedStyle(el);
			for (const [prop, value] of [
				['background-color', cs.backgroundColor],
				['color', cs.color],
				['border-color', cs.borderTopColor]
			]) {
				const key = sel + '|' + prop + '|' + value;
				if (!value || seen.has(key)) continue;
				seen.add(key);
				colors.push({ selector: sel, property: prop, value: value });
			}
		}
	}
	for (const sel of fontSelectors) {
		const el = document.querySelector(sel);
		if (!el) continue;
		fonts.push({ selector: sel, property: 'font-family', value: window.getComputedStyle(el).fontFamily });
	}
	return JSON.stringify({ colors: colors, fonts: fonts });
}`

// sampleStyles reads computed styles from a laid-out page.
func sampleStyles(page *rod.Page) (*types.ComputedStyles, error) {
	res, err := page.Eval(styleSampleJS)
	if err != nil {
		return nil, fmt.Errorf("style sampling: %w", err)
	}
	var styles types.ComputedStyles
	if err := json.Unmarshal([]byte(res.Value.Str()), &styles); err != nil {
		return nil, fmt.Errorf("decode style sample: %w", err)
	}
	return &styles, nil
}

const navigationStatusJS = `() => {
	const entries = performance.getEntriesByType('navigation');
	return entries.length > 0 && entries[0].responseStatus ? entries[0].responseStatus : 0;
}`

// navigationStatus reads the main document's HTTP status. Zero means unknown.
func navigationStatus(page *rod.Page) int {
	res, err := page.Eval(navigationStatusJS)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}
