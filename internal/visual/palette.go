package visual

import "github.com/IshaanNene/BrandLens/internal/types"

// palette accumulates colors in first-seen order, dropping placeholders and
// duplicates. Colors past the cap still mark existing entries corroborated.
type palette struct {
	limit   int
	index   map[string]int
	samples []types.ColorSample
}

func newPalette(limit int) *palette {
	return &palette{limit: limit, index: make(map[string]int)}
}

func (p *palette) add(hex, source string) {
	if IsPlaceholderColor(hex) {
		return
	}
	if i, ok := p.index[hex]; ok {
		if p.samples[i].Source != source {
			p.samples[i].Corroborated = true
		}
		return
	}
	if len(p.samples) >= p.limit {
		return
	}
	p.index[hex] = len(p.samples)
	p.samples = append(p.samples, types.ColorSample{Hex: hex, Source: source})
}

func (p *palette) addValue(value, source string) {
	for _, hex := range colorsInValue(value) {
		p.add(hex, source)
	}
}

func (p *palette) result() []types.ColorSample {
	if len(p.samples) == 0 {
		return nil
	}
	return p.samples
}
