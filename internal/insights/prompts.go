package insights

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/IshaanNene/BrandLens/internal/types"
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

var prompts = template.Must(template.ParseFS(promptFiles, "prompts/*.tmpl"))

// Digest sizes, in runes of page body.
const (
	detailedBodyRunes   = 3000
	simplifiedBodyRunes = 800
	maxDigestHeadings   = 15
)

// promptData is the evidence handed to the templates.
type promptData struct {
	URL         string
	Brand       string
	Industry    string
	Title       string
	Description string
	Keywords    string
	Headings    []string
	Hero        string
	About       string
	Features    []string
	Navigation  string
	Colors      string
	Fonts       string
	Body        string
	Skeleton    string
}

func newPromptData(in Input, bodyRunes int) promptData {
	c := in.content()
	d := promptData{
		URL:         in.URL,
		Brand:       in.BrandName,
		Industry:    in.industry(),
		Title:       c.Title,
		Description: c.MetaDescription,
		Keywords:    strings.Join(c.MetaKeywords, ", "),
		Hero:        c.HeroText,
		About:       c.AboutText,
		Features:    c.Features,
		Navigation:  strings.Join(c.Navigation, ", "),
		Body:        truncate(digestBody(c), bodyRunes),
	}
	for i, h := range c.Headings {
		if i == maxDigestHeadings {
			break
		}
		d.Headings = append(d.Headings, fmt.Sprintf("H%d %s", h.Level, h.Text))
	}
	if in.Visual != nil {
		d.Colors = strings.Join(in.Visual.Hexes(), ", ")
		d.Fonts = strings.Join(in.Visual.Fonts, ", ")
	}
	return d
}

// digestBody prefers the markdown rendering of the main region, which keeps
// list and heading structure, over the flattened text.
func digestBody(c *types.StructuredContent) string {
	if strings.TrimSpace(c.Markdown) != "" {
		return c.Markdown
	}
	return c.MainText
}

func render(name string, data promptData) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return sb.String(), nil
}

func detailedPrompt(in Input) (string, error) {
	return render("detailed.tmpl", newPromptData(in, detailedBodyRunes))
}

func simplifiedPrompt(in Input) (string, error) {
	return render("simplified.tmpl", newPromptData(in, simplifiedBodyRunes))
}

func guidedPrompt(in Input) (string, error) {
	d := newPromptData(in, simplifiedBodyRunes)
	d.Skeleton = templateFor(d.Industry).skeleton()
	return render("guided.tmpl", d)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
