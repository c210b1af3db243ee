package fetcher

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Consent dismissal outcomes recorded on the document.
const (
	DismissedBySelector = "selector"
	DismissedByKeyword  = "keyword"
	DismissedByEscape   = "escape"
	DismissedNone       = "none"
)

// acceptSelectors target accept buttons directly.
var acceptSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#accept-recommended-btn-handler",
	"button#L2AGLb",
	"[data-testid*='accept' i]",
	"[data-testid*='cookie' i] button",
	"button[id*='accept' i]",
	"button[class*='accept' i]",
	"button[id*='consent' i]",
	"button[class*='consent' i]",
	"button[aria-label*='accept' i]",
	"button[aria-label*='agree' i]",
	".cc-accept",
	".cc-allow",
	".cookie-accept",
}

// overlaySelectors match consent containers whose buttons are matched by label.
var overlaySelectors = []string{
	"[id*='cookie' i]",
	"[class*='cookie' i]",
	"[id*='consent' i]",
	"[class*='consent' i]",
	"[id*='privacy' i]",
	"[class*='privacy' i]",
	"[id*='gdpr' i]",
	"[class*='gdpr' i]",
	"[role='dialog']",
	"[aria-modal='true']",
}

const buttonSelector = "button, [role='button'], a[class*='btn'], input[type='button'], input[type='submit']"

// consentKeywords are matched against short visible button labels. Weak
// keywords only count inside a detected overlay, since on the open page
// "continue" or "close" usually mean something else.
var consentKeywords = []struct {
	text string
	weak bool
}{
	{"accept all cookies", false},
	{"accept all", false},
	{"accept cookies", false},
	{"agree and close", false},
	{"allow all", false},
	{"i understand", false},
	{"i agree", false},
	{"accept", false},
	{"agree", false},
	{"got it", false},
	{"continue", true},
	{"proceed", true},
	{"dismiss", true},
	{"close", true},
	{"ok", true},
}

// maxLabelLength bounds what counts as a button label rather than prose.
const maxLabelLength = 40

// MatchConsentLabel reports whether a button label inside a consent
// overlay reads as acceptance or dismissal.
func MatchConsentLabel(label string) bool {
	return matchLabel(label, true)
}

// MatchStrongConsentLabel is MatchConsentLabel without the weak keywords.
func MatchStrongConsentLabel(label string) bool {
	return matchLabel(label, false)
}

func matchLabel(label string, allowWeak bool) bool {
	l := strings.ToLower(strings.Join(strings.Fields(label), " "))
	l = strings.Trim(l, " .!×✕")
	if l == "" || len(l) > maxLabelLength {
		return false
	}
	for _, kw := range consentKeywords {
		if kw.weak && !allowWeak {
			continue
		}
		if l == kw.text || strings.HasPrefix(l, kw.text+" ") {
			return true
		}
	}
	return false
}

// consentDismisser runs the best-effort overlay pass on a loaded page.
type consentDismisser struct {
	logger     *slog.Logger
	maxScan    int
	actTimeout time.Duration
}

func newConsentDismisser(logger *slog.Logger) *consentDismisser {
	return &consentDismisser{
		logger:     logger.With("component", "consent"),
		maxScan:    40,
		actTimeout: 2 * time.Second,
	}
}

// Dismiss tries direct selectors, then label matching inside overlays and
// across the page. When an overlay is visible but nothing matched, it falls
// back to Escape plus a scroll. It never fails the fetch.
func (d *consentDismisser) Dismiss(page *rod.Page) string {
	if d.clickFirst(page, acceptSelectors) {
		return DismissedBySelector
	}

	overlaySeen := false
	for _, container := range overlaySelectors {
		overlays, err := page.Elements(container)
		if err != nil {
			continue
		}
		for i, overlay := range overlays {
			if i >= d.maxScan {
				break
			}
			if !d.visible(overlay) {
				continue
			}
			overlaySeen = true
			buttons, err := overlay.Elements(buttonSelector)
			if err != nil {
				continue
			}
			if d.clickMatching(buttons, MatchConsentLabel) {
				return DismissedByKeyword
			}
		}
	}

	if buttons, err := page.Elements(buttonSelector); err == nil && d.clickMatching(buttons, MatchStrongConsentLabel) {
		return DismissedByKeyword
	}

	return d.fallback(overlaySeen, func() error {
		if err := page.Keyboard.Press(input.Escape); err != nil {
			return err
		}
		_, _ = page.Eval(`() => { window.scrollBy(0, 600); window.scrollTo(0, 0); }`)
		return nil
	})
}

// fallback presses Escape only when an overlay was seen.
func (d *consentDismisser) fallback(overlaySeen bool, escape func() error) string {
	if !overlaySeen {
		return DismissedNone
	}
	if err := escape(); err != nil {
		d.logger.Debug("escape key failed", "error", err)
		return DismissedNone
	}
	return DismissedByEscape
}

func (d *consentDismisser) clickFirst(page *rod.Page, selectors []string) bool {
	for _, sel := range selectors {
		els, err := page.Elements(sel)
		if err != nil {
			continue
		}
		for i, el := range els {
			if i >= d.maxScan {
				break
			}
			if d.tryClick(el, nil) {
				d.logger.Debug("consent overlay dismissed", "selector", sel)
				return true
			}
		}
	}
	return false
}

func (d *consentDismisser) clickMatching(buttons rod.Elements, match func(string) bool) bool {
	for i, el := range buttons {
		if i >= d.maxScan {
			break
		}
		if d.tryClick(el, match) {
			return true
		}
	}
	return false
}

func (d *consentDismisser) tryClick(el *rod.Element, match func(string) bool) bool {
	el = el.Timeout(d.actTimeout)
	defer el.CancelTimeout()

	if !d.visible(el) {
		return false
	}
	if match != nil {
		label, err := el.Text()
		if err != nil {
			return false
		}
		if strings.TrimSpace(label) == "" {
			if v, err := el.Attribute("value"); err == nil && v != nil {
				label = *v
			}
		}
		if !match(label) {
			return false
		}
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		d.logger.Debug("consent click failed", "error", err)
		return false
	}
	return true
}

func (d *consentDismisser) visible(el *rod.Element) bool {
	ok, err := el.Visible()
	return err == nil && ok
}
