package fetcher

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/BrandLens/internal/config"
)

// BrowserProfile controls how the rendered strategy presents itself.
type BrowserProfile struct {
	Headless     bool
	Stealth      bool
	WindowWidth  int
	WindowHeight int
	Language     string
}

// ProfileFromConfig derives the browser profile from render settings.
func ProfileFromConfig(cfg *config.RenderConfig) BrowserProfile {
	return BrowserProfile{
		Headless:     cfg.Headless,
		Stealth:      cfg.Stealth,
		WindowWidth:  cfg.WindowWidth,
		WindowHeight: cfg.WindowHeight,
		Language:     "en-US",
	}
}

// Launcher builds a local Chromium launcher with automation markers removed.
func (p BrowserProfile) Launcher(proxyURL string) *launcher.Launcher {
	l := launcher.New().
		Headless(p.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("lang", p.Language).
		Set("window-size", fmt.Sprintf("%d,%d", p.WindowWidth, p.WindowHeight))

	if proxyURL != "" {
		l = l.Proxy(proxyURL)
	}
	return l
}

// NewPage opens a page in the given browser context, stealth-patched when
// enabled, and sizes the viewport so layout-dependent styles are realistic.
func (p BrowserProfile) NewPage(b *rod.Browser) (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if p.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             p.WindowWidth,
		Height:            p.WindowHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return page, nil
}
