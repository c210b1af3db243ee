package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/singleflight"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// RenderedFetcher is the escalation strategy: a full headless Chromium load.
// The browser process is shared and started lazily; each attempt gets its
// own incognito context and page, both closed before Fetch returns.
type RenderedFetcher struct {
	cfg      *config.RenderConfig
	profile  BrowserProfile
	host     browserHost
	consent  *consentDismisser
	logger   *slog.Logger
	starting singleflight.Group

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRenderedFetcher creates the rendered strategy. No browser is started
// until the first Fetch.
func NewRenderedFetcher(cfg *config.Config, logger *slog.Logger, proxyMgr *ProxyManager) *RenderedFetcher {
	logger = logger.With("component", "rendered_fetcher")
	profile := ProfileFromConfig(&cfg.Render)
	return &RenderedFetcher{
		cfg:     &cfg.Render,
		profile: profile,
		host: &rodHost{
			cfg:      &cfg.Render,
			profile:  profile,
			proxyMgr: proxyMgr,
			rotate:   cfg.Fetch.Proxy.RotateOnFail,
			logger:   logger,
		},
		consent: newConsentDismisser(logger),
		logger:  logger,
	}
}

// browserHost starts, checks and stops the shared browser.
type browserHost interface {
	start() (*rod.Browser, *launcher.Launcher, error)
	alive(b *rod.Browser) bool
	stop(b *rod.Browser, l *launcher.Launcher) error
}

// rodHost connects to render.control_url or launches a local browser.
type rodHost struct {
	cfg      *config.RenderConfig
	profile  BrowserProfile
	proxyMgr *ProxyManager
	rotate   bool
	logger   *slog.Logger
}

func (h *rodHost) start() (*rod.Browser, *launcher.Launcher, error) {
	controlURL := h.cfg.ControlURL
	if controlURL != "" && !strings.HasPrefix(controlURL, "ws") {
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve control url: %w", err)
		}
		controlURL = resolved
	}

	var l *launcher.Launcher
	if controlURL == "" {
		var proxy *url.URL
		if h.proxyMgr != nil {
			proxy = h.proxyMgr.Next()
		}
		var proxyArg string
		if proxy != nil {
			proxyArg = proxy.String()
		}
		l = h.profile.Launcher(proxyArg)
		launched, err := l.Launch()
		if err != nil {
			if h.rotate && proxy != nil {
				h.proxyMgr.MarkFailed(proxy, err)
			}
			return nil, nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = launched
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}
	h.logger.Info("browser ready",
		"remote", h.cfg.ControlURL != "",
		"stealth", h.profile.Stealth,
		"headless", h.profile.Headless,
	)
	return browser, l, nil
}

func (h *rodHost) alive(b *rod.Browser) bool {
	_, err := proto.BrowserGetVersion{}.Call(b.Timeout(2 * time.Second))
	return err == nil
}

func (h *rodHost) stop(b *rod.Browser, l *launcher.Launcher) error {
	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		l.Cleanup()
	}
	return err
}

// ensureBrowser returns the shared browser, starting it on first use and
// again after it has crashed or disconnected. Starting happens outside mu,
// and concurrent callers share one start.
func (rf *RenderedFetcher) ensureBrowser() (*rod.Browser, error) {
	rf.mu.Lock()
	current := rf.browser
	rf.mu.Unlock()
	if current != nil && rf.host.alive(current) {
		return current, nil
	}

	v, err, _ := rf.starting.Do("browser", func() (any, error) {
		rf.mu.Lock()
		if rf.browser != nil && rf.browser != current {
			b := rf.browser
			rf.mu.Unlock()
			return b, nil
		}
		stale, staleLauncher := rf.browser, rf.launcher
		rf.browser, rf.launcher = nil, nil
		rf.mu.Unlock()

		if stale != nil || staleLauncher != nil {
			rf.logger.Warn("browser disconnected, restarting")
			_ = rf.host.stop(stale, staleLauncher)
		}

		browser, l, err := rf.host.start()
		if err != nil {
			return nil, err
		}
		rf.mu.Lock()
		rf.browser, rf.launcher = browser, l
		rf.mu.Unlock()
		return browser, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rod.Browser), nil
}

// Fetch loads the page, dismisses consent overlays, samples computed
// styles and returns the rendered DOM.
func (rf *RenderedFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Document, error) {
	fail := func(status int, err error) error {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, types.ErrFetchTimeout) {
			err = fmt.Errorf("%w: %v", types.ErrFetchTimeout, err)
		}
		return &types.FetchError{URL: req.URLString(), Strategy: types.MethodRendered, StatusCode: status, Err: err}
	}

	start := time.Now()

	browser, err := rf.ensureBrowser()
	if err != nil {
		return nil, fail(0, err)
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fail(0, fmt.Errorf("incognito context: %w", err))
	}
	defer func() {
		if cerr := incognito.Close(); cerr != nil {
			rf.logger.Debug("close incognito context", "error", cerr)
		}
	}()

	base, err := rf.profile.NewPage(incognito)
	if err != nil {
		return nil, fail(0, err)
	}
	// Closed through the context-free handle so a cancelled attempt still
	// releases its target.
	defer func() { _ = base.Close() }()

	page := base.Context(ctx)

	if len(req.Headers) > 0 {
		headers := make([]string, 0, len(req.Headers)*2)
		for k, vals := range req.Headers {
			for _, v := range vals {
				headers = append(headers, k, v)
			}
		}
		if _, err := page.SetExtraHeaders(headers); err != nil {
			rf.logger.Debug("set extra headers", "error", err)
		}
	}

	waitIdle := page.WaitRequestIdle(rf.cfg.NetworkIdle, nil, nil, nil)

	if err := page.Navigate(req.URLString()); err != nil {
		return nil, fail(0, fmt.Errorf("navigate: %w", err))
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fail(0, fmt.Errorf("wait load: %w", err))
	}
	waitIdle()

	status := navigationStatus(page)
	if status >= 400 {
		return nil, fail(status, types.ErrFetchBlocked)
	}
	if status == 0 {
		status = 200
	}

	var dismissal string
	if rf.cfg.DismissConsent {
		dismissal = rf.consent.Dismiss(page)
	}

	if rf.cfg.SettleDelay > 0 {
		if err := page.WaitStable(rf.cfg.SettleDelay); err != nil && ctx.Err() != nil {
			return nil, fail(status, fmt.Errorf("wait stable: %w", err))
		}
	}

	computed, err := sampleStyles(page)
	if err != nil {
		rf.logger.Debug("computed style sampling failed", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fail(status, fmt.Errorf("read DOM: %w", err))
	}
	if VisibleTextLength([]byte(html)) == 0 {
		return nil, fail(status, types.ErrEmptyResponse)
	}
	if kind := DetectChallenge([]byte(html)); kind != "" {
		return nil, fail(status, fmt.Errorf("%w: %s challenge page", types.ErrFetchBlocked, kind))
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil && info.URL != "" {
		finalURL = info.URL
	}

	doc := types.NewRenderedDocument(req, status, []byte(html), finalURL, time.Since(start))
	doc.Computed = computed
	doc.ConsentDismissal = dismissal

	rf.logger.Debug("rendered fetch complete",
		"url", req.URLString(),
		"final_url", finalURL,
		"status", status,
		"consent", dismissal,
		"size", len(html),
		"duration", doc.FetchDuration,
	)

	return doc, nil
}

// Close shuts down the shared browser and its local process.
func (rf *RenderedFetcher) Close() error {
	rf.mu.Lock()
	b, l := rf.browser, rf.launcher
	rf.browser, rf.launcher = nil, nil
	rf.mu.Unlock()

	if b == nil && l == nil {
		return nil
	}
	return rf.host.stop(b, l)
}

// Type returns the strategy tag.
func (rf *RenderedFetcher) Type() types.ExtractionMethod { return types.MethodRendered }

// Timeout returns the per-attempt budget.
func (rf *RenderedFetcher) Timeout() time.Duration { return rf.cfg.Timeout }
