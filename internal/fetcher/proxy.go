package fetcher

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/BrandLens/internal/config"
)

// proxyCooldown is how long a failed proxy sits out before it is tried again.
const proxyCooldown = 2 * time.Minute

// ProxyManager rotates outbound proxies for both fetch strategies.
type ProxyManager struct {
	proxies  []*proxyEntry
	rotation string
	index    atomic.Int64
	mu       sync.RWMutex
	logger   *slog.Logger
	now      func() time.Time
}

type proxyEntry struct {
	URL         *url.URL
	FailedUntil time.Time
	LastErr     error
}

// NewProxyManager creates a ProxyManager from configuration.
func NewProxyManager(cfg *config.ProxyConfig, logger *slog.Logger) *ProxyManager {
	pm := &ProxyManager{
		proxies:  make([]*proxyEntry, 0, len(cfg.URLs)),
		rotation: cfg.Rotation,
		logger:   logger.With("component", "proxy_manager"),
		now:      time.Now,
	}

	for _, rawURL := range cfg.URLs {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			pm.logger.Warn("invalid proxy URL", "url", rawURL, "error", err)
			continue
		}
		pm.proxies = append(pm.proxies, &proxyEntry{URL: u})
	}

	pm.logger.Info("proxy manager initialized", "count", len(pm.proxies), "rotation", cfg.Rotation)
	return pm
}

type proxyChoiceKey struct{}

// proxyChoice records which proxy a request was dialed through.
type proxyChoice struct {
	mu  sync.Mutex
	url *url.URL
}

func (c *proxyChoice) get() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// withProxyChoice attaches a recorder that ProxyFunc fills in.
func withProxyChoice(ctx context.Context) (context.Context, *proxyChoice) {
	c := &proxyChoice{}
	return context.WithValue(ctx, proxyChoiceKey{}, c), c
}

// ProxyFunc returns an http.Transport-compatible proxy function.
func (pm *ProxyManager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		u := pm.Next() // nil means a direct connection
		if c, ok := req.Context().Value(proxyChoiceKey{}).(*proxyChoice); ok {
			c.mu.Lock()
			c.url = u
			c.mu.Unlock()
		}
		return u, nil
	}
}

// Next returns the next available proxy URL, or nil when none is usable.
func (pm *ProxyManager) Next() *url.URL {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	healthy := pm.healthy()
	if len(healthy) == 0 {
		return nil
	}

	if pm.rotation == "random" {
		return healthy[rand.Intn(len(healthy))].URL
	}
	idx := pm.index.Add(1) % int64(len(healthy))
	return healthy[idx].URL
}

// MarkFailed benches a proxy for the cooldown period.
func (pm *ProxyManager) MarkFailed(proxyURL *url.URL, err error) {
	if proxyURL == nil {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for _, p := range pm.proxies {
		if p.URL.String() == proxyURL.String() {
			p.FailedUntil = pm.now().Add(proxyCooldown)
			p.LastErr = err
			pm.logger.Warn("proxy marked unhealthy", "proxy", proxyURL.Host, "error", err)
			return
		}
	}
}

// HealthyCount returns the number of proxies not cooling down.
func (pm *ProxyManager) HealthyCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.healthy())
}

func (pm *ProxyManager) healthy() []*proxyEntry {
	now := pm.now()
	out := make([]*proxyEntry, 0, len(pm.proxies))
	for _, p := range pm.proxies {
		if !now.Before(p.FailedUntil) {
			out = append(out, p)
		}
	}
	return out
}
