package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var richPage = `<!DOCTYPE html><html><head><title>Acme Corp</title></head><body>
<header><nav><a href="/">Home</a></nav></header>
<main><h1>Industrial anvils for every workshop</h1>
<p>` + strings.Repeat("Acme builds durable anvils and tools for professionals. ", 10) + `</p>
</main></body></html>`

const shellPage = `<!DOCTYPE html><html><head><title>App</title>
<script src="/bundle.js"></script></head><body><div id="root"></div>
<noscript>You need to enable JavaScript to run this app.</noscript></body></html>`

const challengePage = `<!DOCTYPE html><html><head><title>Just a moment...</title></head><body>
<div id="cf-browser-verification">Checking your browser before accessing the site.</div>
<script src="/cdn-cgi/challenge-platform/h/g/orchestrate/jsch/v1"></script></body></html>`

// --- Chain Tests ---

// stubFetcher is a scripted strategy.
type stubFetcher struct {
	method  types.ExtractionMethod
	timeout time.Duration
	fetch   func(ctx context.Context, req *types.Request) (*types.Document, error)
	calls   atomic.Int32
	closed  atomic.Bool
}

func (s *stubFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Document, error) {
	s.calls.Add(1)
	return s.fetch(ctx, req)
}
func (s *stubFetcher) Close() error { s.closed.Store(true); return nil }
func (s *stubFetcher) Type() types.ExtractionMethod { return s.method }
func (s *stubFetcher) Timeout() time.Duration { return s.timeout }

func hangUntilDeadline(ctx context.Context, _ *types.Request) (*types.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func serveDoc(html string) func(context.Context, *types.Request) (*types.Document, error) {
	return func(_ context.Context, req *types.Request) (*types.Document, error) {
		return types.NewRenderedDocument(req, 200, []byte(html), req.URLString(), time.Millisecond), nil
	}
}

func TestChainEscalatesToRenderedOnTimeout(t *testing.T) {
	static := &stubFetcher{method: types.MethodStatic, timeout: 20 * time.Millisecond, fetch: hangUntilDeadline}
	rendered := &stubFetcher{method: types.MethodRendered, timeout: time.Second, fetch: serveDoc(richPage)}

	chain := NewChain(testLogger, static, rendered)
	req, _ := types.NewRequest("https://acme.example")

	doc, attempts, err := chain.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != types.MethodRendered {
		t.Errorf("expected rendered method, got %q", doc.Method)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].Outcome != "timeout" {
		t.Errorf("first attempt outcome = %q, want timeout", attempts[0].Outcome)
	}
	if attempts[1].Outcome != "success" {
		t.Errorf("second attempt outcome = %q, want success", attempts[1].Outcome)
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	static := &stubFetcher{method: types.MethodStatic, timeout: time.Second, fetch: serveDoc(richPage)}
	rendered := &stubFetcher{method: types.MethodRendered, timeout: time.Second, fetch: serveDoc(richPage)}

	chain := NewChain(testLogger, static, rendered)
	req, _ := types.NewRequest("https://acme.example")

	doc, _, err := chain.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != types.MethodStatic {
		t.Errorf("expected static method, got %q", doc.Method)
	}
	if rendered.calls.Load() != 0 {
		t.Error("rendered strategy should not run after a static success")
	}
}

func TestChainAllFailReturnsLastReason(t *testing.T) {
	static := &stubFetcher{method: types.MethodStatic, timeout: time.Second,
		fetch: func(_ context.Context, req *types.Request) (*types.Document, error) {
			return nil, &types.FetchError{URL: req.URLString(), Strategy: types.MethodStatic, Err: types.ErrThinContent}
		}}
	rendered := &stubFetcher{method: types.MethodRendered, timeout: time.Second,
		fetch: func(_ context.Context, req *types.Request) (*types.Document, error) {
			return nil, &types.FetchError{URL: req.URLString(), Strategy: types.MethodRendered, StatusCode: 403, Err: types.ErrFetchBlocked}
		}}

	chain := NewChain(testLogger, static, rendered)
	req, _ := types.NewRequest("https://blocked.example")

	_, attempts, err := chain.Fetch(context.Background(), req)
	var efe *types.ExtractionFailedError
	if !errors.As(err, &efe) {
		t.Fatalf("expected ExtractionFailedError, got %v", err)
	}
	if !types.IsFatal(err) {
		t.Error("exhausted chain must be fatal")
	}
	if len(attempts) != 2 || len(efe.Attempts) != 2 {
		t.Errorf("expected 2 recorded attempts, got %d / %d", len(attempts), len(efe.Attempts))
	}
	if !strings.Contains(efe.Reason(), "HTTP 403") {
		t.Errorf("reason should carry the last failure, got %q", efe.Reason())
	}
	if static.calls.Load() != 1 || rendered.calls.Load() != 1 {
		t.Error("each strategy must run exactly once")
	}
}

func TestChainClosesStrategies(t *testing.T) {
	a := &stubFetcher{method: types.MethodStatic, timeout: time.Second, fetch: serveDoc(richPage)}
	b := &stubFetcher{method: types.MethodRendered, timeout: time.Second, fetch: serveDoc(richPage)}
	if err := NewChain(testLogger, a, b).Close(); err != nil {
		t.Fatal(err)
	}
	if !a.closed.Load() || !b.closed.Load() {
		t.Error("expected every strategy to be closed")
	}
}

func TestChainEmpty(t *testing.T) {
	req, _ := types.NewRequest("https://acme.example")
	if _, _, err := NewChain(testLogger).Fetch(context.Background(), req); !errors.Is(err, types.ErrNoStrategies) {
		t.Errorf("expected ErrNoStrategies, got %v", err)
	}
}

// --- Static Fetcher Tests ---

func newTestStatic(t *testing.T, mutate func(*config.Config)) *StaticFetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	f, err := NewStaticFetcher(cfg, testLogger, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestStaticFetchSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(richPage))
	}))
	defer srv.Close()

	f := newTestStatic(t, nil)
	req, _ := types.NewRequest(srv.URL)
	doc, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != types.MethodStatic || doc.StatusCode != 200 {
		t.Errorf("unexpected document: method=%q status=%d", doc.Method, doc.StatusCode)
	}
	if !strings.HasPrefix(gotUA, "BrandLens/") {
		t.Errorf("expected descriptive user agent, got %q", gotUA)
	}
}

func TestStaticFetchNon2xxIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestStatic(t, nil)
	req, _ := types.NewRequest(srv.URL)
	_, err := f.Fetch(context.Background(), req)
	if !errors.Is(err, types.ErrFetchBlocked) {
		t.Fatalf("expected ErrFetchBlocked, got %v", err)
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403 on the error, got %+v", fe)
	}
}

func TestStaticFetchChallengePageIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(challengePage))
	}))
	defer srv.Close()

	f := newTestStatic(t, nil)
	req, _ := types.NewRequest(srv.URL)
	_, err := f.Fetch(context.Background(), req)
	if !errors.Is(err, types.ErrFetchBlocked) {
		t.Fatalf("expected ErrFetchBlocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "cloudflare") {
		t.Errorf("expected challenge kind in error, got %v", err)
	}
}

func TestStaticFetchThinShell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shellPage))
	}))
	defer srv.Close()

	f := newTestStatic(t, nil)
	req, _ := types.NewRequest(srv.URL)
	if _, err := f.Fetch(context.Background(), req); !errors.Is(err, types.ErrThinContent) {
		t.Fatalf("expected ErrThinContent, got %v", err)
	}
}

func TestStaticFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestStatic(t, nil)
	req, _ := types.NewRequest(srv.URL)
	if _, err := f.Fetch(context.Background(), req); !errors.Is(err, types.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestStaticFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := newTestStatic(t, nil)
	req, _ := types.NewRequest(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := f.Fetch(ctx, req); !errors.Is(err, types.ErrFetchTimeout) {
		t.Fatalf("expected ErrFetchTimeout, got %v", err)
	}
}

func TestStaticFetchDecodesCompressedBodies(t *testing.T) {
	encoders := map[string]func([]byte) []byte{
		"gzip": func(b []byte) []byte {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			_, _ = zw.Write(b)
			_ = zw.Close()
			return buf.Bytes()
		},
		"br": func(b []byte) []byte {
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			_, _ = bw.Write(b)
			_ = bw.Close()
			return buf.Bytes()
		},
	}

	for enc, encode := range encoders {
		payload := encode([]byte(richPage))
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", enc)
			_, _ = w.Write(payload)
		}))

		f := newTestStatic(t, nil)
		req, _ := types.NewRequest(srv.URL)
		doc, err := f.Fetch(context.Background(), req)
		srv.Close()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", enc, err)
		}
		if !strings.Contains(string(doc.Body), "Acme Corp") {
			t.Errorf("%s: body was not decoded", enc)
		}
	}
}

func TestStaticFetchCapsDecodedBody(t *testing.T) {
	const limit = 64 << 10
	page := strings.Replace(richPage, "</p>", strings.Repeat("anvil ", 2_200_000/6)+"</p>", 1)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(page))
	_ = zw.Close()
	if buf.Len() >= limit {
		t.Fatalf("compressed payload too large for this test: %d bytes", buf.Len())
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestStatic(t, func(c *config.Config) { c.Fetch.MaxBodySize = limit })
	req, _ := types.NewRequest(srv.URL)
	doc, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Body) != limit {
		t.Errorf("decoded body is %d bytes, want it capped at %d", len(doc.Body), limit)
	}
	if !strings.Contains(string(doc.Body), "Acme Corp") {
		t.Error("capped body lost the page head")
	}
}

func TestStaticThenChainEscalatesOnThinShell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shellPage))
	}))
	defer srv.Close()

	static := newTestStatic(t, nil)
	rendered := &stubFetcher{method: types.MethodRendered, timeout: time.Second, fetch: serveDoc(richPage)}

	req, _ := types.NewRequest(srv.URL)
	doc, attempts, err := NewChain(testLogger, static, rendered).Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Method != types.MethodRendered {
		t.Errorf("expected rendered, got %q", doc.Method)
	}
	if attempts[0].Outcome != "page text too short" {
		t.Errorf("unexpected static outcome %q", attempts[0].Outcome)
	}
}

// --- Text / Consent / Proxy Tests ---

func TestVisibleTextLength(t *testing.T) {
	if n := VisibleTextLength([]byte(shellPage)); n != 0 {
		t.Errorf("shell page should have no visible text, got %d", n)
	}
	if n := VisibleTextLength([]byte(richPage)); n < 200 {
		t.Errorf("rich page text too short: %d", n)
	}
}

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ChallengeKind
	}{
		{"cloudflare", challengePage, ChallengeCloudflare},
		{"title only", `<html><head><title>Access Denied</title></head><body>Reference #18</body></html>`, ChallengeGeneric},
		{"hcaptcha widget", `<html><body><div class="h-captcha" data-sitekey="abc"></div></body></html>`, ChallengeHCaptcha},
		{"ordinary page", richPage, ""},
		{"long page with form captcha", richPage + strings.Repeat("<p>Contact our sales team today for a quote.</p>", 40) + `<div class="g-recaptcha"></div>`, ""},
		{"shell", shellPage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectChallenge([]byte(tt.body)); got != tt.want {
				t.Errorf("DetectChallenge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsentFallbackWithoutOverlay(t *testing.T) {
	d := newConsentDismisser(testLogger)
	pressed := 0
	escape := func() error { pressed++; return nil }

	if got := d.fallback(false, escape); got != DismissedNone {
		t.Errorf("no overlay: got %q, want %q", got, DismissedNone)
	}
	if pressed != 0 {
		t.Errorf("escape pressed %d times on a page without an overlay", pressed)
	}
	if got := d.fallback(true, escape); got != DismissedByEscape {
		t.Errorf("overlay: got %q, want %q", got, DismissedByEscape)
	}
	if got := d.fallback(true, func() error { return errors.New("detached") }); got != DismissedNone {
		t.Errorf("failed escape: got %q, want %q", got, DismissedNone)
	}
}

func TestMatchConsentLabel(t *testing.T) {
	tests := []struct {
		label  string
		want   bool
		strong bool
	}{
		{"Accept all", true, true},
		{"  ACCEPT ALL COOKIES ", true, true},
		{"Got it!", true, true},
		{"I agree", true, true},
		{"Agree and close", true, true},
		{"OK", true, false},
		{"Continue", true, false},
		{"Close", true, false},
		{"Manage preferences", false, false},
		{"Reject all", false, false},
		{"Accept the terms of our very long legal agreement here", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := MatchConsentLabel(tt.label); got != tt.want {
			t.Errorf("MatchConsentLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
		if got := MatchStrongConsentLabel(tt.label); got != tt.strong {
			t.Errorf("MatchStrongConsentLabel(%q) = %v, want %v", tt.label, got, tt.strong)
		}
	}
}

func TestProxyRotationAndCooldown(t *testing.T) {
	cfg := &config.ProxyConfig{
		Enabled:  true,
		Rotation: "round_robin",
		URLs:     []string{"http://p1:8080", "http://p2:8080"},
	}
	pm := NewProxyManager(cfg, testLogger)

	now := time.Now()
	pm.now = func() time.Time { return now }

	first, second := pm.Next(), pm.Next()
	if first == nil || second == nil || first.String() == second.String() {
		t.Fatalf("round robin should alternate, got %v then %v", first, second)
	}

	p1, _ := url.Parse("http://p1:8080")
	pm.MarkFailed(p1, errors.New("refused"))
	if pm.HealthyCount() != 1 {
		t.Fatalf("expected 1 healthy proxy, got %d", pm.HealthyCount())
	}
	for i := 0; i < 4; i++ {
		if got := pm.Next(); got.Host != "p2:8080" {
			t.Fatalf("benched proxy returned: %v", got)
		}
	}

	now = now.Add(proxyCooldown + time.Second)
	if pm.HealthyCount() != 2 {
		t.Errorf("proxy should recover after cooldown")
	}
}

func TestNewChainFromConfigSkipsDisabledRender(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Render.Enabled = false
	chain, err := NewChainFromConfig(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer chain.Close()
	got := chain.Strategies()
	if len(got) != 1 || got[0] != types.MethodStatic {
		t.Errorf("expected only static, got %v", got)
	}
}
