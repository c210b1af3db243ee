package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/publicsuffix"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// StaticFetcher is the lightweight strategy: one plain HTTP GET.
type StaticFetcher struct {
	client    *http.Client
	cfg       *config.FetchConfig
	proxyMgr  *ProxyManager
	userAgent string
	logger    *slog.Logger
}

// NewStaticFetcher creates the static strategy. proxyMgr may be nil.
func NewStaticFetcher(cfg *config.Config, logger *slog.Logger, proxyMgr *ProxyManager) (*StaticFetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetch.MaxIdleConns,
		MaxIdleConnsPerHost: max(cfg.Fetch.MaxIdleConns/2, 1),
		IdleConnTimeout:     cfg.Fetch.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Fetch.TLSInsecure,
		},
		DisableCompression: true, // decoded below, including brotli
	}
	if proxyMgr != nil {
		transport.Proxy = proxyMgr.ProxyFunc()
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.Fetch.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.Fetch.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.Fetch.MaxRedirects)
		}
		return nil
	}

	ua := cfg.Fetch.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent()
	}

	return &StaticFetcher{
		client: &http.Client{
			Transport:     transport,
			Jar:           jar,
			CheckRedirect: redirectPolicy,
		},
		cfg:       &cfg.Fetch,
		proxyMgr:  proxyMgr,
		userAgent: ua,
		logger:    logger.With("component", "static_fetcher"),
	}, nil
}

// Fetch performs the GET and validates the body.
func (f *StaticFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Document, error) {
	fail := func(status int, err error) error {
		return &types.FetchError{URL: req.URLString(), Strategy: types.MethodStatic, StatusCode: status, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URLString(), nil)
	if err != nil {
		return nil, fail(0, err)
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	var choice *proxyChoice
	if f.proxyMgr != nil {
		var pctx context.Context
		pctx, choice = withProxyChoice(ctx)
		httpReq = httpReq.WithContext(pctx)
	}

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fail(0, fmt.Errorf("%w: %v", types.ErrFetchTimeout, err))
		}
		if choice != nil && f.cfg.Proxy.RotateOnFail {
			f.proxyMgr.MarkFailed(choice.get(), err)
		}
		return nil, fail(0, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))
		return nil, fail(httpResp.StatusCode, types.ErrFetchBlocked)
	}

	decoded, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return nil, fail(httpResp.StatusCode, fmt.Errorf("decode body: %w", err))
	}
	defer decoded.Close()

	// The cap applies to decoded bytes; one extra byte tells us it was hit.
	var reader io.Reader = decoded
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(decoded, f.cfg.MaxBodySize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fail(httpResp.StatusCode, fmt.Errorf("%w: %v", types.ErrFetchTimeout, err))
		}
		return nil, fail(httpResp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if f.cfg.MaxBodySize > 0 && int64(len(body)) > f.cfg.MaxBodySize {
		body = body[:f.cfg.MaxBodySize]
		f.logger.Debug("body truncated", "url", req.URLString(), "max_body_size", f.cfg.MaxBodySize)
	}
	duration := time.Since(start)

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fail(httpResp.StatusCode, types.ErrEmptyResponse)
	}

	if kind := DetectChallenge(body); kind != "" {
		return nil, fail(httpResp.StatusCode, fmt.Errorf("%w: %s challenge page", types.ErrFetchBlocked, kind))
	}

	if n := VisibleTextLength(body); n < f.cfg.MinTextLength {
		f.logger.Debug("static body is a thin shell",
			"url", req.URLString(),
			"text_length", n,
			"min", f.cfg.MinTextLength,
		)
		return nil, fail(httpResp.StatusCode, types.ErrThinContent)
	}

	doc := types.NewStaticDocument(req, httpResp, body, duration)

	f.logger.Debug("fetch complete",
		"url", req.URLString(),
		"status", doc.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return doc, nil
}

// Close releases idle connections.
func (f *StaticFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the strategy tag.
func (f *StaticFetcher) Type() types.ExtractionMethod { return types.MethodStatic }

// Timeout returns the per-attempt budget.
func (f *StaticFetcher) Timeout() time.Duration { return f.cfg.Timeout }

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings. Closing the result
// does not close the underlying reader.
func decompressReader(resp *http.Response, reader io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return io.NopCloser(brotli.NewReader(reader)), nil
	default:
		return io.NopCloser(reader), nil
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
