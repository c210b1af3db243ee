package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// maxAssetSize caps small side resources such as web app manifests.
const maxAssetSize = 256 << 10

// AssetFetcher retrieves a small non-page resource with a plain GET.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, rawURL string) ([]byte, error)
}

// FetchAsset GETs rawURL with the static client. Unlike Fetch it applies no
// page checks; the body is capped at 256 KiB.
func (f *StaticFetcher) FetchAsset(ctx context.Context, rawURL string) ([]byte, error) {
	fail := func(status int, err error) error {
		return &types.FetchError{URL: rawURL, Strategy: types.MethodStatic, StatusCode: status, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fail(0, err)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "application/manifest+json,application/json;q=0.9,*/*;q=0.5")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fail(0, fmt.Errorf("%w: %v", types.ErrFetchTimeout, err))
		}
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fail(resp.StatusCode, types.ErrFetchBlocked)
	}

	decoded, err := decompressReader(resp, resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("decode body: %w", err))
	}
	defer decoded.Close()

	body, err := io.ReadAll(io.LimitReader(decoded, maxAssetSize))
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if len(body) == 0 {
		return nil, fail(resp.StatusCode, types.ErrEmptyResponse)
	}
	return body, nil
}

// FetchAsset delegates to the first strategy that can fetch plain assets.
func (c *Chain) FetchAsset(ctx context.Context, rawURL string) ([]byte, error) {
	for _, s := range c.strategies {
		if af, ok := s.(AssetFetcher); ok {
			return af.FetchAsset(ctx, rawURL)
		}
	}
	return nil, fmt.Errorf("fetch %s: no strategy fetches assets", rawURL)
}
