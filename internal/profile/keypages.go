package profile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/BrandLens/internal/parser"
	"github.com/IshaanNene/BrandLens/internal/pipeline"
	"github.com/IshaanNene/BrandLens/internal/types"
	"github.com/IshaanNene/BrandLens/internal/visual"
)

// AssetFetcher retrieves small side resources. *fetcher.Chain implements it.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, rawURL string) ([]byte, error)
}

type keyPageResult struct {
	page    types.KeyPage
	content *types.StructuredContent
}

// readKeyPages follows same-site key pages linked from the homepage and
// reads the site manifest's theme color. Failures here never fail the
// profile; they are recorded on the key page entries.
func (a *Aggregator) readKeyPages(ctx context.Context, run *pipeline.Run) error {
	home := run.Profile.StructuredContent
	if home == nil {
		return nil
	}
	cfg := a.keyPages

	links := parser.FindKeyPages(run.Profile.URL, home.Links, cfg.ScanLinks, cfg.MaxPages)
	results := make([]keyPageResult, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, link := range links {
		g.Go(func() error {
			results[i] = a.readKeyPage(gctx, run, link)
			return nil
		})
	}

	var theme string
	if cfg.Manifest && a.assets != nil {
		if manifestURL := visual.ManifestURL(home.ManifestURL, run.Profile.URL); manifestURL != "" {
			g.Go(func() error {
				data, err := a.assets.FetchAsset(gctx, manifestURL)
				if err != nil {
					a.logger.Debug("no web app manifest", "url", manifestURL, "error", err)
					return nil
				}
				theme = visual.ManifestThemeColor(data)
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, r := range results {
		home.KeyPages = append(home.KeyPages, r.page)
		if r.content != nil {
			parser.MergeKeyPage(home, r.page.Kind, r.content)
		}
	}
	if theme != "" && run.Document != nil {
		run.Document.ManifestThemeColor = theme
	}

	if len(links) > 0 || theme != "" {
		a.logger.Debug("key pages read",
			"url", run.URL,
			"pages", len(links),
			"theme_color", theme,
		)
	}
	return nil
}

func (a *Aggregator) readKeyPage(ctx context.Context, run *pipeline.Run, link parser.KeyPageLink) keyPageResult {
	res := keyPageResult{page: types.KeyPage{URL: link.URL, Kind: link.Kind}}

	req, err := types.NewRequest(link.URL)
	if err != nil {
		res.page.Error = err.Error()
		return res
	}
	req.Brand = run.Profile.URL
	req.NameHint = run.BrandHint

	doc, _, err := a.fetcher.Fetch(ctx, req)
	if err != nil {
		res.page.Error = reason(err)
		a.logger.Debug("key page fetch failed", "url", link.URL, "kind", link.Kind, "error", err)
		return res
	}
	res.page.Method = doc.Method

	content, err := a.parser.Parse(doc)
	if err != nil {
		res.page.Error = err.Error()
	}
	res.content = content
	return res
}
