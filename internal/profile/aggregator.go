// Package profile assembles brand profiles from the fetch, parse, visual,
// scoring and insight stages, one brand at a time or in batches.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/fetcher"
	"github.com/IshaanNene/BrandLens/internal/insights"
	"github.com/IshaanNene/BrandLens/internal/observability"
	"github.com/IshaanNene/BrandLens/internal/parser"
	"github.com/IshaanNene/BrandLens/internal/pipeline"
	"github.com/IshaanNene/BrandLens/internal/scoring"
	"github.com/IshaanNene/BrandLens/internal/types"
	"github.com/IshaanNene/BrandLens/internal/visual"
)

// Stage names, in pipeline order.
const (
	StageFetch    = "fetch"
	StageParse    = "parse"
	StagePages    = "pages"
	StageVisual   = "visual"
	StageScore    = "score"
	StageInsights = "insights"
)

// Fetcher acquires a page document. *fetcher.Chain implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Document, []types.FetchAttempt, error)
}

// Aggregator runs the profile pipeline.
type Aggregator struct {
	fetcher     Fetcher
	assets      AssetFetcher
	parser      *parser.Parser
	visual      *visual.Extractor
	insights    *insights.Generator
	keyPages    config.KeyPagesConfig
	concurrency int
	closers     []func() error
	logger      *slog.Logger
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithInsights sets the insight generator. Without one the insights stage
// is skipped.
func WithInsights(g *insights.Generator) Option {
	return func(a *Aggregator) { a.insights = g }
}

// WithCloser registers a cleanup function run by Close.
func WithCloser(fn func() error) Option {
	return func(a *Aggregator) { a.closers = append(a.closers, fn) }
}

// New creates an aggregator over an existing fetcher.
func New(cfg *config.Config, f Fetcher, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     f,
		parser:      parser.New(cfg.Parser, logger),
		visual:      visual.New(cfg.Visual, logger),
		keyPages:    cfg.KeyPages,
		concurrency: cfg.Batch.Concurrency,
		logger:      logger.With("component", "aggregator"),
	}
	if af, ok := f.(AssetFetcher); ok {
		a.assets = af
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	if a.keyPages.Concurrency < 1 {
		a.keyPages.Concurrency = 1
	}
	return a
}

// NewFromConfig builds the fetch chain and the AI client from cfg. A
// missing AI credential is not an error; the insights stage then follows
// ai.mode.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Aggregator, error) {
	chain, err := fetcher.NewChainFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build fetch chain: %w", err)
	}

	client, err := insights.NewClient(ctx, cfg.AI, logger)
	switch {
	case errors.Is(err, types.ErrNoCredentials):
		logger.Info("AI insights disabled", "provider", cfg.AI.Provider, "mode", cfg.AI.Mode)
	case err != nil:
		chain.Close()
		return nil, fmt.Errorf("build AI client: %w", err)
	}

	opts := []Option{
		WithInsights(insights.NewGenerator(client, cfg.AI, logger)),
		WithCloser(chain.Close),
	}
	if client != nil {
		opts = append(opts, WithCloser(client.Close))
	}
	return New(cfg, chain, logger, opts...), nil
}

// Close releases the fetcher and AI client.
func (a *Aggregator) Close() error {
	var first error
	for _, fn := range a.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Profile analyzes one brand. It never returns nil; failures are recorded
// on the profile.
func (a *Aggregator) Profile(ctx context.Context, brand string) *types.BrandProfile {
	return a.profile(ctx, brand, nil)
}

func (a *Aggregator) profile(ctx context.Context, brand string, onStage pipeline.TransitionFunc) *types.BrandProfile {
	start := time.Now()
	p := &types.BrandProfile{URL: brand, AnalyzedAt: start.UTC()}

	target, err := NormalizeBrand(brand)
	if err != nil {
		a.fail(p, err)
	} else {
		p.URL = target.URL
		run := &pipeline.Run{URL: target.URL, BrandHint: target.NameHint, Profile: p}
		pl := a.pipeline()
		if onStage != nil {
			pl.OnTransition(onStage)
		}
		if err := pl.Process(ctx, run); err != nil {
			a.fail(p, err)
		} else {
			p.Status = types.StatusSuccess
		}
	}

	p.DurationMs = time.Since(start).Milliseconds()
	observability.ProfilesTotal.WithLabelValues(string(p.Status)).Inc()
	a.logger.Info("profile complete",
		"url", p.URL,
		"status", p.Status,
		"quality", p.QualityScore,
		"duration", time.Since(start),
	)
	return p
}

// fail marks p failed and clears everything a later stage may have set.
func (a *Aggregator) fail(p *types.BrandProfile, err error) {
	p.Status = types.StatusFailed
	p.FailureReason = reason(err)
	p.StructuredContent = nil
	p.VisualAssets = nil
	p.Insights = nil
	p.ConfidenceScores = nil
	p.QualityScore = 0
	p.Grade = ""
}

func reason(err error) string {
	if types.IsFatal(err) {
		return types.FailureReason(err)
	}
	var se *types.StageError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s interrupted: %v", se.Stage, se.Err)
	}
	return err.Error()
}

func (a *Aggregator) pipeline() *pipeline.Pipeline {
	pl := pipeline.New(a.logger)
	pl.Use(pipeline.StageFunc{StageName: StageFetch, Fn: a.fetch})
	pl.Use(pipeline.StageFunc{StageName: StageParse, Fn: a.parse})
	if a.keyPages.Enabled && (a.keyPages.MaxPages > 0 || a.keyPages.Manifest) {
		pl.Use(pipeline.StageFunc{StageName: StagePages, Fn: a.readKeyPages})
	}
	pl.Use(pipeline.StageFunc{StageName: StageVisual, Fn: a.extractVisual})
	pl.Use(pipeline.StageFunc{StageName: StageScore, Fn: a.score})
	if a.insights != nil {
		pl.Use(pipeline.StageFunc{StageName: StageInsights, Fn: a.generateInsights})
	}
	return pl
}

func (a *Aggregator) fetch(ctx context.Context, run *pipeline.Run) error {
	req, err := types.NewRequest(run.URL)
	if err != nil {
		return &types.ExtractionFailedError{URL: run.URL, Last: err}
	}
	req.Brand = run.Profile.URL
	req.NameHint = run.BrandHint

	doc, attempts, err := a.fetcher.Fetch(ctx, req)
	run.Profile.FetchAttempts = attempts
	if err != nil {
		if !types.IsFatal(err) {
			err = &types.ExtractionFailedError{URL: run.URL, Attempts: attempts, Last: err}
		}
		return err
	}
	run.Document = doc
	run.Profile.ExtractionMethod = doc.Method
	if doc.FinalURL != "" {
		run.Profile.URL = doc.FinalURL
	}
	if doc.ConsentDismissal != "" && doc.ConsentDismissal != fetcher.DismissedNone {
		a.logger.Debug("consent dialog dismissed", "url", run.URL, "via", doc.ConsentDismissal)
	}
	return nil
}

func (a *Aggregator) parse(_ context.Context, run *pipeline.Run) error {
	content, err := a.parser.Parse(run.Document)
	if err != nil && types.IsFatal(err) {
		return err
	}
	run.Profile.StructuredContent = content

	run.Profile.BrandNameGuess = run.BrandHint
	if run.Profile.BrandNameGuess == "" {
		run.Profile.BrandNameGuess = parser.GuessBrandName(content, hostOf(run.Profile.URL))
	}
	return err
}

func (a *Aggregator) extractVisual(_ context.Context, run *pipeline.Run) error {
	assets, err := a.visual.Extract(run.Document)
	if !assets.Empty() {
		run.Profile.VisualAssets = assets
	}
	return err
}

func (a *Aggregator) score(_ context.Context, run *pipeline.Run) error {
	res := scoring.Score(run.Profile.URL, run.Profile.StructuredContent, run.Profile.VisualAssets)
	run.Profile.ConfidenceScores = res.Confidence
	run.Profile.QualityScore = res.Quality
	run.Profile.Grade = res.Grade
	return nil
}

func (a *Aggregator) generateInsights(ctx context.Context, run *pipeline.Run) error {
	ins, err := a.insights.Generate(ctx, insights.Input{
		URL:        run.Profile.URL,
		BrandName:  run.Profile.BrandNameGuess,
		Content:    run.Profile.StructuredContent,
		Visual:     run.Profile.VisualAssets,
		Confidence: run.Profile.ConfidenceScores,
		Doc:        run.Document,
	})
	run.Profile.Insights = ins
	return err
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
