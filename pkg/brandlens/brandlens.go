// Package brandlens provides a public SDK for embedding BrandLens as a library.
//
// Example usage:
//
//	client, err := brandlens.New(ctx,
//	    brandlens.WithConcurrency(4),
//	    brandlens.WithAI("gemini", os.Getenv("GEMINI_API_KEY")),
//	    brandlens.WithMode(brandlens.ModeBestEffort),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	p := client.Profile(ctx, "stripe.com")
//	fmt.Println(p.BrandNameGuess, p.Grade)
package brandlens

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/profile"
	"github.com/IshaanNene/BrandLens/internal/progress"
	"github.com/IshaanNene/BrandLens/internal/storage"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Re-exported result types.
type (
	Profile       = types.BrandProfile
	Content       = types.StructuredContent
	VisualAssets  = types.VisualAssets
	Insights      = types.Insights
	BatchResult   = profile.BatchResult
	Failure       = profile.Failure
	ProgressEvent = progress.Event
)

// AI modes.
const (
	ModeStrict     = config.ModeStrict
	ModeBestEffort = config.ModeBestEffort
)

// Client is the high-level API for using BrandLens as a library.
type Client struct {
	cfg    *config.Config
	agg    *profile.Aggregator
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	cfg    *config.Config
	logger *slog.Logger
}

// WithConfig replaces the default configuration. Later options still apply.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		if cfg != nil {
			c := *cfg
			s.cfg = &c
		}
	}
}

// WithConcurrency sets how many brands a batch analyzes in parallel.
func WithConcurrency(n int) Option {
	return func(s *settings) { s.cfg.Batch.Concurrency = n }
}

// WithMode sets the AI failure mode, ModeStrict or ModeBestEffort.
func WithMode(mode string) Option {
	return func(s *settings) { s.cfg.AI.Mode = mode }
}

// WithAI selects the insight provider and its credential.
func WithAI(provider, apiKey string) Option {
	return func(s *settings) {
		s.cfg.AI.Provider = provider
		s.cfg.AI.APIKey = apiKey
	}
}

// WithAIEndpoint sets the base URL for ollama, openai-compatible or custom providers.
func WithAIEndpoint(endpoint string) Option {
	return func(s *settings) { s.cfg.AI.Endpoint = endpoint }
}

// WithModels sets the model used at each tier.
func WithModels(lite, standard, advanced string) Option {
	return func(s *settings) {
		s.cfg.AI.Models = config.ModelTiers{Lite: lite, Standard: standard, Advanced: advanced}
	}
}

// WithFetchTimeout sets the static fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) { s.cfg.Fetch.Timeout = d }
}

// WithoutRender disables the headless browser strategy.
func WithoutRender() Option {
	return func(s *settings) { s.cfg.Render.Enabled = false }
}

// WithRemoteBrowser renders through an already running browser.
func WithRemoteBrowser(controlURL string) Option {
	return func(s *settings) { s.cfg.Render.ControlURL = controlURL }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.cfg.Fetch.UserAgent = ua }
}

// WithProxy enables proxy rotation with the given proxy URLs.
func WithProxy(urls ...string) Option {
	return func(s *settings) {
		s.cfg.Fetch.Proxy.Enabled = true
		s.cfg.Fetch.Proxy.URLs = urls
	}
}

// WithOutput sets the export format (json, jsonl, csv, mongodb) and path.
func WithOutput(format, path string) Option {
	return func(s *settings) {
		s.cfg.Storage.Type = format
		s.cfg.Storage.OutputPath = path
	}
}

// WithLogger sets the logger. By default only warnings are written to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithVerbose enables debug-level logging on the default logger.
func WithVerbose() Option {
	return func(s *settings) { s.cfg.Logging.Level = "debug" }
}

// New creates a Client. It fails on invalid configuration or when a
// fetch strategy cannot be built.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	s := &settings{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if err := config.Validate(s.cfg); err != nil {
		return nil, err
	}

	logger := s.logger
	if logger == nil {
		level := slog.LevelWarn
		if s.cfg.Logging.Level == "debug" {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	agg, err := profile.NewFromConfig(ctx, s.cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: s.cfg, agg: agg, logger: logger}, nil
}

// Profile analyzes one brand: a URL, bare domain or company name. It never
// returns nil; check Status and FailureReason.
func (c *Client) Profile(ctx context.Context, brand string) *Profile {
	return c.agg.Profile(ctx, brand)
}

// Batch analyzes brands concurrently. onProgress, if non-nil, receives a
// running event per stage and a final event per brand, possibly from
// several goroutines at once.
func (c *Client) Batch(ctx context.Context, brands []string, onProgress func(ProgressEvent)) *BatchResult {
	var reporter progress.Reporter
	if onProgress != nil {
		reporter = progress.Func(func(_ context.Context, ev progress.Event) { onProgress(ev) })
	}
	return c.agg.Batch(ctx, brands, profile.BatchOptions{Reporter: reporter})
}

// Export writes profiles to the sink chosen with WithOutput.
func (c *Client) Export(ctx context.Context, profiles []Profile) error {
	store, err := storage.New(c.cfg.Storage, c.logger)
	if err != nil {
		return err
	}
	if err := store.Store(ctx, profiles); err != nil {
		_ = store.Close()
		return err
	}
	return store.Close()
}

// Close releases the browser and AI client.
func (c *Client) Close() error {
	return c.agg.Close()
}
