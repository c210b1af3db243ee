package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/observability"
	"github.com/IshaanNene/BrandLens/internal/profile"
	"github.com/IshaanNene/BrandLens/internal/progress"
	"github.com/IshaanNene/BrandLens/internal/storage"
)

var (
	brandsFile  string
	outputPath  string
	outputType  string
	aiMode      string
	concurrency int
	noRender    bool
	jobID       string
)

// profileCmd creates the "profile" subcommand.
func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [brand...]",
		Short: "Build brand profiles",
		Long: `Build a profile for each brand. A brand may be a URL, a bare domain
or a company name ("Acme Corp" is looked up at https://acme.com).`,
		Example: `  brandlens profile stripe.com https://shopify.com "Acme Corp"
  brandlens profile --file brands.txt --format csv --concurrency 8`,
		RunE: runProfile,
	}

	cmd.Flags().StringVar(&brandsFile, "file", "", "read brands from a file, one per line")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: json, jsonl, csv, mongodb")
	cmd.Flags().StringVar(&aiMode, "mode", "", "AI mode: strict or best_effort")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "brands analyzed in parallel")
	cmd.Flags().BoolVar(&noRender, "no-render", false, "disable the headless browser strategy")
	cmd.Flags().StringVar(&jobID, "job-id", "", "job identifier for progress events (default: random UUID)")

	return cmd
}

// runProfile executes the profile command.
func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	brands, err := collectBrands(args, brandsFile)
	if err != nil {
		return err
	}
	if len(brands) == 0 {
		return fmt.Errorf("no brands given; pass them as arguments or with --file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		srv := observability.StartServer(cfg.Metrics.Port, cfg.Metrics.Path, logger)
		defer srv.Close()
	}

	agg, err := profile.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer agg.Close()

	reporter, closeReporter := buildReporter(ctx, cfg, logger)
	defer closeReporter()

	logger.Info("starting batch",
		"brands", len(brands),
		"concurrency", cfg.Batch.Concurrency,
		"ai_mode", cfg.AI.Mode,
		"ai_provider", cfg.AI.Provider,
		"output", cfg.Storage.OutputPath,
		"format", cfg.Storage.Type,
	)

	start := time.Now()
	res := agg.Batch(ctx, brands, profile.BatchOptions{JobID: jobID, Reporter: reporter})

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	storeErr := store.Store(ctx, res.Profiles)
	if err := store.Close(); err != nil && storeErr == nil {
		storeErr = err
	}
	if storeErr != nil {
		return fmt.Errorf("export profiles: %w", storeErr)
	}

	fmt.Printf("\n✅ Batch %s complete in %s\n", res.JobID, time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Succeeded: %d\n", res.Succeeded)
	fmt.Printf("   Failed:    %d\n", res.Failed)
	for _, f := range res.Failures {
		fmt.Printf("     - %s: %s\n", f.Brand, f.Reason)
	}
	fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, cfg.Storage.Type)

	if res.Succeeded == 0 {
		return fmt.Errorf("all %d brands failed", res.Failed)
	}
	return nil
}

// buildReporter logs progress and, when progress.redis_addr is set, also
// publishes it to Redis.
func buildReporter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (progress.Reporter, func()) {
	reporters := progress.Multi{progress.NewLogReporter(logger)}
	if cfg.Progress.RedisAddr == "" {
		return reporters, func() {}
	}

	rr, err := progress.NewRedisReporter(ctx, cfg.Progress, logger)
	if err != nil {
		logger.Warn("redis progress disabled", "addr", cfg.Progress.RedisAddr, "error", err)
		return reporters, func() {}
	}
	return append(reporters, rr), func() { rr.Close() }
}

// collectBrands merges positional brands with those read from path.
// Blank lines and lines starting with # are skipped.
func collectBrands(args []string, path string) ([]string, error) {
	brands := append([]string{}, args...)
	if path == "" {
		return brands, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open brands file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		brands = append(brands, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read brands file: %w", err)
	}
	return brands, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if aiMode != "" {
		cfg.AI.Mode = strings.ToLower(aiMode)
	}
	if concurrency > 0 {
		cfg.Batch.Concurrency = concurrency
	}
	if noRender {
		cfg.Render.Enabled = false
	}
}
