package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/BrandLens/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "brandlens",
		Short: "BrandLens: brand profile extraction",
		Long: `BrandLens builds a structured brand profile from a company's website.

For each brand it:
  • fetches the homepage, escalating from a static request to a headless browser
  • extracts title, description, headings, navigation, contact and social links
  • detects the logo, favicon, color palette and fonts
  • scores how much trustworthy signal was found
  • generates strategic insights with an LLM, or deterministically`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("BrandLens %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Fetch:\n")
			fmt.Printf("  Strategies:        %s\n", strings.Join(cfg.Fetch.Strategies, " -> "))
			fmt.Printf("  Timeout:           %s\n", cfg.Fetch.Timeout)
			fmt.Printf("  Min Text Length:   %d\n", cfg.Fetch.MinTextLength)
			fmt.Printf("  Proxies:           %d (%s)\n", len(cfg.Fetch.Proxy.URLs), cfg.Fetch.Proxy.Rotation)
			fmt.Printf("\nRender:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Render.Enabled)
			fmt.Printf("  Headless:          %v\n", cfg.Render.Headless)
			fmt.Printf("  Stealth:           %v\n", cfg.Render.Stealth)
			fmt.Printf("  Remote Browser:    %s\n", orNone(cfg.Render.ControlURL))
			fmt.Printf("  Timeout:           %s\n", cfg.Render.Timeout)
			fmt.Printf("\nAI:\n")
			fmt.Printf("  Mode:              %s\n", cfg.AI.Mode)
			fmt.Printf("  Provider:          %s\n", cfg.AI.Provider)
			fmt.Printf("  API Key:           %s\n", mask(cfg.AI.APIKey))
			fmt.Printf("  Models:            lite=%s standard=%s advanced=%s\n", cfg.AI.Models.Lite, cfg.AI.Models.Standard, cfg.AI.Models.Advanced)
			fmt.Printf("  Request Timeout:   %s\n", cfg.AI.RequestTimeout)
			fmt.Printf("\nBatch:\n")
			fmt.Printf("  Concurrency:       %d\n", cfg.Batch.Concurrency)
			fmt.Printf("\nProgress:\n")
			fmt.Printf("  Redis:             %s\n", orNone(cfg.Progress.RedisAddr))
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// loadConfig reads .env, then the config file and environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger from the logging section.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func mask(key string) string {
	switch {
	case key == "":
		return "(none)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "…" + key[len(key)-4:]
	}
}
