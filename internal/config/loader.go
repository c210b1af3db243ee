package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("BRANDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("brandlens")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".brandlens"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyKeyFallback(cfg)
	return cfg, nil
}

// applyKeyFallback picks up provider keys from their conventional env vars
// when no explicit ai.api_key was configured.
func applyKeyFallback(cfg *Config) {
	if cfg.AI.APIKey != "" {
		return
	}
	switch cfg.AI.Provider {
	case "gemini":
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	case "openai", "custom":
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// setDefaults registers default values in viper. Every key must be
// registered so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetch.user_agent", cfg.Fetch.UserAgent)
	v.SetDefault("fetch.timeout", cfg.Fetch.Timeout)
	v.SetDefault("fetch.max_body_size", cfg.Fetch.MaxBodySize)
	v.SetDefault("fetch.follow_redirects", cfg.Fetch.FollowRedirects)
	v.SetDefault("fetch.max_redirects", cfg.Fetch.MaxRedirects)
	v.SetDefault("fetch.min_text_length", cfg.Fetch.MinTextLength)
	v.SetDefault("fetch.tls_insecure", cfg.Fetch.TLSInsecure)
	v.SetDefault("fetch.idle_conn_timeout", cfg.Fetch.IdleConnTimeout)
	v.SetDefault("fetch.max_idle_conns", cfg.Fetch.MaxIdleConns)
	v.SetDefault("fetch.strategies", cfg.Fetch.Strategies)
	v.SetDefault("fetch.proxy.enabled", cfg.Fetch.Proxy.Enabled)
	v.SetDefault("fetch.proxy.rotation", cfg.Fetch.Proxy.Rotation)
	v.SetDefault("fetch.proxy.urls", cfg.Fetch.Proxy.URLs)
	v.SetDefault("fetch.proxy.rotate_on_fail", cfg.Fetch.Proxy.RotateOnFail)

	v.SetDefault("render.enabled", cfg.Render.Enabled)
	v.SetDefault("render.headless", cfg.Render.Headless)
	v.SetDefault("render.stealth", cfg.Render.Stealth)
	v.SetDefault("render.control_url", cfg.Render.ControlURL)
	v.SetDefault("render.timeout", cfg.Render.Timeout)
	v.SetDefault("render.network_idle", cfg.Render.NetworkIdle)
	v.SetDefault("render.settle_delay", cfg.Render.SettleDelay)
	v.SetDefault("render.dismiss_consent", cfg.Render.DismissConsent)
	v.SetDefault("render.window_width", cfg.Render.WindowWidth)
	v.SetDefault("render.window_height", cfg.Render.WindowHeight)

	v.SetDefault("parser.max_text_length", cfg.Parser.MaxTextLength)
	v.SetDefault("parser.max_links", cfg.Parser.MaxLinks)
	v.SetDefault("parser.max_images", cfg.Parser.MaxImages)
	v.SetDefault("parser.max_nav_items", cfg.Parser.MaxNavItems)

	v.SetDefault("visual.max_colors", cfg.Visual.MaxColors)
	v.SetDefault("visual.max_fonts", cfg.Visual.MaxFonts)

	v.SetDefault("key_pages.enabled", cfg.KeyPages.Enabled)
	v.SetDefault("key_pages.scan_links", cfg.KeyPages.ScanLinks)
	v.SetDefault("key_pages.max_pages", cfg.KeyPages.MaxPages)
	v.SetDefault("key_pages.concurrency", cfg.KeyPages.Concurrency)
	v.SetDefault("key_pages.manifest", cfg.KeyPages.Manifest)

	v.SetDefault("ai.mode", cfg.AI.Mode)
	v.SetDefault("ai.provider", cfg.AI.Provider)
	v.SetDefault("ai.api_key", cfg.AI.APIKey)
	v.SetDefault("ai.endpoint", cfg.AI.Endpoint)
	v.SetDefault("ai.models.lite", cfg.AI.Models.Lite)
	v.SetDefault("ai.models.standard", cfg.AI.Models.Standard)
	v.SetDefault("ai.models.advanced", cfg.AI.Models.Advanced)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.request_timeout", cfg.AI.RequestTimeout)

	v.SetDefault("batch.concurrency", cfg.Batch.Concurrency)

	v.SetDefault("progress.redis_addr", cfg.Progress.RedisAddr)
	v.SetDefault("progress.redis_password", cfg.Progress.RedisPassword)
	v.SetDefault("progress.redis_db", cfg.Progress.RedisDB)
	v.SetDefault("progress.key_prefix", cfg.Progress.KeyPrefix)
	v.SetDefault("progress.channel", cfg.Progress.Channel)
	v.SetDefault("progress.ttl", cfg.Progress.TTL)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.database", cfg.Storage.Database)
	v.SetDefault("storage.collection", cfg.Storage.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
