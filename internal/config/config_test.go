package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.AI.Mode != ModeStrict {
		t.Errorf("default ai.mode = %q, want strict", cfg.AI.Mode)
	}
	if !strings.HasPrefix(cfg.Fetch.UserAgent, "BrandLens/") {
		t.Errorf("user agent %q is not descriptive", cfg.Fetch.UserAgent)
	}
	if cfg.Visual.MaxColors != 8 || cfg.Parser.MaxTextLength != 5000 {
		t.Errorf("unexpected caps: colors=%d text=%d", cfg.Visual.MaxColors, cfg.Parser.MaxTextLength)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.AI.Mode = "lenient" }, "ai.mode"},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
		{"bad strategy", func(c *Config) { c.Fetch.Strategies = []string{"static", "ftp"} }, "fetch.strategies"},
		{"no strategies", func(c *Config) { c.Fetch.Strategies = nil }, "fetch.strategies"},
		{"zero fetch timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "fetch.timeout"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad storage", func(c *Config) { c.Storage.Type = "parquet" }, "storage.type"},
		{"mongo without uri", func(c *Config) { c.Storage.Type = "mongodb" }, "mongo_uri"},
		{"custom without endpoint", func(c *Config) { c.AI.Provider = "custom" }, "ai.endpoint"},
		{"proxy without urls", func(c *Config) { c.Fetch.Proxy.Enabled = true }, "fetch.proxy.urls"},
		{"too many key pages", func(c *Config) { c.KeyPages.MaxPages = 20 }, "key_pages.max_pages"},
		{"bad control url", func(c *Config) { c.Render.ControlURL = "ftp://x" }, "render.control_url"},
		{"rendered only but disabled", func(c *Config) {
			c.Render.Enabled = false
			c.Fetch.Strategies = []string{"rendered"}
		}, "render.enabled"},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := Validate(cfg)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err.Error(), tt.want)
		}
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brandlens.yaml")
	yaml := `
fetch:
  timeout: 5s
ai:
  mode: best_effort
  provider: gemini
batch:
  concurrency: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BRANDLENS_BATCH_CONCURRENCY", "7")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("fetch.timeout = %v, want 5s", cfg.Fetch.Timeout)
	}
	if cfg.AI.Mode != ModeBestEffort {
		t.Errorf("ai.mode = %q", cfg.AI.Mode)
	}
	if cfg.Batch.Concurrency != 7 {
		t.Errorf("env override not applied: concurrency = %d", cfg.Batch.Concurrency)
	}
	if cfg.AI.APIKey != "test-key" {
		t.Errorf("api key fallback not applied: %q", cfg.AI.APIKey)
	}
	if cfg.Render.Timeout != 45*time.Second {
		t.Errorf("untouched default lost: render.timeout = %v", cfg.Render.Timeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}
