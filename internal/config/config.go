package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// RepoURL is advertised in the static fetcher's user agent.
const RepoURL = "https://github.com/IshaanNene/BrandLens"

// AI operating modes.
const (
	ModeStrict     = "strict"
	ModeBestEffort = "best_effort"
)

// Config is the root configuration for BrandLens.
type Config struct {
	Fetch    FetchConfig    `mapstructure:"fetch"    yaml:"fetch"`
	Render   RenderConfig   `mapstructure:"render"   yaml:"render"`
	Parser   ParserConfig   `mapstructure:"parser"   yaml:"parser"`
	Visual   VisualConfig   `mapstructure:"visual"   yaml:"visual"`
	KeyPages KeyPagesConfig `mapstructure:"key_pages" yaml:"key_pages"`
	AI       AIConfig       `mapstructure:"ai"       yaml:"ai"`
	Batch    BatchConfig    `mapstructure:"batch"    yaml:"batch"`
	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// FetchConfig controls the static strategy and the chain order.
type FetchConfig struct {
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"           validate:"gt=0"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"     validate:"gt=0"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"     validate:"gte=0"`
	MinTextLength   int           `mapstructure:"min_text_length"   yaml:"min_text_length"   validate:"gte=0"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Strategies      []string      `mapstructure:"strategies"        yaml:"strategies"        validate:"min=1,dive,oneof=static rendered"`
	Proxy           ProxyConfig   `mapstructure:"proxy"             yaml:"proxy"`
}

// ProxyConfig controls proxy rotation.
type ProxyConfig struct {
	Enabled      bool     `mapstructure:"enabled"        yaml:"enabled"`
	Rotation     string   `mapstructure:"rotation"       yaml:"rotation"`
	URLs         []string `mapstructure:"urls"           yaml:"urls"`
	RotateOnFail bool     `mapstructure:"rotate_on_fail" yaml:"rotate_on_fail"`
}

// RenderConfig controls the headless browser strategy.
type RenderConfig struct {
	Enabled        bool          `mapstructure:"enabled"         yaml:"enabled"`
	Headless       bool          `mapstructure:"headless"        yaml:"headless"`
	Stealth        bool          `mapstructure:"stealth"         yaml:"stealth"`
	ControlURL     string        `mapstructure:"control_url"     yaml:"control_url"`
	Timeout        time.Duration `mapstructure:"timeout"         yaml:"timeout"         validate:"gt=0"`
	NetworkIdle    time.Duration `mapstructure:"network_idle"    yaml:"network_idle"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"    yaml:"settle_delay"`
	DismissConsent bool          `mapstructure:"dismiss_consent" yaml:"dismiss_consent"`
	WindowWidth    int           `mapstructure:"window_width"    yaml:"window_width"    validate:"gte=320"`
	WindowHeight   int           `mapstructure:"window_height"   yaml:"window_height"   validate:"gte=240"`
}

// ParserConfig bounds the parser's output.
type ParserConfig struct {
	MaxTextLength int `mapstructure:"max_text_length" yaml:"max_text_length" validate:"gte=100"`
	MaxLinks      int `mapstructure:"max_links"       yaml:"max_links"       validate:"gte=0"`
	MaxImages     int `mapstructure:"max_images"      yaml:"max_images"      validate:"gte=0"`
	MaxNavItems   int `mapstructure:"max_nav_items"   yaml:"max_nav_items"   validate:"gte=0"`
}

// VisualConfig bounds the visual extractor's output.
type VisualConfig struct {
	MaxColors int `mapstructure:"max_colors" yaml:"max_colors" validate:"gte=1,lte=32"`
	MaxFonts  int `mapstructure:"max_fonts"  yaml:"max_fonts"  validate:"gte=1,lte=16"`
}

// KeyPagesConfig bounds the follow-up pass over same-site about, products,
// news, contact and careers pages linked from the homepage.
type KeyPagesConfig struct {
	Enabled     bool `mapstructure:"enabled"     yaml:"enabled"`
	ScanLinks   int  `mapstructure:"scan_links"  yaml:"scan_links"  validate:"gte=0,lte=200"`
	MaxPages    int  `mapstructure:"max_pages"   yaml:"max_pages"   validate:"gte=0,lte=8"`
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency" validate:"gte=1,lte=8"`
	Manifest    bool `mapstructure:"manifest"    yaml:"manifest"`
}

// AIConfig controls insight generation.
type AIConfig struct {
	Mode           string        `mapstructure:"mode"            yaml:"mode"            validate:"oneof=strict best_effort"`
	Provider       string        `mapstructure:"provider"        yaml:"provider"        validate:"oneof=none gemini openai ollama custom"`
	APIKey         string        `mapstructure:"api_key"         yaml:"api_key"`
	Endpoint       string        `mapstructure:"endpoint"        yaml:"endpoint"`
	Models         ModelTiers    `mapstructure:"models"          yaml:"models"`
	Temperature    float64       `mapstructure:"temperature"     yaml:"temperature"     validate:"gte=0,lte=2"`
	MaxTokens      int           `mapstructure:"max_tokens"      yaml:"max_tokens"      validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
}

// ModelTiers names the model used for each complexity tier.
type ModelTiers struct {
	Lite     string `mapstructure:"lite"     yaml:"lite"`
	Standard string `mapstructure:"standard" yaml:"standard"`
	Advanced string `mapstructure:"advanced" yaml:"advanced"`
}

// BatchConfig controls multi-brand runs.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" validate:"gte=1,lte=64"`
}

// ProgressConfig controls the Redis progress reporter.
type ProgressConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"     yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"       yaml:"redis_db"       validate:"gte=0"`
	KeyPrefix     string        `mapstructure:"key_prefix"     yaml:"key_prefix"`
	Channel       string        `mapstructure:"channel"        yaml:"channel"`
	TTL           time.Duration `mapstructure:"ttl"            yaml:"ttl"`
}

// StorageConfig controls profile export.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"        validate:"oneof=json jsonl csv mongodb"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	Database   string `mapstructure:"database"    yaml:"database"`
	Collection string `mapstructure:"collection"  yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultUserAgent is the descriptive agent sent by the static strategy.
func DefaultUserAgent() string {
	return "BrandLens/" + Version + " (+" + RepoURL + ")"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			UserAgent:       DefaultUserAgent(),
			Timeout:         15 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			FollowRedirects: true,
			MaxRedirects:    10,
			MinTextLength:   200,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			Strategies:      []string{"static", "rendered"},
			Proxy: ProxyConfig{
				Rotation:     "round_robin",
				RotateOnFail: true,
			},
		},
		Render: RenderConfig{
			Enabled:        true,
			Headless:       true,
			Stealth:        true,
			Timeout:        45 * time.Second,
			NetworkIdle:    2 * time.Second,
			SettleDelay:    500 * time.Millisecond,
			DismissConsent: true,
			WindowWidth:    1366,
			WindowHeight:   900,
		},
		Parser: ParserConfig{
			MaxTextLength: 5000,
			MaxLinks:      50,
			MaxImages:     20,
			MaxNavItems:   20,
		},
		Visual: VisualConfig{
			MaxColors: 8,
			MaxFonts:  5,
		},
		KeyPages: KeyPagesConfig{
			Enabled:     true,
			ScanLinks:   30,
			MaxPages:    8,
			Concurrency: 2,
			Manifest:    true,
		},
		AI: AIConfig{
			Mode:     ModeStrict,
			Provider: "none",
			Models: ModelTiers{
				Lite:     "gemini-1.5-flash-8b",
				Standard: "gemini-1.5-flash",
				Advanced: "gemini-1.5-pro",
			},
			Temperature:    0.3,
			MaxTokens:      2048,
			RequestTimeout: 30 * time.Second,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Progress: ProgressConfig{
			KeyPrefix: "brandlens:job",
			Channel:   "brandlens:progress",
			TTL:       24 * time.Hour,
		},
		Storage: StorageConfig{
			Type:       "json",
			OutputPath: "./output",
			Database:   "brandlens",
			Collection: "profiles",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
