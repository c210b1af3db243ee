package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Fetch.Proxy.Enabled {
		if cfg.Fetch.Proxy.Rotation != "round_robin" && cfg.Fetch.Proxy.Rotation != "random" {
			return fmt.Errorf("fetch.proxy.rotation must be 'round_robin' or 'random', got %q", cfg.Fetch.Proxy.Rotation)
		}
		if len(cfg.Fetch.Proxy.URLs) == 0 {
			return fmt.Errorf("fetch.proxy.urls must not be empty when the proxy is enabled")
		}
		for _, proxyURL := range cfg.Fetch.Proxy.URLs {
			if _, err := url.Parse(proxyURL); err != nil {
				return fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
			}
		}
	}

	if !cfg.Render.Enabled && len(cfg.Fetch.Strategies) == 1 && cfg.Fetch.Strategies[0] == "rendered" {
		return fmt.Errorf("fetch.strategies only lists 'rendered' but render.enabled is false")
	}
	if cfg.Render.ControlURL != "" {
		u, err := url.Parse(cfg.Render.ControlURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("render.control_url must be a ws(s):// or http(s):// URL, got %q", cfg.Render.ControlURL)
		}
	}

	if (cfg.AI.Provider == "ollama" || cfg.AI.Provider == "custom") && cfg.AI.Endpoint == "" {
		return fmt.Errorf("ai.endpoint is required for provider %q", cfg.AI.Provider)
	}

	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for storage.type mongodb")
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// fieldPath turns "Config.fetch.timeout" into "fetch.timeout".
func fieldPath(ns string) string {
	return strings.TrimPrefix(ns, "Config.")
}
