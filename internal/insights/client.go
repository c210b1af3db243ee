// Package insights turns extracted brand evidence into strategic insights,
// either through a language model or through deterministic heuristics.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Tier selects a model by how much work the prompt asks for.
type Tier string

const (
	TierLite     Tier = "lite"
	TierStandard Tier = "standard"
	TierAdvanced Tier = "advanced"
)

// Provider names accepted in ai.provider.
const (
	ProviderNone   = "none"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderCustom = "custom"
)

// Client is a language model that answers a prompt with JSON text.
type Client interface {
	// GenerateJSON returns the raw model reply for prompt.
	GenerateJSON(ctx context.Context, prompt string, tier Tier) (string, error)
	// Model returns the model name configured for tier.
	Model(tier Tier) string
	Close() error
}

// NewClient builds the client for cfg.Provider. It returns ErrNoCredentials
// when the provider is "none" or a hosted provider has no API key.
func NewClient(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Client, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, types.ErrNoCredentials
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", types.ErrNoCredentials)
		}
		return NewGeminiClient(ctx, cfg)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: %w", types.ErrNoCredentials)
		}
		return NewHTTPClient(cfg, logger), nil
	case ProviderOllama, ProviderCustom:
		return NewHTTPClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// modelFor maps a tier to the configured model, falling back to the
// standard tier when a tier is left blank.
func modelFor(m config.ModelTiers, tier Tier) string {
	var name string
	switch tier {
	case TierLite:
		name = m.Lite
	case TierAdvanced:
		name = m.Advanced
	default:
		name = m.Standard
	}
	if name == "" {
		name = m.Standard
	}
	return name
}

// cleanJSON strips markdown fences and any prose around the outermost JSON
// object in a model reply.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return extractJSON(s)
}

// extractJSON returns the first balanced JSON object in s, or s unchanged
// when none is found so the schema check reports the real reply.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	depth, inString, escaped := 0, false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}
