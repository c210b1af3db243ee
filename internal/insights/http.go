package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/IshaanNene/BrandLens/internal/config"
)

// HTTPClient talks to OpenAI-compatible, Ollama and custom JSON endpoints.
type HTTPClient struct {
	cfg    config.AIConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPClient creates a client for the openai, ollama and custom providers.
func NewHTTPClient(cfg config.AIConfig, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger.With("component", "llm_client", "provider", cfg.Provider),
	}
}

// GenerateJSON sends prompt to the configured provider and returns its reply.
func (c *HTTPClient) GenerateJSON(ctx context.Context, prompt string, tier Tier) (string, error) {
	model := c.Model(tier)
	c.logger.Debug("llm request", "model", model, "tier", tier, "prompt_chars", len(prompt))

	switch c.cfg.Provider {
	case ProviderOllama:
		return c.generateOllama(ctx, prompt, model)
	case ProviderOpenAI:
		return c.generateOpenAI(ctx, prompt, model)
	case ProviderCustom:
		return c.generateCustom(ctx, prompt, model)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.cfg.Provider)
	}
}

// Model returns the model name for tier.
func (c *HTTPClient) Model(tier Tier) string { return modelFor(c.cfg.Models, tier) }

// Close is a no-op; the transport is shared.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) generateOllama(ctx context.Context, prompt, model string) (string, error) {
	payload := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": c.cfg.Temperature,
			"num_predict": c.cfg.MaxTokens,
		},
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, strings.TrimRight(c.cfg.Endpoint, "/")+"/api/generate", payload, &result); err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	return result.Response, nil
}

func (c *HTTPClient) generateOpenAI(ctx context.Context, prompt, model string) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":      c.cfg.MaxTokens,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]string{"type": "json_object"},
	}

	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, strings.TrimRight(endpoint, "/")+"/chat/completions", payload, &result); err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return result.Choices[0].Message.Content, nil
}

// generateCustom posts {prompt, model} and returns the body verbatim.
func (c *HTTPClient) generateCustom(ctx context.Context, prompt, model string) (string, error) {
	payload := map[string]any{
		"prompt": prompt,
		"model":  model,
	}
	resp, err := c.do(ctx, c.cfg.Endpoint, payload)
	if err != nil {
		return "", fmt.Errorf("custom request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read custom response: %w", err)
	}
	return string(respBody), nil
}

func (c *HTTPClient) postJSON(ctx context.Context, url string, payload, out any) error {
	resp, err := c.do(ctx, url, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}
