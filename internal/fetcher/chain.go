package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/observability"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Chain tries strategies in priority order and stops at the first success.
// Escalation to the next strategy is the only retry.
type Chain struct {
	strategies []Fetcher
	logger     *slog.Logger
}

// NewChain wraps an ordered list of strategies.
func NewChain(logger *slog.Logger, strategies ...Fetcher) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     logger.With("component", "fetch_chain"),
	}
}

// NewChainFromConfig builds the strategies named in fetch.strategies.
// The rendered strategy is skipped when render.enabled is false.
func NewChainFromConfig(cfg *config.Config, logger *slog.Logger) (*Chain, error) {
	var proxyMgr *ProxyManager
	if cfg.Fetch.Proxy.Enabled && len(cfg.Fetch.Proxy.URLs) > 0 {
		proxyMgr = NewProxyManager(&cfg.Fetch.Proxy, logger)
	}

	strategies := make([]Fetcher, 0, len(cfg.Fetch.Strategies))
	for _, name := range cfg.Fetch.Strategies {
		switch types.ExtractionMethod(name) {
		case types.MethodStatic:
			f, err := NewStaticFetcher(cfg, logger, proxyMgr)
			if err != nil {
				return nil, fmt.Errorf("static fetcher: %w", err)
			}
			strategies = append(strategies, f)
		case types.MethodRendered:
			if !cfg.Render.Enabled {
				continue
			}
			strategies = append(strategies, NewRenderedFetcher(cfg, logger, proxyMgr))
		default:
			return nil, fmt.Errorf("unknown fetch strategy %q", name)
		}
	}
	if len(strategies) == 0 {
		return nil, types.ErrNoStrategies
	}
	return NewChain(logger, strategies...), nil
}

// Strategies returns the strategy tags in order.
func (c *Chain) Strategies() []types.ExtractionMethod {
	out := make([]types.ExtractionMethod, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Type()
	}
	return out
}

// Fetch runs the chain. On success it returns the document and every
// attempt made. When all strategies fail the error is an
// *types.ExtractionFailedError carrying the same attempts.
func (c *Chain) Fetch(ctx context.Context, req *types.Request) (*types.Document, []types.FetchAttempt, error) {
	if len(c.strategies) == 0 {
		return nil, nil, types.ErrNoStrategies
	}

	attempts := make([]types.FetchAttempt, 0, len(c.strategies))
	var last error

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			last = err
			break
		}

		doc, elapsed, err := c.attempt(ctx, s, req)
		attempts = append(attempts, attemptRecord(s.Type(), elapsed, err))

		if err == nil {
			c.logger.Debug("fetch succeeded",
				"url", req.URLString(),
				"strategy", s.Type(),
				"duration", doc.FetchDuration,
			)
			return doc, attempts, nil
		}

		last = err
		c.logger.Info("fetch strategy failed, escalating",
			"url", req.URLString(),
			"strategy", s.Type(),
			"error", err,
		)
	}

	return nil, attempts, &types.ExtractionFailedError{
		URL:      req.URLString(),
		Attempts: attempts,
		Last:     last,
	}
}

// attempt runs one strategy under its own deadline.
func (c *Chain) attempt(ctx context.Context, s Fetcher, req *types.Request) (*types.Document, time.Duration, error) {
	timeout := s.Timeout()
	if req.Timeout > 0 && req.Timeout < timeout {
		timeout = req.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	doc, err := s.Fetch(attemptCtx, req)
	elapsed := time.Since(start)

	if doc == nil && err == nil {
		err = &types.FetchError{URL: req.URLString(), Strategy: s.Type(), Err: types.ErrEmptyResponse}
	}
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, types.ErrFetchTimeout) {
		err = &types.FetchError{URL: req.URLString(), Strategy: s.Type(), Err: fmt.Errorf("%w: %v", types.ErrFetchTimeout, err)}
	}
	if doc != nil && err == nil {
		doc.Method = s.Type()
		if doc.FetchDuration == 0 {
			doc.FetchDuration = elapsed
		}
	}

	observability.ObserveFetch(string(s.Type()), outcomeLabel(err), elapsed)
	return doc, elapsed, err
}

func attemptRecord(method types.ExtractionMethod, elapsed time.Duration, err error) types.FetchAttempt {
	a := types.FetchAttempt{Strategy: method, Outcome: "success", Duration: elapsed}
	if err != nil {
		a.Outcome = outcomeReason(err)
		a.Error = err.Error()
	}
	return a
}

// outcomeReason is the human-readable outcome stored on the profile.
func outcomeReason(err error) string {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		return fe.Reason()
	}
	if errors.Is(err, types.ErrFetchTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "connection error: " + err.Error()
}

// outcomeLabel is the low-cardinality metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, types.ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, types.ErrFetchBlocked):
		return "blocked"
	case errors.Is(err, types.ErrThinContent):
		return "thin"
	case errors.Is(err, types.ErrEmptyResponse):
		return "empty"
	default:
		return "error"
	}
}

// Close closes every strategy and returns the first error.
func (c *Chain) Close() error {
	var first error
	for _, s := range c.strategies {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
