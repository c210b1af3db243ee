package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/observability"
	"github.com/IshaanNene/BrandLens/internal/parser"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Cascade stage names, as used in logs, metrics and schema errors.
const (
	StageDetailed   = "detailed"
	StageSimplified = "simplified"
	StageGuided     = "guided"
	StageFallback   = "fallback"
)

// richContentRunes is the main-text size above which the detailed stage
// asks for the advanced tier.
const richContentRunes = 2000

// Input is the evidence for one brand.
type Input struct {
	URL        string
	BrandName  string
	Content    *types.StructuredContent
	Visual     *types.VisualAssets
	Confidence map[string]float64
	// Doc is optional; it lets the SEO audit inspect raw markup.
	Doc *types.Document
}

func (in Input) content() *types.StructuredContent {
	if in.Content == nil {
		return &types.StructuredContent{}
	}
	return in.Content
}

func (in Input) industry() string {
	if in.Content == nil || in.Content.Industry == "" {
		return parser.DefaultIndustry
	}
	return in.Content.Industry
}

// promptStage is one model call in the cascade.
type promptStage struct {
	name   string
	schema *gojsonschema.Schema
	prompt func(Input) (string, error)
	tier   func(Input) Tier
}

// cascade is the fixed model-call sequence; its length bounds the number
// of calls per brand.
var cascade = []promptStage{
	{name: StageDetailed, schema: detailedSchema, prompt: detailedPrompt, tier: detailedTier},
	{name: StageSimplified, schema: simplifiedSchema, prompt: simplifiedPrompt, tier: func(Input) Tier { return TierLite }},
	{name: StageGuided, schema: detailedSchema, prompt: guidedPrompt, tier: func(Input) Tier { return TierStandard }},
}

func detailedTier(in Input) Tier {
	c := in.content()
	if len([]rune(c.MainText)) >= richContentRunes && len(c.Headings) >= 5 {
		return TierAdvanced
	}
	return TierStandard
}

// Generator runs the insight cascade.
type Generator struct {
	client Client
	cfg    config.AIConfig
	logger *slog.Logger
}

// NewGenerator creates a generator. A nil client skips straight to the
// end of the cascade.
func NewGenerator(client Client, cfg config.AIConfig, logger *slog.Logger) *Generator {
	return &Generator{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "insights"),
	}
}

// Generate runs Detailed, Simplified and Guided prompts in order and
// returns the first reply that passes validation. When all fail, strict
// mode returns nil insights and the last error; best-effort mode returns
// the deterministic fallback together with that error.
func (g *Generator) Generate(ctx context.Context, in Input) (*types.Insights, error) {
	var lastErr error
	if g.client == nil {
		lastErr = types.ErrNoCredentials
	} else {
		for _, st := range cascade {
			if err := ctx.Err(); err != nil {
				lastErr = fmt.Errorf("%w: %v", types.ErrAIRequestFailed, err)
				break
			}
			ins, err := g.attempt(ctx, st, in)
			if err == nil {
				observability.AIAttempts.WithLabelValues(st.name, "success").Inc()
				return ins, nil
			}
			observability.AIAttempts.WithLabelValues(st.name, outcome(err)).Inc()
			g.logger.Warn("insight stage failed", "url", in.URL, "stage", st.name, "error", err)
			lastErr = err
		}
	}

	if g.cfg.Mode != config.ModeBestEffort {
		return nil, lastErr
	}
	observability.AIAttempts.WithLabelValues(StageFallback, "success").Inc()
	g.logger.Info("using deterministic insights", "url", in.URL, "reason", lastErr)
	return Fallback(in), lastErr
}

func (g *Generator) attempt(ctx context.Context, st promptStage, in Input) (*types.Insights, error) {
	prompt, err := st.prompt(in)
	if err != nil {
		return nil, err
	}
	tier := st.tier(in)

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	raw, err := g.client.GenerateJSON(callCtx, prompt, tier)
	g.logger.Debug("insight stage reply", "url", in.URL, "stage", st.name, "tier", tier, "duration", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w: %v", st.name, types.ErrAIRequestFailed, err)
	}

	r, err := decodeReply(st.name, st.schema, raw)
	if err != nil {
		return nil, err
	}
	if problems := checkQuality(r); len(problems) > 0 {
		return nil, &types.SchemaError{Stage: st.name, Fields: problems}
	}

	ins := &types.Insights{
		Positioning:       r.Positioning,
		ValueProposition:  r.ValueProposition,
		TargetAudience:    r.TargetAudience,
		PersonalityTraits: r.PersonalityTraits,
		KeyMessages:       append(r.KeyMessages, r.Differentiation...),
		Recommendations:   r.Recommendations,
		DigitalPresence:   DigitalPresence(in),
		Source:            SourceAI,
		Model:             g.client.Model(tier),
	}
	if !r.SWOT.Empty() {
		ins.SWOT = r.SWOT
	}
	return ins, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, types.ErrAISchemaInvalid):
		return "invalid"
	case errors.Is(err, types.ErrAIRequestFailed):
		return "request_failed"
	default:
		return "error"
	}
}
