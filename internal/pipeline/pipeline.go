// Package pipeline runs one brand through an ordered list of named stages.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/BrandLens/internal/observability"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Run is the state of one brand analysis as it moves through the stages.
// Stages read what earlier stages left and fill the profile fields they own.
type Run struct {
	// URL is the normalized page address.
	URL string
	// BrandHint is a caller-supplied brand name, if any.
	BrandHint string
	Document  *types.Document
	Profile   *types.BrandProfile
}

// Warn records a non-fatal problem on the profile.
func (r *Run) Warn(format string, args ...any) {
	r.Profile.Warnings = append(r.Profile.Warnings, fmt.Sprintf(format, args...))
}

// Stage processes a run.
type Stage interface {
	// Name returns the stage's identifier.
	Name() string

	// Process advances the run. A fatal error (see types.IsFatal) stops
	// the pipeline; any other error becomes a profile warning.
	Process(ctx context.Context, run *Run) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, run *Run) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Process(ctx context.Context, run *Run) error { return s.Fn(ctx, run) }

// TransitionFunc is told when a run enters a stage.
type TransitionFunc func(ctx context.Context, run *Run, stage string)

// Pipeline chains stages together.
type Pipeline struct {
	stages       []Stage
	onTransition TransitionFunc
	logger       *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a stage to the end of the chain.
func (p *Pipeline) Use(st Stage) {
	p.stages = append(p.stages, st)
	p.logger.Debug("stage added", "name", st.Name(), "position", len(p.stages))
}

// OnTransition registers fn to be called before each stage runs.
func (p *Pipeline) OnTransition(fn TransitionFunc) {
	p.onTransition = fn
}

// Process runs the stages in order. It returns a *types.StageError wrapping
// the first fatal stage error; later stages are then skipped. Non-fatal
// errors are appended to the profile's warnings.
func (p *Pipeline) Process(ctx context.Context, run *Run) error {
	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return &types.StageError{Stage: st.Name(), Err: err}
		}
		if p.onTransition != nil {
			p.onTransition(ctx, run, st.Name())
		}

		start := time.Now()
		err := st.Process(ctx, run)
		elapsed := time.Since(start)
		observability.ObserveStage(st.Name(), elapsed)

		if err == nil {
			p.logger.Debug("stage complete", "url", run.URL, "stage", st.Name(), "duration", elapsed)
			continue
		}
		if types.IsFatal(err) {
			p.logger.Warn("stage failed", "url", run.URL, "stage", st.Name(), "error", err)
			return &types.StageError{Stage: st.Name(), Err: err}
		}
		p.logger.Info("stage degraded", "url", run.URL, "stage", st.Name(), "error", err)
		run.Warn("%s: %v", st.Name(), err)
	}
	return nil
}

// Len returns the number of stages in the chain.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names returns the stage names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name()
	}
	return names
}
