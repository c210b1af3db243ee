package profile

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/BrandLens/internal/observability"
	"github.com/IshaanNene/BrandLens/internal/pipeline"
	"github.com/IshaanNene/BrandLens/internal/progress"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Failure names a brand that could not be profiled.
type Failure struct {
	Brand  string `json:"brand"`
	Reason string `json:"reason"`
}

// BatchResult is the outcome of a batch, with profiles in input order.
type BatchResult struct {
	JobID     string               `json:"jobId"`
	Profiles  []types.BrandProfile `json:"profiles"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Failures  []Failure            `json:"failures,omitempty"`
}

// BatchOptions tune one batch run.
type BatchOptions struct {
	// JobID labels progress events. A random UUID is used when empty.
	JobID string
	// Concurrency overrides batch.concurrency when positive.
	Concurrency int
	// Reporter receives progress events. Nil discards them.
	Reporter progress.Reporter
}

type indexedProfile struct {
	index   int
	brand   string
	profile *types.BrandProfile
}

// Batch profiles every brand on a bounded worker pool. A failure or panic
// in one brand becomes that brand's failed profile; the batch itself
// always completes.
func (a *Aggregator) Batch(ctx context.Context, brands []string, opts BatchOptions) *BatchResult {
	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = a.concurrency
	}

	total := len(brands)
	res := &BatchResult{JobID: jobID, Profiles: make([]types.BrandProfile, total)}
	if total == 0 {
		return res
	}

	logger := a.logger.With("job_id", jobID)
	logger.Info("batch started", "brands", total, "concurrency", limit)
	start := time.Now()

	// completed is written only by the collector below; workers read it to
	// stamp stage transitions.
	var completed atomic.Int64
	done := make(chan indexedProfile, total)

	go func() {
		var g errgroup.Group
		g.SetLimit(limit)
		for i, brand := range brands {
			g.Go(func() error {
				onStage := func(ctx context.Context, _ *pipeline.Run, stage string) {
					reporter.Report(ctx, progress.Event{
						JobID:     jobID,
						Completed: int(completed.Load()),
						Total:     total,
						Brand:     brand,
						Stage:     stage,
						Status:    progress.StatusRunning,
						Timestamp: time.Now().UTC(),
					})
				}
				done <- indexedProfile{index: i, brand: brand, profile: a.safeProfile(ctx, brand, onStage)}
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	for r := range done {
		p := r.profile
		res.Profiles[r.index] = *p
		if p.Succeeded() {
			res.Succeeded++
		} else {
			res.Failed++
		}
		n := completed.Add(1)

		reporter.Report(ctx, progress.Event{
			JobID:     jobID,
			Completed: int(n),
			Total:     total,
			Brand:     r.brand,
			Stage:     progress.StageDone,
			Status:    string(p.Status),
			Timestamp: time.Now().UTC(),
		})
	}

	for i, p := range res.Profiles {
		if !p.Succeeded() {
			res.Failures = append(res.Failures, Failure{Brand: brands[i], Reason: p.FailureReason})
		}
	}

	logger.Info("batch complete",
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"duration", time.Since(start),
	)
	return res
}

// safeProfile runs one brand and converts a panic into a failed profile.
func (a *Aggregator) safeProfile(ctx context.Context, brand string, onStage pipeline.TransitionFunc) (p *types.BrandProfile) {
	observability.BatchInFlight.Inc()
	defer observability.BatchInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("profile panicked", "brand", brand, "panic", r, "stack", string(debug.Stack()))
			p = &types.BrandProfile{
				URL:           brand,
				Status:        types.StatusFailed,
				FailureReason: fmt.Sprintf("internal error: %v", r),
				AnalyzedAt:    time.Now().UTC(),
			}
			observability.ProfilesTotal.WithLabelValues(string(types.StatusFailed)).Inc()
		}
	}()
	return a.profile(ctx, brand, onStage)
}
