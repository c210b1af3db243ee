// Package progress reports batch progress to interested observers.
package progress

import (
	"context"
	"log/slog"
	"time"
)

// Brand statuses carried by events.
const (
	StatusRunning   = "running"
	StatusSucceeded = "success"
	StatusFailed    = "failed"
)

// StageDone is the stage carried by a brand's final event.
const StageDone = "done"

// Event is one progress update. Completed only advances when a brand
// finishes; stage transitions repeat the current count.
type Event struct {
	JobID     string    `json:"jobId"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Brand     string    `json:"brand"`
	Stage     string    `json:"stage,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Done reports whether the event marks a finished brand.
func (e Event) Done() bool { return e.Status != StatusRunning }

// Reporter receives progress events. Implementations must be safe for
// concurrent use and must not block for long.
type Reporter interface {
	Report(ctx context.Context, ev Event)
}

// Func adapts a function to Reporter.
type Func func(ctx context.Context, ev Event)

func (f Func) Report(ctx context.Context, ev Event) { f(ctx, ev) }

// Nop discards every event.
type Nop struct{}

func (Nop) Report(context.Context, Event) {}

// Multi fans an event out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, ev Event) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, ev)
		}
	}
}

// LogReporter writes events to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter that logs brand completions at info
// and stage transitions at debug.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With("component", "progress")}
}

func (r *LogReporter) Report(ctx context.Context, ev Event) {
	level := slog.LevelDebug
	if ev.Done() {
		level = slog.LevelInfo
	}
	r.logger.Log(ctx, level, "progress",
		"job_id", ev.JobID,
		"completed", ev.Completed,
		"total", ev.Total,
		"brand", ev.Brand,
		"stage", ev.Stage,
		"status", ev.Status,
	)
}
