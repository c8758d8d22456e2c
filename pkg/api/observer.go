package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the flow controller for logging, metrics
// and session journaling.
//
// Callbacks are an observability hook, never a control dependency: the
// engine behaves identically with a NoopObserver. Implementations should be
// fast and non-blocking.
type Observer interface {
	// OnFlowStart is called once per run, before the first step executes.
	OnFlowStart(ctx context.Context, run *FlowRun)

	// OnFlowCompleted is called when the run reaches StatusCompleted.
	OnFlowCompleted(ctx context.Context, run *FlowRun)

	// OnFlowExited is called when the user ends the run with /exit.
	OnFlowExited(ctx context.Context, run *FlowRun)

	// OnFlowFailed is called when the run transitions to StatusFailed.
	OnFlowFailed(ctx context.Context, run *FlowRun, err error)

	// OnStepStart is called before each executor invocation. attempt is
	// 1-based within the current entry of the step.
	OnStepStart(ctx context.Context, run *FlowRun, step string, attempt int)

	// OnStepCompleted is called after each executor invocation, for both
	// successes and failures (err != nil).
	OnStepCompleted(ctx context.Context, run *FlowRun, step string, attempt int, err error, duration time.Duration)

	// OnRetry is called when a step loops back to execution, either from a
	// guard verdict (FeedbackValidation) or user feedback (FeedbackUser).
	OnRetry(ctx context.Context, run *FlowRun, step string, kind FeedbackKind, reason string)

	// OnCommand is called with each interpreted confirmation answer,
	// including the implicit approval synthesized for non-confirming steps.
	OnCommand(ctx context.Context, run *FlowRun, step string, cmd Command)

	// OnRollback is called when the flow unwinds one history level, after
	// the restore. A rollback attempted at empty history reports from == to.
	OnRollback(ctx context.Context, run *FlowRun, from, to, reason string)

	// OnArtifact is called for every artifact the controller takes
	// ownership of: the initial artifact and each step's output.
	OnArtifact(ctx context.Context, run *FlowRun, a *Artifact)
}

// NoopObserver is an Observer that does nothing. It is the default when no
// observer is configured, and a convenient embed for partial observers.
type NoopObserver struct{}

func (NoopObserver) OnFlowStart(ctx context.Context, run *FlowRun)             {}
func (NoopObserver) OnFlowCompleted(ctx context.Context, run *FlowRun)         {}
func (NoopObserver) OnFlowExited(ctx context.Context, run *FlowRun)            {}
func (NoopObserver) OnFlowFailed(ctx context.Context, run *FlowRun, err error) {}
func (NoopObserver) OnStepStart(ctx context.Context, run *FlowRun, step string, attempt int) {
}
func (NoopObserver) OnStepCompleted(ctx context.Context, run *FlowRun, step string, attempt int, err error, d time.Duration) {
}
func (NoopObserver) OnRetry(ctx context.Context, run *FlowRun, step string, kind FeedbackKind, reason string) {
}
func (NoopObserver) OnCommand(ctx context.Context, run *FlowRun, step string, cmd Command) {}
func (NoopObserver) OnRollback(ctx context.Context, run *FlowRun, from, to, reason string) {}
func (NoopObserver) OnArtifact(ctx context.Context, run *FlowRun, a *Artifact)             {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnFlowStart(ctx context.Context, run *FlowRun) {
	for _, o := range c.observers {
		o.OnFlowStart(ctx, run)
	}
}

func (c *CompositeObserver) OnFlowCompleted(ctx context.Context, run *FlowRun) {
	for _, o := range c.observers {
		o.OnFlowCompleted(ctx, run)
	}
}

func (c *CompositeObserver) OnFlowExited(ctx context.Context, run *FlowRun) {
	for _, o := range c.observers {
		o.OnFlowExited(ctx, run)
	}
}

func (c *CompositeObserver) OnFlowFailed(ctx context.Context, run *FlowRun, err error) {
	for _, o := range c.observers {
		o.OnFlowFailed(ctx, run, err)
	}
}

func (c *CompositeObserver) OnStepStart(ctx context.Context, run *FlowRun, step string, attempt int) {
	for _, o := range c.observers {
		o.OnStepStart(ctx, run, step, attempt)
	}
}

func (c *CompositeObserver) OnStepCompleted(ctx context.Context, run *FlowRun, step string, attempt int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnStepCompleted(ctx, run, step, attempt, err, d)
	}
}

func (c *CompositeObserver) OnRetry(ctx context.Context, run *FlowRun, step string, kind FeedbackKind, reason string) {
	for _, o := range c.observers {
		o.OnRetry(ctx, run, step, kind, reason)
	}
}

func (c *CompositeObserver) OnCommand(ctx context.Context, run *FlowRun, step string, cmd Command) {
	for _, o := range c.observers {
		o.OnCommand(ctx, run, step, cmd)
	}
}

func (c *CompositeObserver) OnRollback(ctx context.Context, run *FlowRun, from, to, reason string) {
	for _, o := range c.observers {
		o.OnRollback(ctx, run, from, to, reason)
	}
}

func (c *CompositeObserver) OnArtifact(ctx context.Context, run *FlowRun, a *Artifact) {
	for _, o := range c.observers {
		o.OnArtifact(ctx, run, a)
	}
}

// LoggingObserver writes structured logs using log/slog.
//
// Step, command and artifact events log at Debug so per-attempt tracing can
// be switched on through the logger's level.
type LoggingObserver struct {
	Logger *slog.Logger

	// IncludePayloads adds the rendered payload to artifact events. Off by
	// default; payloads can be large.
	IncludePayloads bool
}

// NewLoggingObserver creates an Observer that logs flow / step lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnFlowStart(ctx context.Context, run *FlowRun) {
	o.Logger.InfoContext(ctx, "flow_start",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
	)
}

func (o *LoggingObserver) OnFlowCompleted(ctx context.Context, run *FlowRun) {
	o.Logger.InfoContext(ctx, "flow_completed",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.Int("steps_done", run.StepsDone),
	)
}

func (o *LoggingObserver) OnFlowExited(ctx context.Context, run *FlowRun) {
	o.Logger.InfoContext(ctx, "flow_exited",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("step", run.CurrentStep),
		slog.Int("steps_done", run.StepsDone),
	)
}

func (o *LoggingObserver) OnFlowFailed(ctx context.Context, run *FlowRun, err error) {
	o.Logger.ErrorContext(ctx, "flow_failed",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("step", run.CurrentStep),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStepStart(ctx context.Context, run *FlowRun, step string, attempt int) {
	o.Logger.DebugContext(ctx, "step_start",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("step", step),
		slog.Int("attempt", attempt),
	)
}

func (o *LoggingObserver) OnStepCompleted(ctx context.Context, run *FlowRun, step string, attempt int, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_completed",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("step", step),
		slog.Int("attempt", attempt),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnRetry(ctx context.Context, run *FlowRun, step string, kind FeedbackKind, reason string) {
	o.Logger.InfoContext(ctx, "step_retry",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("step", step),
		slog.String("kind", string(kind)),
		slog.String("reason", reason),
	)
}

func (o *LoggingObserver) OnCommand(ctx context.Context, run *FlowRun, step string, cmd Command) {
	o.Logger.DebugContext(ctx, "user_command",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("step", step),
		slog.String("command", string(cmd.Kind)),
	)
}

func (o *LoggingObserver) OnRollback(ctx context.Context, run *FlowRun, from, to, reason string) {
	o.Logger.InfoContext(ctx, "flow_rollback",
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("from", from),
		slog.String("to", to),
		slog.String("reason", reason),
	)
}

func (o *LoggingObserver) OnArtifact(ctx context.Context, run *FlowRun, a *Artifact) {
	args := []any{
		slog.String("flow", run.Flow),
		slog.String("run_id", run.ID),
		slog.String("origin", a.Origin()),
		slog.String("destination", a.Destination()),
	}
	if o.IncludePayloads {
		args = append(args, slog.String("payload", a.Text()))
	}
	o.Logger.DebugContext(ctx, "artifact", args...)
}

// BasicMetrics collects simple counters and aggregate attempt durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	flowsStarted   atomic.Int64
	flowsCompleted atomic.Int64
	flowsExited    atomic.Int64
	flowsFailed    atomic.Int64

	attempts      atomic.Int64
	retries       atomic.Int64
	rollbacks     atomic.Int64
	totalDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	FlowsStarted   int64
	FlowsCompleted int64
	FlowsExited    int64
	FlowsFailed    int64
	ActiveFlows    int64

	Attempts           int64
	Retries            int64
	Rollbacks          int64
	AvgAttemptDuration time.Duration
}

func (m *BasicMetrics) OnFlowStart(ctx context.Context, run *FlowRun) {
	m.flowsStarted.Add(1)
}

func (m *BasicMetrics) OnFlowCompleted(ctx context.Context, run *FlowRun) {
	m.flowsCompleted.Add(1)
}

func (m *BasicMetrics) OnFlowExited(ctx context.Context, run *FlowRun) {
	m.flowsExited.Add(1)
}

func (m *BasicMetrics) OnFlowFailed(ctx context.Context, run *FlowRun, err error) {
	m.flowsFailed.Add(1)
}

func (m *BasicMetrics) OnStepCompleted(ctx context.Context, run *FlowRun, step string, attempt int, err error, d time.Duration) {
	// Only successful attempts count toward the average duration.
	if err == nil {
		m.attempts.Add(1)
		m.totalDuration.Add(d.Nanoseconds())
	}
}

func (m *BasicMetrics) OnRetry(ctx context.Context, run *FlowRun, step string, kind FeedbackKind, reason string) {
	m.retries.Add(1)
}

func (m *BasicMetrics) OnRollback(ctx context.Context, run *FlowRun, from, to, reason string) {
	m.rollbacks.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.flowsStarted.Load()
	completed := m.flowsCompleted.Load()
	exited := m.flowsExited.Load()
	failed := m.flowsFailed.Load()
	attempts := m.attempts.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if attempts > 0 {
		avg = time.Duration(totalNs / attempts)
	}

	return BasicMetricsSnapshot{
		FlowsStarted:       started,
		FlowsCompleted:     completed,
		FlowsExited:        exited,
		FlowsFailed:        failed,
		ActiveFlows:        started - completed - exited - failed,
		Attempts:           attempts,
		Retries:            m.retries.Load(),
		Rollbacks:          m.rollbacks.Load(),
		AvgAttemptDuration: avg,
	}
}
