package api

import "time"

// EventType identifies a session journal event.
type EventType string

const (
	EventFlowStarted   EventType = "flow.started"
	EventFlowCompleted EventType = "flow.completed"
	EventFlowExited    EventType = "flow.exited"
	EventFlowFailed    EventType = "flow.failed"
	EventFlowRollback  EventType = "flow.rollback"

	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"
	EventStepRetried   EventType = "step.retried"

	EventUserCommand EventType = "user.command"
)

// SessionEvent is a minimal append-only transcript record for audit and
// debugging. It is intentionally small and stable; it is never read back to
// resume a run.
type SessionEvent struct {
	RunID string
	At    time.Time
	Type  EventType

	// Optional context.
	Flow    string
	Step    string
	Attempt int

	// Small, human-oriented details (e.g. command kind, retry reason).
	// Keep this low-volume: do NOT dump large payloads here.
	Detail string
}
