package api

import "context"

// Status represents the lifecycle state of a flow run.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusExited    Status = "EXITED"
	StatusFailed    Status = "FAILED"
)

// FlowRun holds the observable state of one run of a flow. It is updated by
// the controller as the run progresses and handed to observers; observers
// must not mutate it.
type FlowRun struct {
	// ID uniquely identifies this run. Journal events are keyed by it.
	ID string

	// Flow is the flow's name.
	Flow string

	Status Status

	// CurrentStep is the name of the step the run is at.
	CurrentStep string

	// StepsDone counts successfully completed steps, which equals the depth
	// of the rollback history.
	StepsDone int

	// Output is the most recent completed artifact, nil before the first
	// step completes.
	Output *Artifact

	// Err is set when the run fails.
	Err error
}

// Asker is the part of the interaction hub visible to executors: the
// serialized question/answer exchange. Nested asks from inside an executor
// go through the same hub and respect its one-outstanding-ask invariant.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

type askerKey struct{}

// WithAsker attaches the interaction hub's ask capability to the context the
// engine hands to executors.
func WithAsker(ctx context.Context, a Asker) context.Context {
	return context.WithValue(ctx, askerKey{}, a)
}

// AskerFromContext retrieves the Asker installed by the engine, if any.
// Executors use this to request ad-hoc user input mid-execution:
//
//	if asker, ok := api.AskerFromContext(ctx); ok {
//	    answer, err := asker.Ask(ctx, "Which region should this target?")
//	    ...
//	}
func AskerFromContext(ctx context.Context) (Asker, bool) {
	a, ok := ctx.Value(askerKey{}).(Asker)
	return a, ok
}
