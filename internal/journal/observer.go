package journal

import (
	"context"
	"time"

	"github.com/pkallio/reviewflow/pkg/api"
)

// Observer adapts a Store into an api.Observer so the controller journals
// without knowing about storage. Append failures are dropped: the journal
// is best-effort audit and must never influence control flow.
type Observer struct {
	store Store
}

// NewObserver wraps the given store. A nil store journals nowhere.
func NewObserver(store Store) *Observer {
	if store == nil {
		store = NoopStore{}
	}
	return &Observer{store: store}
}

var _ api.Observer = (*Observer)(nil)

func (o *Observer) append(ctx context.Context, run *api.FlowRun, typ api.EventType, step string, attempt int, detail string) {
	_ = o.store.Append(ctx, api.SessionEvent{
		RunID:   run.ID,
		At:      time.Now(),
		Type:    typ,
		Flow:    run.Flow,
		Step:    step,
		Attempt: attempt,
		Detail:  detail,
	})
}

func (o *Observer) OnFlowStart(ctx context.Context, run *api.FlowRun) {
	o.append(ctx, run, api.EventFlowStarted, "", 0, "")
}

func (o *Observer) OnFlowCompleted(ctx context.Context, run *api.FlowRun) {
	o.append(ctx, run, api.EventFlowCompleted, run.CurrentStep, 0, "")
}

func (o *Observer) OnFlowExited(ctx context.Context, run *api.FlowRun) {
	o.append(ctx, run, api.EventFlowExited, run.CurrentStep, 0, "")
}

func (o *Observer) OnFlowFailed(ctx context.Context, run *api.FlowRun, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	o.append(ctx, run, api.EventFlowFailed, run.CurrentStep, 0, detail)
}

func (o *Observer) OnStepStart(ctx context.Context, run *api.FlowRun, step string, attempt int) {
	o.append(ctx, run, api.EventStepStarted, step, attempt, "")
}

func (o *Observer) OnStepCompleted(ctx context.Context, run *api.FlowRun, step string, attempt int, err error, d time.Duration) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	o.append(ctx, run, api.EventStepCompleted, step, attempt, detail)
}

func (o *Observer) OnRetry(ctx context.Context, run *api.FlowRun, step string, kind api.FeedbackKind, reason string) {
	o.append(ctx, run, api.EventStepRetried, step, 0, string(kind)+": "+reason)
}

func (o *Observer) OnCommand(ctx context.Context, run *api.FlowRun, step string, cmd api.Command) {
	o.append(ctx, run, api.EventUserCommand, step, 0, string(cmd.Kind))
}

func (o *Observer) OnRollback(ctx context.Context, run *api.FlowRun, from, to, reason string) {
	o.append(ctx, run, api.EventFlowRollback, to, 0, "from "+from+": "+reason)
}

func (o *Observer) OnArtifact(ctx context.Context, run *api.FlowRun, a *api.Artifact) {
	// Artifacts can be large; the journal records lifecycle, not payloads.
}
