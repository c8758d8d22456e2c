package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/pkallio/reviewflow/pkg/api"
	"github.com/pkallio/reviewflow/pkg/hub"
)

// outcomeKind tags the result a step hands back to the controller. Control
// transfers (rollback, exit) are ordinary values here, so the controller's
// loop is a plain switch rather than a catch block.
type outcomeKind int

const (
	outcomeCompleted outcomeKind = iota
	outcomeRollback
	outcomeExit
	outcomeFailed
)

type outcome struct {
	kind     outcomeKind
	artifact *api.Artifact // completed output
	reason   string        // rollback reason
	err      error         // failure
}

// stepRunner drives one node's execute → validate → confirm → retry state
// machine against a single input artifact.
type stepRunner struct {
	def api.StepDefinition
	hub *hub.Hub
	obs api.Observer
	run *api.FlowRun
}

// Run executes the step until it completes, rolls back, exits, or fails.
//
// canRollback tells the runner whether the controller has history to unwind;
// a /rollback at the first step warns and re-prompts instead of returning,
// leaving the flow state untouched.
func (r *stepRunner) Run(ctx context.Context, input *api.Artifact, canRollback bool) outcome {
	name := r.def.Name
	original := input.Text()

	for attempt := 1; ; attempt++ {
		// Exit and cancellation are cooperative: honored between
		// executor invocations, never by interrupting one.
		if err := ctx.Err(); err != nil {
			return outcome{kind: outcomeFailed, err: err}
		}

		prompt := original
		if fb := r.hub.Feedback(name); len(fb) > 0 {
			prompt = api.BuildContext(original, fb)
		}

		stepCtx := api.WithAsker(ctx, r.hub)
		r.obs.OnStepStart(stepCtx, r.run, name, attempt)
		start := time.Now()
		raw, err := r.def.Executor.Invoke(stepCtx, api.Invocation{
			Artifact: input,
			Prompt:   prompt,
			Attempt:  attempt,
		})
		r.obs.OnStepCompleted(stepCtx, r.run, name, attempt, err, time.Since(start))

		if err != nil {
			if r.def.RetryOnError && r.def.Guard != nil {
				r.hub.Notify("Step " + name + " failed: " + err.Error())
				r.recordRetry(stepCtx, api.FeedbackValidation, err.Error())
				continue
			}
			return outcome{kind: outcomeFailed, err: &api.ExecutionError{Step: name, Err: err}}
		}

		// An executor may return an *api.Artifact to attach a routing hint;
		// the runner adopts its destination and unwraps the payload.
		dest := ""
		if a, ok := raw.(*api.Artifact); ok {
			dest = a.Destination()
			raw = a.Payload()
		}

		display, pass := api.RenderText(raw), raw
		if r.def.Transform != nil {
			var terr error
			display, pass, terr = r.def.Transform(raw)
			if terr != nil {
				return outcome{kind: outcomeFailed, err: &api.ExecutionError{Step: name, Err: fmt.Errorf("transform: %w", terr)}}
			}
		}

		if r.def.Guard != nil {
			verdict, gerr := r.def.Guard.Check(stepCtx, pass)
			if gerr != nil {
				// A broken validator must not kill a run the human is
				// steering; surface it as one more retry reason.
				verdict = api.Verdict{Retry: true, Reason: fmt.Sprintf("validator error: %v", gerr)}
			}
			if verdict.Retry {
				reason := verdict.Explain()
				r.hub.Notify("Validation failed: " + reason)
				r.recordRetry(stepCtx, api.FeedbackValidation, reason)
				continue
			}
		}

	confirm:
		for {
			var cmd api.Command
			if r.def.Confirm {
				answer, askErr := r.hub.Ask(ctx, confirmQuestion(name, display))
				if askErr != nil {
					return outcome{kind: outcomeFailed, err: askErr}
				}
				cmd = r.hub.Interpret(answer)
			} else {
				cmd = api.Command{Kind: api.CommandApprove}
			}
			r.obs.OnCommand(ctx, r.run, name, cmd)

			switch cmd.Kind {
			case api.CommandApprove:
				out := api.NewArtifact(name, pass)
				if dest != "" {
					out = out.WithDestination(dest)
				}
				r.hub.ResetFeedback(name)
				return outcome{kind: outcomeCompleted, artifact: out}

			case api.CommandRetry:
				if cmd.Text != "" {
					r.hub.RecordFeedback(name, api.FeedbackUser, cmd.Text)
				}
				r.obs.OnRetry(ctx, r.run, name, api.FeedbackUser, cmd.Text)
				break confirm

			case api.CommandRollback:
				if !canRollback {
					r.hub.Notify("Cannot roll back: no completed steps to return to.")
					r.obs.OnRollback(ctx, r.run, name, name, cmd.Text)
					continue confirm
				}
				return outcome{kind: outcomeRollback, reason: cmd.Text}

			case api.CommandExit:
				return outcome{kind: outcomeExit}
			}
		}
	}
}

func (r *stepRunner) recordRetry(ctx context.Context, kind api.FeedbackKind, reason string) {
	r.hub.RecordFeedback(r.def.Name, kind, reason)
	r.obs.OnRetry(ctx, r.run, r.def.Name, kind, reason)
}

// confirmQuestion renders the confirmation prompt shown after a step
// produces output.
func confirmQuestion(step, display string) string {
	return fmt.Sprintf(
		"Step %q produced:\n\n%s\n\nPress Enter to approve, type feedback to retry, or use /retry, /rollback <reason>, /exit.",
		step, display,
	)
}
