// Package engine implements the flow controller and the per-step state
// machine. External callers use the root reviewflow package, which wraps
// this one.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkallio/reviewflow/pkg/api"
	"github.com/pkallio/reviewflow/pkg/hub"
)

// Controller owns one flow's step graph, drives execution step by step, and
// maintains the rollback history stack. A Controller processes nodes
// strictly sequentially; concurrency lives across sessions, each with its
// own Controller and Hub.
type Controller struct {
	name string
	hub  *hub.Hub
	obs  api.Observer

	steps []api.StepDefinition
	index map[string]int
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver sets the observer notified of lifecycle events.
func WithObserver(obs api.Observer) Option {
	return func(c *Controller) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// New creates a Controller for the named flow, bound to its session hub.
func New(name string, h *hub.Hub, opts ...Option) *Controller {
	c := &Controller{
		name:  name,
		hub:   h,
		obs:   api.NoopObserver{},
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the flow's name.
func (c *Controller) Name() string { return c.name }

// Add registers a step node. Duplicate names and inconsistent definitions
// are configuration errors.
func (c *Controller) Add(def api.StepDefinition) error {
	if def.Name == "" {
		return api.NewConfigError("step name must not be empty")
	}
	if def.Executor == nil {
		return api.NewConfigError("step %q has no executor", def.Name)
	}
	if def.RetryOnError && def.Guard == nil {
		return api.NewConfigError("step %q sets RetryOnError without a guard", def.Name)
	}
	if _, dup := c.index[def.Name]; dup {
		return api.NewConfigError("duplicate step name %q", def.Name)
	}
	c.index[def.Name] = len(c.steps)
	c.steps = append(c.steps, def)
	return nil
}

// NodeInfo describes one registered node for diagnostics.
type NodeInfo struct {
	Name string
	// Next is the successor's name, "<dynamic>" for resolver functions,
	// "<end>" for explicit terminals, or "" for implicit ordering.
	Next    string
	Confirm bool
	Guarded bool
}

// Graph returns the registered nodes in registration order.
func (c *Controller) Graph() []NodeInfo {
	out := make([]NodeInfo, 0, len(c.steps))
	for _, def := range c.steps {
		info := NodeInfo{
			Name:    def.Name,
			Confirm: def.Confirm,
			Guarded: def.Guard != nil,
		}
		if def.Next != nil {
			switch {
			case def.Next.Terminal():
				info.Next = "<end>"
			case def.Next.Dynamic():
				info.Next = "<dynamic>"
			default:
				name, _ := def.Next.Static()
				info.Next = name
			}
		}
		out = append(out, info)
	}
	return out
}

// Run starts the flow and drives it to a terminal state. It returns the
// final artifact on success, or the last completed artifact together with
// api.ErrExited when the user exits.
//
// The initial payload is chosen in precedence order: the initial argument if
// non-empty, the hub's preset initial input, and finally an interactive
// prompt.
func (c *Controller) Run(ctx context.Context, initial any) (*api.Artifact, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	run := &api.FlowRun{
		ID:     uuid.NewString(),
		Flow:   c.name,
		Status: api.StatusRunning,
	}

	payload, err := c.initialPayload(ctx, initial)
	if err != nil {
		return nil, err
	}

	current := api.NewArtifact(api.OriginSystem, payload)
	c.obs.OnFlowStart(ctx, run)
	c.obs.OnArtifact(ctx, run, current)

	type histEntry struct {
		idx   int
		input *api.Artifact
	}
	var history []histEntry
	idx := 0

	for {
		def := c.steps[idx]
		run.CurrentStep = def.Name

		r := &stepRunner{def: def, hub: c.hub, obs: c.obs, run: run}
		out := r.Run(ctx, current, len(history) > 0)

		switch out.kind {
		case outcomeCompleted:
			history = append(history, histEntry{idx: idx, input: current})
			run.StepsDone = len(history)
			run.Output = out.artifact
			c.obs.OnArtifact(ctx, run, out.artifact)

			next, rerr := c.resolveNext(def, out.artifact, idx)
			if rerr != nil {
				run.Status = api.StatusFailed
				run.Err = rerr
				c.obs.OnFlowFailed(ctx, run, rerr)
				return nil, rerr
			}
			current = out.artifact
			if next < 0 {
				run.Status = api.StatusCompleted
				c.obs.OnFlowCompleted(ctx, run)
				return current, nil
			}
			idx = next

		case outcomeRollback:
			// The runner only reports rollback when history is non-empty.
			top := history[len(history)-1]
			history = history[:len(history)-1]
			run.StepsDone = len(history)

			from := def.Name
			idx = top.idx
			current = top.input
			to := c.steps[idx].Name

			// The abandoned step starts a fresh attempt sequence if the
			// flow ever advances back into it.
			c.hub.ResetFeedback(from)

			reason := out.reason
			if reason == "" {
				reason = "rolled back from step " + from
			}
			c.hub.RecordFeedback(to, api.FeedbackUser, reason)
			c.hub.Notify(fmt.Sprintf("Rolling back to step %q.", to))
			c.obs.OnRollback(ctx, run, from, to, reason)

		case outcomeExit:
			run.Status = api.StatusExited
			c.obs.OnFlowExited(ctx, run)
			return run.Output, api.ErrExited

		case outcomeFailed:
			run.Status = api.StatusFailed
			run.Err = out.err
			c.obs.OnFlowFailed(ctx, run, out.err)
			return nil, out.err
		}
	}
}

// validate checks the graph before a run: the flow must have steps, and
// every statically-named successor must resolve to a registered node.
func (c *Controller) validate() error {
	if len(c.steps) == 0 {
		return api.NewConfigError("flow %q has no steps", c.name)
	}
	for _, def := range c.steps {
		if def.Next == nil {
			continue
		}
		if name, ok := def.Next.Static(); ok {
			if name == "" {
				return api.NewConfigError("step %q has an empty next-step name", def.Name)
			}
			if _, known := c.index[name]; !known {
				return api.NewConfigError("step %q routes to unknown step %q", def.Name, name)
			}
		}
	}
	return nil
}

// initialPayload applies the run-entry precedence: explicit argument, hub
// preset, interactive prompt. The first non-empty value wins.
func (c *Controller) initialPayload(ctx context.Context, initial any) (any, error) {
	if initial != nil {
		if s, ok := initial.(string); !ok || s != "" {
			return initial, nil
		}
	}
	if preset := c.hub.InitialInput(); preset != "" {
		return preset, nil
	}
	answer, err := c.hub.Ask(ctx, "Please provide the initial input:")
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// resolveNext picks the completed step's successor. Precedence: the step's
// explicit Next, then the artifact's destination hint, then registration
// order. Returns -1 for a terminal step. A dynamic resolver is invoked here
// exactly once per completed step, never on retry.
func (c *Controller) resolveNext(def api.StepDefinition, out *api.Artifact, idx int) (int, error) {
	if def.Next != nil {
		name := def.Next.Resolve(out)
		if name == "" {
			return -1, nil
		}
		j, ok := c.index[name]
		if !ok {
			return 0, api.NewConfigError("step %q resolved unknown next step %q", def.Name, name)
		}
		return j, nil
	}
	if dest := out.Destination(); dest != "" {
		j, ok := c.index[dest]
		if !ok {
			return 0, api.NewConfigError("artifact from %q is destined for unknown step %q", def.Name, dest)
		}
		return j, nil
	}
	if idx+1 < len(c.steps) {
		return idx + 1, nil
	}
	return -1, nil
}
