package reviewflow

import (
	"context"
	"fmt"

	"github.com/pkallio/reviewflow/internal/engine"
	"github.com/pkallio/reviewflow/pkg/api"
	"github.com/pkallio/reviewflow/pkg/hub"
)

// FlowBuilder provides a fluent API for defining review flows:
//
//	flow, err := reviewflow.New("draft-report").
//	    Prompt("outline", outlineAgent).
//	    Prompt("draft", draftAgent, reviewflow.WithGuard(lengthGuard)).
//	    Func("publish", publish, reviewflow.NoConfirm()).
//	    Build(h)
//
//	out, err := flow.Run(ctx, "quarterly sales report")
type FlowBuilder struct {
	name  string
	steps []api.StepDefinition
}

// New creates a new flow builder with the given name.
func New(name string) *FlowBuilder {
	return &FlowBuilder{name: name}
}

// Name returns the flow name.
func (b *FlowBuilder) Name() string {
	return b.name
}

// StepOption tweaks a single step definition.
type StepOption func(*api.StepDefinition)

// WithGuard attaches a retry guard to the step.
func WithGuard(g Guard) StepOption {
	return func(d *api.StepDefinition) { d.Guard = g }
}

// WithTransform attaches a result transform to the step.
func WithTransform(t Transform) StepOption {
	return func(d *api.StepDefinition) { d.Transform = t }
}

// WithNext sets the step's explicit successor.
func WithNext(n *Next) StepOption {
	return func(d *api.StepDefinition) { d.Next = n }
}

// NoConfirm skips the human checkpoint after the step; the result is
// approved implicitly.
func NoConfirm() StepOption {
	return func(d *api.StepDefinition) { d.Confirm = false }
}

// RetryOnError reclassifies executor errors as validation failures, feeding
// them into the retry loop instead of failing the flow. The step must also
// carry a guard.
func RetryOnError() StepOption {
	return func(d *api.StepDefinition) { d.RetryOnError = true }
}

// Step appends a step with the given executor. Steps require confirmation
// unless the NoConfirm option is applied.
func (b *FlowBuilder) Step(name string, ex Executor, opts ...StepOption) *FlowBuilder {
	if name == "" {
		panic("reviewflow: step name must not be empty")
	}
	if ex == nil {
		panic(fmt.Sprintf("reviewflow: step %q has nil executor", name))
	}

	def := api.StepDefinition{
		Name:     name,
		Executor: ex,
		Confirm:  true,
	}
	for _, opt := range opts {
		opt(&def)
	}
	b.steps = append(b.steps, def)
	return b
}

// Func appends a step backed by a plain function over the input artifact.
func (b *FlowBuilder) Func(name string, fn func(ctx context.Context, a *Artifact) (any, error), opts ...StepOption) *FlowBuilder {
	if fn == nil {
		panic(fmt.Sprintf("reviewflow: step %q has nil function", name))
	}
	return b.Step(name, api.ExecutorFunc(fn), opts...)
}

// Prompt appends a step backed by a prompt-consuming function, typically a
// bridge to an agent runtime. On retries the prompt carries the accumulated
// feedback.
func (b *FlowBuilder) Prompt(name string, fn func(ctx context.Context, prompt string) (any, error), opts ...StepOption) *FlowBuilder {
	if fn == nil {
		panic(fmt.Sprintf("reviewflow: step %q has nil function", name))
	}
	return b.Step(name, api.PromptExecutor(fn), opts...)
}

// FlowOption configures the built flow.
type FlowOption func(*flowConfig)

type flowConfig struct {
	observers []Observer
}

// WithObserver adds an observer notified of flow lifecycle events. May be
// given multiple times.
func WithObserver(obs Observer) FlowOption {
	return func(c *flowConfig) {
		if obs != nil {
			c.observers = append(c.observers, obs)
		}
	}
}

// WithJournal records the run's transcript into the given journal.
func WithJournal(j Journal) FlowOption {
	return func(c *flowConfig) {
		if j != nil {
			c.observers = append(c.observers, NewJournalObserver(j))
		}
	}
}

// Build assembles the flow, binding it to its session hub. Definition
// problems surface here as configuration errors.
func (b *FlowBuilder) Build(h *hub.Hub, opts ...FlowOption) (*Flow, error) {
	if h == nil {
		return nil, api.NewConfigError("flow %q built without a hub", b.name)
	}

	var cfg flowConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctrl := engine.New(b.name, h,
		engine.WithObserver(api.NewCompositeObserver(cfg.observers...)))
	for _, def := range b.steps {
		if err := ctrl.Add(def); err != nil {
			return nil, err
		}
	}
	return &Flow{ctrl: ctrl}, nil
}

// MustBuild is like Build but panics on error. Useful for initialization in
// main().
func (b *FlowBuilder) MustBuild(h *hub.Hub, opts ...FlowOption) *Flow {
	f, err := b.Build(h, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Flow is a built, runnable review flow bound to one session hub.
type Flow struct {
	ctrl *engine.Controller
}

// Name returns the flow's name.
func (f *Flow) Name() string { return f.ctrl.Name() }

// Run drives the flow to a terminal state. On a user exit it returns the
// last approved artifact together with ErrExited; check with IsExit.
//
// initial seeds the first step's input. When nil or an empty string, the
// hub's preset initial input is used, and failing that the user is asked.
func (f *Flow) Run(ctx context.Context, initial any) (*Artifact, error) {
	return f.ctrl.Run(ctx, initial)
}

// NodeInfo describes one step in the flow graph.
type NodeInfo struct {
	Name string
	// Next is the successor's name, "<dynamic>" for resolver functions,
	// "<end>" for explicit terminals, or "" for implicit ordering.
	Next    string
	Confirm bool
	Guarded bool
}

// Graph returns the flow's steps in registration order.
func (f *Flow) Graph() []NodeInfo {
	nodes := f.ctrl.Graph()
	out := make([]NodeInfo, len(nodes))
	for i, n := range nodes {
		out[i] = NodeInfo{Name: n.Name, Next: n.Next, Confirm: n.Confirm, Guarded: n.Guarded}
	}
	return out
}
