package api

import (
	"context"
	"fmt"
	"strings"
)

// Invocation carries a step's input to its executor.
type Invocation struct {
	// Artifact is the current input artifact, payload in its native shape.
	Artifact *Artifact

	// Prompt is the rendered text input. On the first attempt it is the
	// artifact's Text rendering; on retries it is the BuildContext block
	// carrying the accumulated feedback.
	Prompt string

	// Attempt is the 1-based attempt counter within the current entry of
	// this step.
	Attempt int
}

// Executor is the opaque unit of work behind a step. It may be a plain
// function over the artifact or a bridge to an external agent runtime that
// consumes a text prompt; the engine never inspects which.
//
// Executors may call back to the interaction hub through AskerFromContext to
// request ad-hoc user input mid-execution. Returning an *Artifact (built
// with NewArtifact and WithDestination) attaches a routing hint; the engine
// adopts the destination and unwraps the payload.
type Executor interface {
	Invoke(ctx context.Context, in Invocation) (any, error)
}

// ExecutorFunc adapts a plain function taking the input artifact into an
// Executor. This is the function-backed executor variant: it sees the
// artifact's native payload and ignores the rendered prompt.
type ExecutorFunc func(ctx context.Context, a *Artifact) (any, error)

func (f ExecutorFunc) Invoke(ctx context.Context, in Invocation) (any, error) {
	return f(ctx, in.Artifact)
}

// PromptExecutor adapts a prompt-shaped function into an Executor. This is
// the agent-backed variant: it receives the rendered text input, including
// accumulated feedback on retries.
func PromptExecutor(fn func(ctx context.Context, prompt string) (any, error)) Executor {
	return promptExecutor(fn)
}

type promptExecutor func(ctx context.Context, prompt string) (any, error)

func (f promptExecutor) Invoke(ctx context.Context, in Invocation) (any, error) {
	return f(ctx, in.Prompt)
}

// Verdict is the normalized result of a retry guard.
type Verdict struct {
	Retry  bool
	Reason string

	// Optional structured enrichment; folded into the reason text when the
	// verdict is recorded as feedback.
	Issues      []string
	Suggestions []string
}

// Explain folds Issues and Suggestions into the reason text.
func (v Verdict) Explain() string {
	var b strings.Builder
	b.WriteString(v.Reason)
	if len(v.Issues) > 0 {
		b.WriteString("\n\nIssues found:\n")
		for _, issue := range v.Issues {
			b.WriteString("  - " + issue + "\n")
		}
	}
	if len(v.Suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range v.Suggestions {
			b.WriteString("  - " + s + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Guard decides whether a step result should be retried. A guard error is
// not fatal: the engine records it as a validation failure and retries, so a
// flaky evaluator cannot kill a flow that a human is still steering.
type Guard interface {
	Check(ctx context.Context, result any) (Verdict, error)
}

// GuardFunc adapts a predicate function into a Guard.
type GuardFunc func(ctx context.Context, result any) (retry bool, reason string)

func (f GuardFunc) Check(ctx context.Context, result any) (Verdict, error) {
	retry, reason := f(ctx, result)
	return Verdict{Retry: retry, Reason: reason}, nil
}

// Evaluator is a single reasoning validator (for example an LLM-backed
// reviewer) that emits a full Verdict.
type Evaluator interface {
	Evaluate(ctx context.Context, result any) (Verdict, error)
}

// EvaluatorGuard wraps a single Evaluator as a Guard. An evaluator error
// becomes a retry verdict carrying the error text, matching the treatment of
// malformed validator output.
func EvaluatorGuard(e Evaluator) Guard {
	return evaluatorGuard{evals: []Evaluator{e}}
}

// MultiEvaluatorGuard aggregates several evaluators into one Guard. The
// result is a retry if any evaluator requests one; reasons are concatenated
// in evaluator order.
func MultiEvaluatorGuard(evals ...Evaluator) Guard {
	return evaluatorGuard{evals: evals}
}

type evaluatorGuard struct {
	evals []Evaluator
}

func (g evaluatorGuard) Check(ctx context.Context, result any) (Verdict, error) {
	var reasons []string
	for _, e := range g.evals {
		v, err := e.Evaluate(ctx, result)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("validator error: %v", err))
			continue
		}
		if v.Retry {
			reasons = append(reasons, v.Explain())
		}
	}
	if len(reasons) == 0 {
		return Verdict{}, nil
	}
	return Verdict{Retry: true, Reason: strings.Join(reasons, "\n")}, nil
}

// Transform splits a raw executor result into the text shown to the user at
// the confirmation prompt and the payload passed to the next step. When a
// step has no transform, the display text is RenderText(raw) and the payload
// is the raw result unchanged.
type Transform func(raw any) (display string, pass any, err error)

// Next selects an explicit successor for a step, overriding implicit
// registration order. Construct values with NextStep, NextNode, NextFunc or
// End; the zero value must not be used.
type Next struct {
	name     string
	fn       func(out *Artifact) string
	terminal bool
}

// NextStep routes to the step with the given name.
func NextStep(name string) *Next { return &Next{name: name} }

// NextNode routes to the given step definition by its name.
func NextNode(def *StepDefinition) *Next { return &Next{name: def.Name} }

// NextFunc routes dynamically based on the completed step's output artifact.
// The function is invoked exactly once per completed step (never on retry);
// returning "" terminates the flow.
func NextFunc(fn func(out *Artifact) string) *Next { return &Next{fn: fn} }

// End marks the step as terminal regardless of registration order.
func End() *Next { return &Next{terminal: true} }

// Resolve returns the successor's name, or "" for a terminal step.
func (n *Next) Resolve(out *Artifact) string {
	switch {
	case n.terminal:
		return ""
	case n.fn != nil:
		return n.fn(out)
	default:
		return n.name
	}
}

// Static returns the statically-known successor name, if any. Used for
// registration-time validation and graph inspection; dynamic resolvers and
// terminals report ok=false.
func (n *Next) Static() (name string, ok bool) {
	if n.terminal || n.fn != nil {
		return "", false
	}
	return n.name, true
}

// Dynamic reports whether the successor is picked by a resolver function.
func (n *Next) Dynamic() bool { return n.fn != nil }

// Terminal reports whether this is an explicit end marker.
func (n *Next) Terminal() bool { return n.terminal }

// StepDefinition describes one node in the flow graph.
type StepDefinition struct {
	// Name is the node's unique key in the graph.
	Name string

	// Executor produces the step's raw result.
	Executor Executor

	// Transform optionally splits the raw result into display text and the
	// payload passed downstream.
	Transform Transform

	// Guard optionally validates the (transformed) result and can request a
	// retry with a reason.
	Guard Guard

	// Confirm asks the human to approve the result before the flow
	// advances. When false, an implicit approval is synthesized.
	Confirm bool

	// RetryOnError reclassifies executor errors as validation failures fed
	// back into the retry loop instead of failing the step. It requires a
	// Guard to be configured.
	RetryOnError bool

	// Next explicitly selects the successor. Nil means the next step in
	// registration order.
	Next *Next
}
