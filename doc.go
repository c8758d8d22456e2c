// Package reviewflow provides an embeddable controller for human-in-the-loop
// workflows: multi-step pipelines where a person reviews each intermediate
// result, steers retries with free-text feedback, rolls the flow back to an
// earlier step, or exits cleanly at any checkpoint.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. FlowBuilder
//  2. Hub
//  3. Executor
//  4. Guard
//  5. Session
//
// # FlowBuilder
//
// FlowBuilder is the declarative API for defining a flow:
//
//	flow, err := reviewflow.New("draft-report").
//	    Prompt("outline", outlineAgent).
//	    Prompt("draft", draftAgent, reviewflow.WithGuard(lengthGuard)).
//	    Func("publish", publish, reviewflow.NoConfirm()).
//	    Build(h)
//
// Steps run strictly in sequence. After each confirmed step the flow advances
// to the next registered step, unless the step carries an explicit successor
// (WithNext) or its artifact names a destination.
//
// # Hub
//
// The Hub is the session's single interaction point. It asks the user for
// confirmation after each reviewable step, parses the reply into a command
// (approve, retry with feedback, rollback, exit), and accumulates per-step
// feedback that is woven into the prompt on the next attempt. One Hub serves
// one session; concurrent sessions each get their own.
//
// # Executor
//
// An Executor is the opaque unit of work behind a step. Two adapters cover
// the common shapes: ExecutorFunc for plain functions over the input
// artifact, and PromptExecutor for agent-style functions that consume a
// rendered text prompt. Executors can request ad-hoc input mid-run through
// api.AskerFromContext.
//
// # Guard
//
// A Guard validates a step's result before the human sees it and can demand
// an automatic retry with a reason. Guard failures and user feedback
// accumulate separately and are both replayed into the retry prompt, so the
// executor sees everything that has gone wrong so far.
//
// # Session
//
// Session and SessionGroup run flows to completion, treating a user exit as
// a clean outcome rather than an error. Independent sessions can run
// concurrently; each drives its own flow and hub.
//
// An optional journal records an append-only transcript of each run
// (attempts, commands, rollbacks) to memory or SQLite. The journal is audit
// output only; it is never read back to resume a run.
//
// For runnable examples, see the /examples directory.
package reviewflow
