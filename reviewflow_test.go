package reviewflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkallio/reviewflow/pkg/api"
)

func scripted(t *testing.T, replies ...string) InputFunc {
	i := 0
	return func(ctx context.Context, question string) (string, error) {
		if i >= len(replies) {
			t.Fatalf("unexpected question #%d:\n%s", i+1, question)
		}
		r := replies[i]
		i++
		return r, nil
	}
}

func TestBuilderEndToEnd(t *testing.T) {
	t.Parallel()

	h := NewHub(scripted(t,
		"make it friendlier", // retry greet
		"",                   // approve greet
		"",                   // approve sign
	))
	journal := NewMemoryJournal()

	flow, err := New("welcome").
		Prompt("greet", func(ctx context.Context, prompt string) (any, error) {
			if strings.Contains(prompt, "friendlier") {
				return "Hi there!", nil
			}
			return "Hello.", nil
		}).
		Func("sign", func(ctx context.Context, a *Artifact) (any, error) {
			return a.Text() + "\n-- the team", nil
		}).
		Build(h, WithJournal(journal))
	require.NoError(t, err)

	out, err := flow.Run(context.Background(), "welcome a new user")
	require.NoError(t, err)
	require.Equal(t, "Hi there!\n-- the team", out.Text())
	require.Equal(t, "sign", out.Origin())

	// The journal captured the retry along with the lifecycle.
	events, err := journal.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, events, "events must be keyed by the real run id")
}

func TestBuilderPanics(t *testing.T) {
	t.Parallel()

	require.PanicsWithValue(t, "reviewflow: step name must not be empty", func() {
		New("f").Step("", ExecutorFunc(func(ctx context.Context, a *Artifact) (any, error) { return nil, nil }))
	})
	require.Panics(t, func() {
		New("f").Step("s", nil)
	})
	require.Panics(t, func() {
		New("f").Func("s", nil)
	})
	require.Panics(t, func() {
		New("f").Prompt("s", nil)
	})
}

func TestBuildValidation(t *testing.T) {
	t.Parallel()

	exec := ExecutorFunc(func(ctx context.Context, a *Artifact) (any, error) { return nil, nil })

	_, err := New("f").Step("s", exec).Build(nil)
	require.True(t, IsConfigError(err), "nil hub: %v", err)

	h := NewHub(scripted(t))
	_, err = New("f").
		Step("s", exec).
		Step("s", exec).
		Build(h)
	require.True(t, IsConfigError(err), "duplicate step: %v", err)

	_, err = New("f").
		Step("s", exec, RetryOnError()).
		Build(h)
	require.True(t, IsConfigError(err), "retry-on-error without guard: %v", err)
}

func TestFlowGraph(t *testing.T) {
	t.Parallel()

	exec := ExecutorFunc(func(ctx context.Context, a *Artifact) (any, error) { return nil, nil })
	guard := GuardFunc(func(ctx context.Context, result any) (bool, string) { return false, "" })

	flow, err := New("f").
		Step("a", exec, WithNext(NextStep("c"))).
		Step("b", exec, WithGuard(guard), NoConfirm(), WithNext(EndFlow())).
		Step("c", exec, WithNext(NextFunc(func(out *Artifact) string { return "b" }))).
		Build(NewHub(scripted(t)))
	require.NoError(t, err)

	want := []NodeInfo{
		{Name: "a", Next: "c", Confirm: true},
		{Name: "b", Next: "<end>", Guarded: true},
		{Name: "c", Next: "<dynamic>", Confirm: true},
	}
	require.Equal(t, want, flow.Graph())
	require.Equal(t, "f", flow.Name())
}

func TestJournalKeyedByRunID(t *testing.T) {
	t.Parallel()

	// Capture the run id through an observer, then read that run's
	// transcript back.
	var runID string
	capture := captureStart{id: &runID}

	journal := NewMemoryJournal()
	h := NewHub(scripted(t, ""))
	flow, err := New("audited").
		Prompt("draft", func(ctx context.Context, prompt string) (any, error) {
			return "done", nil
		}).
		Build(h, WithJournal(journal), WithObserver(capture))
	require.NoError(t, err)

	_, err = flow.Run(context.Background(), "req")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	events, err := journal.List(context.Background(), runID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, api.EventFlowStarted, events[0].Type)
	require.Equal(t, api.EventFlowCompleted, events[len(events)-1].Type)
}

type captureStart struct {
	NoopObserver
	id *string
}

func (c captureStart) OnFlowStart(ctx context.Context, run *FlowRun) {
	*c.id = run.ID
}

func TestExecutorCanAskMidStep(t *testing.T) {
	t.Parallel()

	h := NewHub(scripted(t,
		"eu-west", // the executor's own question
		"",        // approve
	))

	flow, err := New("deploy").
		Func("target", func(ctx context.Context, a *Artifact) (any, error) {
			asker, ok := api.AskerFromContext(ctx)
			require.True(t, ok, "asker must be injected")
			region, err := asker.Ask(ctx, "Which region should this target?")
			if err != nil {
				return nil, err
			}
			return "deploying to " + region, nil
		}).
		Build(h)
	require.NoError(t, err)

	out, err := flow.Run(context.Background(), "deploy the service")
	require.NoError(t, err)
	require.Equal(t, "deploying to eu-west", out.Text())
}

func TestMustBuildPanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		New("f").
			Step("s", ExecutorFunc(func(ctx context.Context, a *Artifact) (any, error) { return nil, nil })).
			MustBuild(nil)
	})
}
