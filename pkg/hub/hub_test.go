package hub

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkallio/reviewflow/pkg/api"
)

func echoInput(answer string) InputFunc {
	return func(ctx context.Context, question string) (string, error) {
		return answer, nil
	}
}

func TestAsk(t *testing.T) {
	t.Parallel()

	var asked string
	h := New(func(ctx context.Context, question string) (string, error) {
		asked = question
		return "fine", nil
	})

	got, err := h.Ask(context.Background(), "Approve?")
	require.NoError(t, err)
	require.Equal(t, "fine", got)
	require.Equal(t, "Approve?", asked)
}

func TestAskContention(t *testing.T) {
	t.Parallel()

	inAsk := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h := New(func(ctx context.Context, question string) (string, error) {
		once.Do(func() { close(inAsk) })
		<-release
		return "", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = h.Ask(context.Background(), "first")
	}()

	<-inAsk
	_, err := h.Ask(context.Background(), "second")
	if !errors.Is(err, api.ErrAskContention) {
		t.Fatalf("second ask: got %v, want ErrAskContention", err)
	}

	close(release)
	wg.Wait()

	// The slot frees up once the first ask finishes.
	_, err = h.Ask(context.Background(), "third")
	require.NoError(t, err)
}

func TestAskHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	h := New(echoInput("never"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Ask(ctx, "q")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFeedbackAccumulatesInOrder(t *testing.T) {
	t.Parallel()

	h := New(echoInput(""))
	h.RecordFeedback("draft", api.FeedbackUser, "shorter")
	h.RecordFeedback("draft", api.FeedbackValidation, "too long")
	h.RecordFeedback("other", api.FeedbackUser, "unrelated")

	fb := h.Feedback("draft")
	require.Len(t, fb, 2)
	require.Equal(t, api.FeedbackEntry{Kind: api.FeedbackUser, Text: "shorter", Seq: 1}, fb[0])
	require.Equal(t, api.FeedbackEntry{Kind: api.FeedbackValidation, Text: "too long", Seq: 2}, fb[1])
}

func TestFeedbackReturnsCopy(t *testing.T) {
	t.Parallel()

	h := New(echoInput(""))
	h.RecordFeedback("draft", api.FeedbackUser, "original")

	fb := h.Feedback("draft")
	fb[0].Text = "mutated"

	again := h.Feedback("draft")
	require.Equal(t, "original", again[0].Text)
}

func TestResetFeedbackRestartsSequence(t *testing.T) {
	t.Parallel()

	h := New(echoInput(""))
	h.RecordFeedback("draft", api.FeedbackUser, "a")
	h.RecordFeedback("draft", api.FeedbackUser, "b")
	h.ResetFeedback("draft")

	require.Nil(t, h.Feedback("draft"))

	entry := h.RecordFeedback("draft", api.FeedbackUser, "fresh")
	require.Equal(t, 1, entry.Seq)
}

func TestBuildContext(t *testing.T) {
	t.Parallel()

	h := New(echoInput(""))
	h.RecordFeedback("draft", api.FeedbackUser, "mention the deadline")

	got := h.BuildContext("write a report", "draft")
	if !strings.Contains(got, "write a report") {
		t.Fatalf("original request missing:\n%s", got)
	}
	if !strings.Contains(got, api.FeedbackHeader) {
		t.Fatalf("user feedback header missing:\n%s", got)
	}
	if !strings.Contains(got, "1. mention the deadline") {
		t.Fatalf("feedback item missing:\n%s", got)
	}
}

func TestInterpret(t *testing.T) {
	t.Parallel()

	h := New(echoInput(""))
	require.Equal(t, api.CommandApprove, h.Interpret("").Kind)
	require.Equal(t, api.CommandExit, h.Interpret("/exit").Kind)
}

func TestInitialInput(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", New(echoInput("")).InitialInput())
	require.Equal(t, "preset", New(echoInput(""), WithInitialInput("preset")).InitialInput())
}

func TestValues(t *testing.T) {
	t.Parallel()

	h := New(echoInput(""))
	if _, ok := h.Value("tone"); ok {
		t.Fatal("unset value reported present")
	}
	h.SetValue("tone", "formal")
	v, ok := h.Value("tone")
	require.True(t, ok)
	require.Equal(t, "formal", v)
}

func TestNotifyDefaultDiscards(t *testing.T) {
	t.Parallel()

	// Must not panic without an output sink.
	New(echoInput("")).Notify("hello")

	var got string
	h := New(echoInput(""), WithOutput(func(text string) { got = text }))
	h.Notify("warning")
	require.Equal(t, "warning", got)
}
