package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCompositeObserver(t *testing.T) {
	t.Parallel()

	if _, ok := NewCompositeObserver().(NoopObserver); !ok {
		t.Fatal("no observers should collapse to NoopObserver")
	}
	if _, ok := NewCompositeObserver(nil, nil).(NoopObserver); !ok {
		t.Fatal("nil observers should collapse to NoopObserver")
	}

	m := &BasicMetrics{}
	if got := NewCompositeObserver(nil, m); got != Observer(m) {
		t.Fatal("single observer should be returned unwrapped")
	}

	composite := NewCompositeObserver(&BasicMetrics{}, &BasicMetrics{})
	if _, ok := composite.(*CompositeObserver); !ok {
		t.Fatalf("expected *CompositeObserver, got %T", composite)
	}
}

func TestCompositeObserverFansOut(t *testing.T) {
	t.Parallel()

	a := &BasicMetrics{}
	b := &BasicMetrics{}
	obs := NewCompositeObserver(a, b)

	ctx := context.Background()
	run := &FlowRun{ID: "r1", Flow: "f"}
	obs.OnFlowStart(ctx, run)
	obs.OnFlowCompleted(ctx, run)

	require.Equal(t, int64(1), a.Snapshot().FlowsStarted)
	require.Equal(t, int64(1), b.Snapshot().FlowsCompleted)
}

func TestLoggingObserverPayloadGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	run := &FlowRun{ID: "r1", Flow: "f"}
	artifact := NewArtifact("draft", "the rendered body")

	logAt := func(include bool) string {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		obs := &LoggingObserver{Logger: logger, IncludePayloads: include}
		obs.OnArtifact(ctx, run, artifact)
		return buf.String()
	}

	require.NotContains(t, logAt(false), "the rendered body",
		"payloads must stay out of logs by default")
	require.Contains(t, logAt(true), "the rendered body")
}

func TestBasicMetricsSnapshot(t *testing.T) {
	t.Parallel()

	m := &BasicMetrics{}
	ctx := context.Background()
	run := &FlowRun{ID: "r1", Flow: "f"}

	m.OnFlowStart(ctx, run)
	m.OnFlowStart(ctx, run)
	m.OnFlowCompleted(ctx, run)
	m.OnFlowExited(ctx, run)

	m.OnStepCompleted(ctx, run, "s", 1, nil, 10*time.Millisecond)
	m.OnStepCompleted(ctx, run, "s", 2, nil, 30*time.Millisecond)
	m.OnStepCompleted(ctx, run, "s", 3, errors.New("boom"), time.Hour)

	m.OnRetry(ctx, run, "s", FeedbackUser, "again")
	m.OnRollback(ctx, run, "s", "r", "")

	snap := m.Snapshot()
	require.Equal(t, int64(2), snap.FlowsStarted)
	require.Equal(t, int64(1), snap.FlowsCompleted)
	require.Equal(t, int64(1), snap.FlowsExited)
	require.Equal(t, int64(0), snap.FlowsFailed)
	require.Equal(t, int64(0), snap.ActiveFlows)

	require.Equal(t, int64(2), snap.Attempts, "failed attempts must not count")
	require.Equal(t, 20*time.Millisecond, snap.AvgAttemptDuration)
	require.Equal(t, int64(1), snap.Retries)
	require.Equal(t, int64(1), snap.Rollbacks)
}
