package reviewflow

import (
	"github.com/pkallio/reviewflow/internal/journal"
	"github.com/pkallio/reviewflow/pkg/api"
	"github.com/pkallio/reviewflow/pkg/hub"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Artifact             = api.Artifact
	Command              = api.Command
	CommandKind          = api.CommandKind
	Executor             = api.Executor
	ExecutorFunc         = api.ExecutorFunc
	Guard                = api.Guard
	GuardFunc            = api.GuardFunc
	Evaluator            = api.Evaluator
	Verdict              = api.Verdict
	Transform            = api.Transform
	Next                 = api.Next
	StepDefinition       = api.StepDefinition
	Invocation           = api.Invocation
	FeedbackEntry        = api.FeedbackEntry
	FeedbackKind         = api.FeedbackKind
	FlowRun              = api.FlowRun
	Status               = api.Status
	SessionEvent         = api.SessionEvent
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	Hub        = hub.Hub
	InputFunc  = hub.InputFunc
	OutputFunc = hub.OutputFunc
)

// Re-export constructors and helpers.

var (
	NewArtifact    = api.NewArtifact
	ParseCommand   = api.ParseCommand
	PromptExecutor = api.PromptExecutor
	EvaluatorGuard = api.EvaluatorGuard
	NextStep       = api.NextStep
	NextFunc       = api.NextFunc
	EndFlow        = api.End

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver

	IsExit        = api.IsExit
	IsConfigError = api.IsConfigError

	ErrExited        = api.ErrExited
	ErrAskContention = api.ErrAskContention
)

// Re-export status values for convenience.

const (
	StatusPending   = api.StatusPending
	StatusRunning   = api.StatusRunning
	StatusCompleted = api.StatusCompleted
	StatusExited    = api.StatusExited
	StatusFailed    = api.StatusFailed
)

// Hub constructors.

// NewHub creates a session hub around the given input function. Pass options
// to preset the initial input or redirect notification output.
func NewHub(input InputFunc, opts ...hub.Option) *Hub {
	return hub.New(input, opts...)
}

var (
	WithInitialInput = hub.WithInitialInput
	WithOutput       = hub.WithOutput
)

// Journal constructors.
// These wrap the internal/journal package so external callers never need to
// import internal packages.

// Journal is an append-only sink for session events.
type Journal = journal.Store

// NewMemoryJournal returns an in-memory Journal, useful for tests and
// short-lived sessions.
func NewMemoryJournal() Journal {
	return journal.NewMemoryStore()
}

// NewJournalObserver adapts a Journal into an Observer that records flow
// lifecycle events as they happen.
func NewJournalObserver(j Journal) Observer {
	return journal.NewObserver(j)
}
