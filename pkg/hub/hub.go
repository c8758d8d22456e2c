// Package hub implements the interaction hub: the single serialization
// point for all user-facing I/O in a flow session.
//
// A Hub is owned by exactly one flow controller / user session. At most one
// ask may be outstanding at a time, so prompts never interleave. The Hub
// also owns the session's feedback history and cross-step key/value context.
// Multiple flows may run concurrently in one process as long as each has its
// own Hub.
package hub

import (
	"context"
	"sync"

	"github.com/pkallio/reviewflow/pkg/api"
)

// InputFunc obtains an answer for a question. It may block; it should honor
// ctx cancellation. It is invoked with the hub's ask slot held, so
// implementations never see interleaved questions.
type InputFunc func(ctx context.Context, question string) (string, error)

// OutputFunc receives one-way user-visible text (warnings, step banners).
type OutputFunc func(text string)

// Option configures a Hub.
type Option func(*Hub)

// WithInitialInput presets the initial payload consulted by the run-entry
// precedence (run argument > hub preset > interactive prompt).
func WithInitialInput(text string) Option {
	return func(h *Hub) { h.initial = text }
}

// WithOutput sets the sink for Notify. The default discards output.
func WithOutput(out OutputFunc) Option {
	return func(h *Hub) { h.output = out }
}

// Hub serializes the question/answer exchange with the user and accumulates
// per-step feedback. All methods are safe for concurrent use; Ask
// additionally fails fast with api.ErrAskContention when a second ask is
// attempted while one is outstanding.
type Hub struct {
	input   InputFunc
	output  OutputFunc
	initial string

	// askMu is held for the full duration of one Ask.
	askMu sync.Mutex

	mu       sync.Mutex
	feedback map[string][]api.FeedbackEntry
	seq      map[string]int
	values   map[string]any
}

// New creates a Hub around the given input provider.
func New(input InputFunc, opts ...Option) *Hub {
	h := &Hub{
		input:    input,
		output:   func(string) {},
		feedback: make(map[string][]api.FeedbackEntry),
		seq:      make(map[string]int),
		values:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ api.Asker = (*Hub)(nil)

// Ask poses a question to the user and blocks until the input provider
// returns an answer or ctx is cancelled. Exactly one ask may be outstanding
// at a time; a concurrent second call returns api.ErrAskContention
// immediately rather than interleaving prompts.
func (h *Hub) Ask(ctx context.Context, question string) (string, error) {
	if !h.askMu.TryLock() {
		return "", api.ErrAskContention
	}
	defer h.askMu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.input(ctx, question)
}

// Interpret parses a raw answer into a Command. See api.ParseCommand for
// the recognized command surface.
func (h *Hub) Interpret(raw string) api.Command {
	return api.ParseCommand(raw)
}

// Notify emits one-way user-visible text through the configured output sink.
func (h *Hub) Notify(text string) {
	h.output(text)
}

// InitialInput returns the preset initial payload, or "".
func (h *Hub) InitialInput() string {
	return h.initial
}

// RecordFeedback appends a feedback entry to the named step's current
// attempt sequence and returns the entry with its sequence index assigned.
func (h *Hub) RecordFeedback(step string, kind api.FeedbackKind, text string) api.FeedbackEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq[step]++
	entry := api.FeedbackEntry{Kind: kind, Text: text, Seq: h.seq[step]}
	h.feedback[step] = append(h.feedback[step], entry)
	return entry
}

// Feedback returns the named step's accumulated feedback in chronological
// order. The returned slice is a copy.
func (h *Hub) Feedback(step string) []api.FeedbackEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.feedback[step]
	if len(entries) == 0 {
		return nil
	}
	out := make([]api.FeedbackEntry, len(entries))
	copy(out, entries)
	return out
}

// ResetFeedback clears the named step's feedback so that a fresh entry into
// the step starts a new attempt sequence.
func (h *Hub) ResetFeedback(step string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.feedback, step)
	delete(h.seq, step)
}

// BuildContext renders the retry input for the named step: the original
// request followed by the step's accumulated feedback and the fixed
// instruction trailer. The rendering is deterministic.
func (h *Hub) BuildContext(original, step string) string {
	return api.BuildContext(original, h.Feedback(step))
}

// SetValue stores a cross-step key/value pair (remembered preferences and
// similar), independent of feedback history.
func (h *Hub) SetValue(key string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values[key] = value
}

// Value fetches a cross-step value recorded with SetValue.
func (h *Hub) Value(key string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[key]
	return v, ok
}
