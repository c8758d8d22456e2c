// Package journal provides the append-only session transcript: a low-volume
// audit record of what happened during a flow run (attempts, commands,
// rollbacks, exits).
//
// The journal is write-only from the engine's point of view. It is never
// read back to restore or resume a run.
package journal

import (
	"context"
	"sync"

	"github.com/pkallio/reviewflow/pkg/api"
)

// Store is an append-only sink for session events.
type Store interface {
	Append(ctx context.Context, ev api.SessionEvent) error
	// List returns a run's events in append order, for inspection tooling
	// and tests.
	List(ctx context.Context, runID string) ([]api.SessionEvent, error)
}

// NoopStore discards all events.
type NoopStore struct{}

func (NoopStore) Append(ctx context.Context, ev api.SessionEvent) error { return nil }
func (NoopStore) List(ctx context.Context, runID string) ([]api.SessionEvent, error) {
	return nil, nil
}

// MemoryStore is a goroutine-safe in-memory Store, mainly for tests and
// short-lived sessions.
type MemoryStore struct {
	mu     sync.Mutex
	events []api.SessionEvent
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Append(ctx context.Context, ev api.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, runID string) ([]api.SessionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []api.SessionEvent
	for _, ev := range s.events {
		if ev.RunID == runID {
			out = append(out, ev)
		}
	}
	return out, nil
}
