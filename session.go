package reviewflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Session couples a flow with its initial input and collects the outcome of
// one run. Each session owns its flow and, through it, its hub; sessions
// never share interaction state.
type Session struct {
	Flow    *Flow
	Initial any

	// Result is the last approved artifact, set on completion and on exit.
	Result *Artifact

	// Exited reports that the user ended the run with /exit. An exit is a
	// clean outcome, not an error.
	Exited bool

	// Err is the run's hard failure, if any.
	Err error
}

// Run executes the session's flow to a terminal state.
func (s *Session) Run(ctx context.Context) error {
	out, err := s.Flow.Run(ctx, s.Initial)
	s.Result = out
	if IsExit(err) {
		s.Exited = true
		return nil
	}
	s.Err = err
	return err
}

// SessionGroup runs independent sessions concurrently. The flow within each
// session remains strictly sequential; only whole sessions run in parallel.
type SessionGroup struct {
	sessions []*Session
}

// Add registers a session with the group.
func (g *SessionGroup) Add(s *Session) {
	g.sessions = append(g.sessions, s)
}

// Sessions returns the registered sessions.
func (g *SessionGroup) Sessions() []*Session {
	return g.sessions
}

// Wait runs every session and blocks until all finish. The first hard
// failure cancels the context shared by the remaining sessions.
func (g *SessionGroup) Wait(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, s := range g.sessions {
		s := s
		eg.Go(func() error {
			return s.Run(ctx)
		})
	}
	return eg.Wait()
}
