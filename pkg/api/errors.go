package api

import (
	"errors"
	"fmt"
)

var (
	// ErrAskContention is returned by the hub when a second Ask is
	// attempted while one is already outstanding. This indicates a
	// programming error in how collaborators share the hub, not a
	// user-facing condition.
	ErrAskContention = errors.New("reviewflow: ask already outstanding")

	// ErrExited reports that the user ended the run with /exit. Callers
	// should treat it as normal termination: the artifact returned
	// alongside it is the last completed output, which may be nil when the
	// exit happened before any step completed.
	ErrExited = errors.New("reviewflow: flow exited by user")
)

// ConfigError reports an invalid flow construction: a duplicate step name,
// a successor that names no registered step, or an inconsistent step
// definition. It is fatal at registration/run-entry time and never
// recovered.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "reviewflow: config: " + e.Reason
}

// NewConfigError formats a ConfigError.
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a flow configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ExecutionError wraps an executor failure for a named step. It is fatal to
// the run unless the step was configured with RetryOnError, in which case
// the failure is reclassified as a validation retry instead.
type ExecutionError struct {
	Step string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("reviewflow: step %q: %v", e.Step, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsExit reports whether err represents a clean user-initiated exit.
func IsExit(err error) bool {
	return errors.Is(err, ErrExited)
}
