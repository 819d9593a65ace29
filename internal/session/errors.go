package session

import "fmt"

// StateError reports an operation invoked in a state that does not
// permit it. The session is left unchanged.
type StateError struct {
	Op    string
	State SessionState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("operation %q not valid in state %q", e.Op, e.State)
}

// ConcurrencyError reports a playback worker that failed to acknowledge
// cancellation within the join grace period, which indicates a hung
// audio engine. It is fatal to the session instance: the session is
// forced to STOPPED.
type ConcurrencyError struct {
	Op string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("playback worker failed to acknowledge cancellation during %q", e.Op)
}
