// Package session drives QSO practice sessions: it owns the ordered
// exchange list, coordinates background Morse playback, accepts
// transcriptions at any point during playback, and accumulates scores.
package session

import "github.com/rfweber/qsotrainer/internal/scoring"

// SessionState is the lifecycle state of a practice session.
type SessionState string

const (
	StateReady    SessionState = "ready"
	StatePlaying  SessionState = "playing"
	StatePaused   SessionState = "paused"
	StateComplete SessionState = "complete"
	StateStopped  SessionState = "stopped"
)

// Terminal reports whether the state accepts no further mutation.
func (s SessionState) Terminal() bool {
	return s == StateComplete || s == StateStopped
}

// TokenPlayer is the audio engine collaborator: one blocking call per
// playback token. The worker checks cancellation between calls, so the
// worst-case latency of any cancelling operation is one token.
type TokenPlayer interface {
	PlayToken(token string) error
}

// StateListener receives the new state after every successful
// transition. Listeners run synchronously on the goroutine that
// performed the transition, in registration order.
type StateListener func(SessionState)

// CompleteListener receives the final summary once, on entering
// COMPLETE.
type CompleteListener func(summary scoring.SessionSummary)
